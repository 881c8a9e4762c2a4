package digest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Bytes returns the hex-encoded xxhash digest of a payload. Used to
// fingerprint downloaded archives in logs.
func Bytes(payload []byte) string {
	h := xxhash.New()
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// File returns the hex-encoded xxhash digest of a file's content.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
