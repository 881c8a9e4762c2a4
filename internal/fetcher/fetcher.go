package fetcher

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nsetools/bhavcopy-mcp/internal/models"
	"github.com/nsetools/bhavcopy-mcp/internal/parser"
	"github.com/nsetools/bhavcopy-mcp/pkg/digest"
)

// ErrNotAvailable means no bhav copy exists for the requested date. Weekends
// and market holidays land here, but so does every transport, archive and
// parse failure: a single bad day must never take down a range request.
var ErrNotAvailable = errors.New("no bhav copy available")

const archivePathFormat = "/content/cm/BhavCopy_NSE_CM_0_0_0_%s_F_0000.csv.zip"

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Fetcher downloads and parses the daily bhav copy from the NSE archive.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Fetch retrieves the bhav copy for one calendar day, normalized to equity
// rows. It returns ErrNotAvailable for anything that prevents producing
// rows; no other error crosses this boundary.
func (f *Fetcher) Fetch(ctx context.Context, day models.Date) ([]models.TradeRow, error) {
	url := f.baseURL + fmt.Sprintf(archivePathFormat, day.Compact())
	log := f.logger.With(zap.String("date", day.String()))
	log.Debug("downloading bhav copy", zap.String("url", url))

	payload, err := f.download(ctx, url)
	if err != nil {
		log.Info("bhav copy download failed", zap.Error(err))
		return nil, ErrNotAvailable
	}
	log.Debug("downloaded bhav copy archive",
		zap.Int("bytes", len(payload)),
		zap.String("digest", digest.Bytes(payload)))

	rows, err := f.extractAndParse(payload)
	if err != nil {
		log.Warn("failed to extract bhav copy", zap.Error(err))
		return nil, ErrNotAvailable
	}

	rows = parser.NormalizeEquity(rows)
	log.Info("fetched bhav copy", zap.Int("rows", len(rows)))
	return rows, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// The archive host rejects requests without a browser user agent.
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// extractAndParse stages the archive and its single CSV member as temp
// files, parses the CSV, and removes both files on every path.
func (f *Fetcher) extractAndParse(payload []byte) ([]models.TradeRow, error) {
	zipPath, err := writeTemp("bhavcopy-*.zip", func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer os.Remove(zipPath)

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	csvFile := findCSV(archive)
	if csvFile == nil {
		return nil, errors.New("no CSV file found in archive")
	}

	csvPath, err := writeTemp("bhavcopy-*.csv", func(w io.Writer) error {
		rc, err := csvFile.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(w, rc)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer os.Remove(csvPath)

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parser.ParseBhavCopy(file)
}

func findCSV(archive *zip.ReadCloser) *zip.File {
	for _, member := range archive.File {
		if strings.HasSuffix(strings.ToLower(member.Name), ".csv") {
			return member
		}
	}
	return nil
}

// writeTemp creates a uniquely named temp file and fills it via fill. The
// unique name keeps concurrent day fetches from colliding. The file is
// removed here on failure; on success removal is the caller's job.
func writeTemp(pattern string, fill func(io.Writer) error) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}
