package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Config struct {
	ArchiveBaseURL   string
	UserAgent        string
	FetchTimeout     time.Duration
	FetchConcurrency int
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
}

func New() (*Config, error) {
	cfg := &Config{
		ArchiveBaseURL:   "https://nsearchives.nseindia.com",
		UserAgent:        defaultUserAgent,
		FetchTimeout:     30 * time.Second,
		FetchConcurrency: 4,
		LogFile:          "logs/nsei_mcp_server.log",
		LogMaxSizeMB:     10,
		LogMaxBackups:    5,
	}

	if v := os.Getenv("NSE_ARCHIVE_BASE_URL"); v != "" {
		cfg.ArchiveBaseURL = v
	}
	if v := os.Getenv("NSE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	timeoutSecs, err := getEnvAsInt("FETCH_TIMEOUT_SECONDS", int(cfg.FetchTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = time.Duration(timeoutSecs) * time.Second

	cfg.FetchConcurrency, err = getEnvAsInt("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	if err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", cfg.FetchConcurrency)
	}

	cfg.LogMaxSizeMB, err = getEnvAsInt("LOG_MAX_SIZE_MB", cfg.LogMaxSizeMB)
	if err != nil {
		return nil, err
	}

	cfg.LogMaxBackups, err = getEnvAsInt("LOG_MAX_BACKUPS", cfg.LogMaxBackups)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
