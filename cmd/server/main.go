package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nsetools/bhavcopy-mcp/internal/aggregate"
	"github.com/nsetools/bhavcopy-mcp/internal/analyzer"
	"github.com/nsetools/bhavcopy-mcp/internal/config"
	"github.com/nsetools/bhavcopy-mcp/internal/fetcher"
	"github.com/nsetools/bhavcopy-mcp/internal/logging"
	"github.com/nsetools/bhavcopy-mcp/internal/server"
)

const version = "1.0.0"

func setup() (*mcpserver.MCPServer, *zap.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	logger.Info("logging to file", zap.String("path", cfg.LogFile))

	bhavFetcher := fetcher.New(fetcher.Options{
		BaseURL:   cfg.ArchiveBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
	}, logger.Named("fetcher"))

	aggregator := aggregate.New(bhavFetcher, cfg.FetchConcurrency, logger.Named("aggregate"))
	movers := analyzer.New(aggregator, logger.Named("analyzer"))

	svc := server.NewService(bhavFetcher, movers, logger.Named("server"))
	return server.NewMCPServer(svc, version), logger, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	srv, logger, err := setup()
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}
	defer logger.Sync()

	logger.Info("server initialization complete")
	if err := mcpserver.ServeStdio(srv); err != nil {
		logger.Error("server terminated", zap.Error(err))
	}
}
