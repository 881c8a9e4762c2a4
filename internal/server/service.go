package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

// Failure messages kept identical to what clients of the original service
// already match on.
const (
	msgNoDataForDate  = "No data available for the specified date"
	msgNoDataForRange = "No data available for the specified date range"
)

// TradesFetcher fetches the normalized trade rows for a single day.
type TradesFetcher interface {
	Fetch(ctx context.Context, day models.Date) ([]models.TradeRow, error)
}

// MoversAnalyzer computes a movers report for a window.
type MoversAnalyzer interface {
	TopMovers(ctx context.Context, end models.Date, ndays int) (*models.MoversReport, error)
}

// Service implements the two service operations. Every failure is returned
// as a structured {"error": ...} value; nothing here panics or propagates
// an error to the transport.
type Service struct {
	fetcher  TradesFetcher
	analyzer MoversAnalyzer
	logger   *zap.Logger
}

func NewService(fetcher TradesFetcher, analyzer MoversAnalyzer, logger *zap.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Trades returns one day's rows as a JSON array, or an error object when
// the date is invalid or no bhav copy exists for it.
func (s *Service) Trades(ctx context.Context, date string) string {
	s.logger.Info("fetching trades", zap.String("date", date))

	day, err := models.ParseDate(date)
	if err != nil {
		s.logger.Warn("rejecting trades request", zap.Error(err))
		return errorJSON(fmt.Sprintf("Failed to retrieve trades: %v", err))
	}

	rows, err := s.fetcher.Fetch(ctx, day)
	if err != nil || len(rows) == 0 {
		s.logger.Warn("no trades for date", zap.String("date", date))
		return errorJSON(msgNoDataForDate)
	}

	s.logger.Info("retrieved trades", zap.String("date", date), zap.Int("records", len(rows)))
	return marshalJSON(rows)
}

// TopMovers returns the movers report for the window ending at date.
func (s *Service) TopMovers(ctx context.Context, date string, ndays int) string {
	s.logger.Info("computing top movers", zap.String("date", date), zap.Int("ndays", ndays))

	day, err := models.ParseDate(date)
	if err != nil {
		s.logger.Warn("rejecting top movers request", zap.Error(err))
		return errorJSON(fmt.Sprintf("Failed to compute top movers: %v", err))
	}

	report, err := s.analyzer.TopMovers(ctx, day, ndays)
	if err != nil {
		s.logger.Warn("top movers failed", zap.String("date", date), zap.Error(err))
		return errorJSON(msgNoDataForRange)
	}

	return marshalJSON(report)
}

type errorResult struct {
	Error string `json:"error"`
}

func errorJSON(message string) string {
	return marshalJSON(errorResult{Error: message})
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// The boundary contract is that no fault ever escapes.
		return `{"error": "failed to encode response"}`
	}
	return string(b)
}
