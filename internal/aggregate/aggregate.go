package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nsetools/bhavcopy-mcp/internal/fetcher"
	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

// DayFetcher retrieves the normalized trade rows for one calendar day.
type DayFetcher interface {
	Fetch(ctx context.Context, day models.Date) ([]models.TradeRow, error)
}

// Aggregator collects trade rows over a contiguous calendar window. Days
// are fetched concurrently up to a configured limit; the result is always
// assembled oldest day first, whatever order the fetches complete in.
type Aggregator struct {
	fetcher     DayFetcher
	concurrency int
	logger      *zap.Logger
}

func New(dayFetcher DayFetcher, concurrency int, logger *zap.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		fetcher:     dayFetcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Window computes the closed calendar range covered by a request: end is the
// requested date and start is ndays-1 calendar days earlier.
func Window(end models.Date, ndays int) models.DateRange {
	return models.DateRange{Start: end.AddDays(-(ndays - 1)), End: end}
}

// Aggregate fetches every calendar day in the window and concatenates the
// successful ones. Days with no bhav copy are skipped; weekend and holiday
// filtering happens implicitly through that. Only a window with zero
// successful days is an error, reported as fetcher.ErrNotAvailable.
func (a *Aggregator) Aggregate(ctx context.Context, end models.Date, ndays int) ([]models.TradeRow, error) {
	if ndays < 1 {
		return nil, fmt.Errorf("ndays must be at least 1, got %d", ndays)
	}

	window := Window(end, ndays)
	a.logger.Info("aggregating trade data",
		zap.String("start", window.Start.String()),
		zap.String("end", window.End.String()))

	days := make([]models.Date, 0, ndays)
	for day := window.Start; !day.After(window.End.Time); day = day.AddDays(1) {
		days = append(days, day)
	}

	perDay := make([][]models.TradeRow, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, day := range days {
		g.Go(func() error {
			rows, err := a.fetcher.Fetch(gctx, day)
			if err != nil {
				// Missing days are expected; one day must never
				// abort the rest of the window.
				a.logger.Debug("skipping day",
					zap.String("date", day.String()), zap.Error(err))
				return nil
			}
			perDay[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.TradeRow
	for _, rows := range perDay {
		all = append(all, rows...)
	}

	if len(all) == 0 {
		a.logger.Warn("no data retrieved for entire range",
			zap.String("start", window.Start.String()),
			zap.String("end", window.End.String()))
		return nil, fetcher.ErrNotAvailable
	}

	a.logger.Info("aggregated trade data", zap.Int("rows", len(all)))
	return all, nil
}
