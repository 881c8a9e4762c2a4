package analyzer

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nsetools/bhavcopy-mcp/internal/aggregate"
	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

// rankLimit caps each movers list.
const rankLimit = 10

// RangeAggregator supplies the concatenated trade rows for a window.
type RangeAggregator interface {
	Aggregate(ctx context.Context, end models.Date, ndays int) ([]models.TradeRow, error)
}

// Analyzer computes top gainers and losers over a date window. It holds no
// state between requests; every call aggregates fresh data.
type Analyzer struct {
	aggregator RangeAggregator
	logger     *zap.Logger
}

func New(aggregator RangeAggregator, logger *zap.Logger) *Analyzer {
	return &Analyzer{aggregator: aggregator, logger: logger}
}

// tickerSpan tracks an instrument's boundary prices across the window.
type tickerSpan struct {
	startPrice float64
	endPrice   float64
	pctChange  float64
}

// TopMovers ranks instruments by percentage price change over the window
// ending at end. With a single distinct trading date in the aggregate the
// change runs from that day's open to its close; across several dates it
// runs from the first row's open to the last row's close per ticker.
func (a *Analyzer) TopMovers(ctx context.Context, end models.Date, ndays int) (*models.MoversReport, error) {
	rows, err := a.aggregator.Aggregate(ctx, end, ndays)
	if err != nil {
		return nil, err
	}

	distinctDates := countDistinctDates(rows)
	a.logger.Debug("computing top movers",
		zap.String("end", end.String()),
		zap.Int("ndays", ndays),
		zap.Int("distinct_dates", distinctDates),
		zap.Int("rows", len(rows)))

	// First-seen ticker order is preserved so that equal percentage
	// changes rank deterministically.
	var order []string
	spans := make(map[string]*tickerSpan)
	for _, row := range rows {
		span, seen := spans[row.Ticker]
		if !seen {
			spans[row.Ticker] = &tickerSpan{startPrice: row.Open, endPrice: row.Close}
			order = append(order, row.Ticker)
			continue
		}
		span.endPrice = row.Close
	}

	type rankedTicker struct {
		ticker string
		span   *tickerSpan
	}

	var up, down []rankedTicker
	for _, ticker := range order {
		span := spans[ticker]
		if span.startPrice == 0 {
			// Percentage change is undefined; leave the ticker out
			// rather than divide by zero.
			a.logger.Debug("excluding ticker with zero start price",
				zap.String("ticker", ticker))
			continue
		}
		span.pctChange = pctChange(span.startPrice, span.endPrice)

		switch {
		case span.pctChange > 0:
			up = append(up, rankedTicker{ticker, span})
		case span.pctChange < 0:
			down = append(down, rankedTicker{ticker, span})
		}
	}

	sort.SliceStable(up, func(i, j int) bool {
		return up[i].span.pctChange > up[j].span.pctChange
	})
	sort.SliceStable(down, func(i, j int) bool {
		return down[i].span.pctChange < down[j].span.pctChange
	})

	if len(up) > rankLimit {
		up = up[:rankLimit]
	}
	if len(down) > rankLimit {
		down = down[:rankLimit]
	}

	endDay := endDateRows(rows, end)
	gainers := make([]models.MoverRecord, 0, len(up))
	for _, entry := range up {
		gainers = append(gainers, buildRecord(entry.ticker, entry.span, endDay[entry.ticker]))
	}
	losers := make([]models.MoverRecord, 0, len(down))
	for _, entry := range down {
		losers = append(losers, buildRecord(entry.ticker, entry.span, endDay[entry.ticker]))
	}

	a.logger.Info("computed top movers",
		zap.Int("gainers", len(gainers)),
		zap.Int("losers", len(losers)))

	return &models.MoversReport{
		TopGainers: gainers,
		TopLosers:  losers,
		DateRange:  aggregate.Window(end, ndays),
	}, nil
}

func countDistinctDates(rows []models.TradeRow) int {
	dates := make(map[string]struct{})
	for _, row := range rows {
		dates[row.TradeDate.String()] = struct{}{}
	}
	return len(dates)
}

// endDateRows indexes the rows that belong to the requested end date. When
// the end date itself had no data the map is empty and every record's
// auxiliary fields come back null.
func endDateRows(rows []models.TradeRow, end models.Date) map[string]models.TradeRow {
	byTicker := make(map[string]models.TradeRow)
	for _, row := range rows {
		if row.TradeDate.Equal(end.Time) {
			if _, dup := byTicker[row.Ticker]; !dup {
				byTicker[row.Ticker] = row
			}
		}
	}
	return byTicker
}

func buildRecord(ticker string, span *tickerSpan, endRow models.TradeRow) models.MoverRecord {
	record := models.MoverRecord{
		Ticker:     ticker,
		StartPrice: round2(span.startPrice),
		EndPrice:   round2(span.endPrice),
		PctChange:  round2(span.pctChange),
	}

	if endRow.Ticker == ticker {
		record.Series = &endRow.Series
		record.Open = ptr(round2(endRow.Open))
		record.High = ptr(round2(endRow.High))
		record.Low = ptr(round2(endRow.Low))
		record.Close = ptr(round2(endRow.Close))
		record.Volume = &endRow.Volume
		record.Value = ptr(round2(endRow.Value))
		record.Complete = true
	}

	return record
}

func pctChange(start, end float64) float64 {
	s := decimal.NewFromFloat(start)
	e := decimal.NewFromFloat(end)
	change, _ := e.Sub(s).Div(s).Mul(decimal.NewFromInt(100)).Float64()
	return change
}

func round2(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}

func ptr[T any](v T) *T {
	return &v
}
