package parser

import (
	"strings"

	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

const equitySeries = "EQ"

// NormalizeEquity filters rows down to the equity series. It tries an exact
// "EQ" match first, then a case-insensitive one. When neither matches
// anything the original rows are returned untouched: an empty result here
// would silently discard a whole day, so an unconfirmed filter passes the
// data through instead.
func NormalizeEquity(rows []models.TradeRow) []models.TradeRow {
	eq := filterSeries(rows, func(s string) bool { return s == equitySeries })
	if len(eq) > 0 {
		return eq
	}

	eq = filterSeries(rows, func(s string) bool { return strings.EqualFold(s, equitySeries) })
	if len(eq) > 0 {
		return eq
	}

	return rows
}

func filterSeries(rows []models.TradeRow, match func(string) bool) []models.TradeRow {
	var out []models.TradeRow
	for _, row := range rows {
		if match(row.Series) {
			out = append(out, row)
		}
	}
	return out
}
