package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

// Columns the bhav copy must carry. The UDiFF file has many more; anything
// beyond these is ignored.
const (
	colTradeDate = "TradDt"
	colTicker    = "TckrSymb"
	colSeries    = "SctySrs"
	colOpen      = "OpnPric"
	colHigh      = "HghPric"
	colLow       = "LwPric"
	colClose     = "ClsPric"
	colVolume    = "TtlTradgVol"
	colValue     = "TtlTrfVal"
)

var requiredColumns = []string{
	colTradeDate, colTicker, colSeries,
	colOpen, colHigh, colLow, colClose,
	colVolume, colValue,
}

// ParseBhavCopy reads a comma-separated bhav copy and returns one TradeRow
// per data record. Records that fail to parse are skipped; a missing header
// column is an error for the whole file.
func ParseBhavCopy(r io.Reader) ([]models.TradeRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read bhav copy header: %w", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []models.TradeRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bhav copy record: %w", err)
		}

		row, err := parseRecord(record, idx)
		if err != nil {
			// Skip records that can't be parsed
			continue
		}
		if row.IsValid() {
			rows = append(rows, *row)
		}
	}

	return rows, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("bhav copy is missing column %s", name)
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int) (*models.TradeRow, error) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	tradeDate, err := models.ParseDate(field(colTradeDate))
	if err != nil {
		return nil, err
	}

	open, err := parsePrice(field(colOpen))
	if err != nil {
		return nil, err
	}
	high, err := parsePrice(field(colHigh))
	if err != nil {
		return nil, err
	}
	low, err := parsePrice(field(colLow))
	if err != nil {
		return nil, err
	}
	closing, err := parsePrice(field(colClose))
	if err != nil {
		return nil, err
	}

	volume, err := parseQuantity(field(colVolume))
	if err != nil {
		return nil, err
	}
	value, err := parsePrice(field(colValue))
	if err != nil {
		return nil, err
	}

	return &models.TradeRow{
		TradeDate: tradeDate,
		Ticker:    field(colTicker),
		Series:    field(colSeries),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closing,
		Volume:    volume,
		Value:     value,
	}, nil
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return v, nil
}

func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some feeds emit volume with a decimal part
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
		}
		return int64(f), nil
	}
	return v, nil
}
