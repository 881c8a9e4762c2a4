package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsetools/bhavcopy-mcp/internal/models"
)

const csvHeader = "TradDt,BizDt,Sgmt,TckrSymb,SctySrs,ISIN,OpnPric,HghPric,LwPric,ClsPric,TtlTradgVol,TtlTrfVal"

type CSVRow struct {
	TradDt      string
	BizDt       string
	Sgmt        string
	TckrSymb    string
	SctySrs     string
	ISIN        string
	OpnPric     string
	HghPric     string
	LwPric      string
	ClsPric     string
	TtlTradgVol string
	TtlTrfVal   string
}

func newDefaultCSVRow() CSVRow {
	return CSVRow{
		TradDt:      "2025-04-11",
		BizDt:       "2025-04-11",
		Sgmt:        "CM",
		TckrSymb:    "RELIANCE",
		SctySrs:     "EQ",
		ISIN:        "INE002A01018",
		OpnPric:     "1200.50",
		HghPric:     "1225.00",
		LwPric:      "1195.10",
		ClsPric:     "1220.35",
		TtlTradgVol: "14500000",
		TtlTrfVal:   "17650000000.55",
	}
}

func createTestCSVContent(rows []CSVRow) string {
	var content strings.Builder
	content.WriteString(csvHeader + "\n")

	for _, r := range rows {
		fields := []string{
			r.TradDt, r.BizDt, r.Sgmt, r.TckrSymb, r.SctySrs, r.ISIN,
			r.OpnPric, r.HghPric, r.LwPric, r.ClsPric, r.TtlTradgVol, r.TtlTrfVal,
		}
		content.WriteString(strings.Join(fields, ",") + "\n")
	}

	return content.String()
}

func TestParseBhavCopy(t *testing.T) {
	t.Run("parses well-formed rows", func(t *testing.T) {
		row := newDefaultCSVRow()
		rows, err := ParseBhavCopy(strings.NewReader(createTestCSVContent([]CSVRow{row})))

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "RELIANCE", rows[0].Ticker)
		assert.Equal(t, "EQ", rows[0].Series)
		assert.Equal(t, models.NewDate(2025, 4, 11), rows[0].TradeDate)
		assert.Equal(t, 1200.50, rows[0].Open)
		assert.Equal(t, 1220.35, rows[0].Close)
		assert.Equal(t, int64(14500000), rows[0].Volume)
		assert.Equal(t, 17650000000.55, rows[0].Value)
	})

	t.Run("skips records with malformed fields", func(t *testing.T) {
		good := newDefaultCSVRow()
		badPrice := newDefaultCSVRow()
		badPrice.TckrSymb = "BADPRICE"
		badPrice.OpnPric = "not-a-number"
		badDate := newDefaultCSVRow()
		badDate.TckrSymb = "BADDATE"
		badDate.TradDt = "11-04-2025"

		rows, err := ParseBhavCopy(strings.NewReader(createTestCSVContent([]CSVRow{badPrice, good, badDate})))

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "RELIANCE", rows[0].Ticker)
	})

	t.Run("tolerates decimal volume", func(t *testing.T) {
		row := newDefaultCSVRow()
		row.TtlTradgVol = "14500000.0"

		rows, err := ParseBhavCopy(strings.NewReader(createTestCSVContent([]CSVRow{row})))

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, int64(14500000), rows[0].Volume)
	})

	t.Run("rejects file with missing column", func(t *testing.T) {
		content := "TradDt,TckrSymb\n2025-04-11,RELIANCE\n"

		_, err := ParseBhavCopy(strings.NewReader(content))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing column")
	})

	t.Run("rejects empty file", func(t *testing.T) {
		_, err := ParseBhavCopy(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestNormalizeEquity(t *testing.T) {
	makeRow := func(ticker, series string) models.TradeRow {
		return models.TradeRow{
			TradeDate: models.NewDate(2025, 4, 11),
			Ticker:    ticker,
			Series:    series,
		}
	}

	t.Run("keeps only exact EQ rows", func(t *testing.T) {
		rows := []models.TradeRow{
			makeRow("RELIANCE", "EQ"),
			makeRow("SGBDEC25", "GB"),
			makeRow("TCS", "EQ"),
		}

		filtered := NormalizeEquity(rows)

		assert.Len(t, filtered, 2)
		assert.Equal(t, "RELIANCE", filtered[0].Ticker)
		assert.Equal(t, "TCS", filtered[1].Ticker)
	})

	t.Run("falls back to case-insensitive match", func(t *testing.T) {
		rows := []models.TradeRow{
			makeRow("RELIANCE", "eq"),
			makeRow("SGBDEC25", "GB"),
			makeRow("INFY", "Eq"),
		}

		filtered := NormalizeEquity(rows)

		assert.Len(t, filtered, 2)
		assert.Equal(t, "RELIANCE", filtered[0].Ticker)
		assert.Equal(t, "INFY", filtered[1].Ticker)
	})

	t.Run("returns original rows when nothing matches", func(t *testing.T) {
		rows := []models.TradeRow{
			makeRow("SGBDEC25", "GB"),
			makeRow("NHAI", "N2"),
		}

		filtered := NormalizeEquity(rows)

		assert.Equal(t, rows, filtered)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Empty(t, NormalizeEquity(nil))
	})
}
