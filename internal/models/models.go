package models

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for trading dates, both in the bhav copy
// itself and in every service response.
const DateFormat = "2006-01-02"

// Date is a day-granular calendar date. It marshals as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// Compact returns the zero-padded 8-digit form used in archive URLs.
func (d Date) Compact() string {
	return d.Format("20060102")
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TradeRow is one instrument's end-of-day record for one trading date.
// JSON tags follow the upstream bhav copy column names so that resource
// responses carry the same field names as the source feed.
type TradeRow struct {
	TradeDate Date    `json:"TradDt"`
	Ticker    string  `json:"TckrSymb"`
	Series    string  `json:"SctySrs"`
	Open      float64 `json:"OpnPric"`
	High      float64 `json:"HghPric"`
	Low       float64 `json:"LwPric"`
	Close     float64 `json:"ClsPric"`
	Volume    int64   `json:"TtlTradgVol"`
	Value     float64 `json:"TtlTrfVal"`
}

func (r *TradeRow) IsValid() bool {
	return !r.TradeDate.IsZero() && r.Ticker != ""
}

// MoverRecord is one ranked entry in a movers report. The auxiliary fields
// are joined from the instrument's row on the requested end date; when that
// day had no row for the ticker they are null and Complete is false.
type MoverRecord struct {
	Ticker     string   `json:"TckrSymb"`
	StartPrice float64  `json:"start_price"`
	EndPrice   float64  `json:"end_price"`
	PctChange  float64  `json:"pct_change"`
	Series     *string  `json:"SctySrs"`
	Open       *float64 `json:"OpnPric"`
	High       *float64 `json:"HghPric"`
	Low        *float64 `json:"LwPric"`
	Close      *float64 `json:"ClsPric"`
	Volume     *int64   `json:"TtlTradgVol"`
	Value      *float64 `json:"TtlTrfVal"`
	Complete   bool     `json:"complete"`
}

// DateRange is the closed calendar window a report was computed over.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// MoversReport holds the ranked gainers and losers for a window.
// Both lists carry at most ten entries.
type MoversReport struct {
	TopGainers []MoverRecord `json:"top_gainers"`
	TopLosers  []MoverRecord `json:"top_losers"`
	DateRange  DateRange     `json:"date_range"`
}
