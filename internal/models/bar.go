package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBar represents one trading day of OHLCV history for a symbol.
// Bars are produced by the price-history store in chronological order,
// one per trading day, unique per symbol+date.
type DailyBar struct {
	Symbol string          `json:"symbol" db:"symbol"`
	Date   time.Time       `json:"date" db:"date"`
	Open   decimal.Decimal `json:"open" db:"open"`
	High   decimal.Decimal `json:"high" db:"high"`
	Low    decimal.Decimal `json:"low" db:"low"`
	Close  decimal.Decimal `json:"close" db:"close"`
	Volume decimal.Decimal `json:"volume" db:"volume"`
}

// IntradayBar represents one fine-grained bar (5-minute by default),
// scoped to a short trailing window of days.
type IntradayBar struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	Interval  string          `json:"interval" db:"interval"`
	Open      decimal.Decimal `json:"open" db:"open"`
	High      decimal.Decimal `json:"high" db:"high"`
	Low       decimal.Decimal `json:"low" db:"low"`
	Close     decimal.Decimal `json:"close" db:"close"`
	Volume    decimal.Decimal `json:"volume" db:"volume"`
}
