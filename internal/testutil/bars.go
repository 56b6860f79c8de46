package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"eventscan/internal/models"
)

// BaseDate is the first trading day used by synthetic series.
var BaseDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// DailyBar builds a daily bar from float values.
func DailyBar(symbol string, date time.Time, open, high, low, close, volume float64) models.DailyBar {
	return models.DailyBar{
		Symbol: symbol,
		Date:   date,
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(close),
		Volume: decimal.NewFromFloat(volume),
	}
}

// IntradayBar builds an intraday bar from float values.
func IntradayBar(symbol string, ts time.Time, open, high, low, close, volume float64) models.IntradayBar {
	return models.IntradayBar{
		Symbol:    symbol,
		Timestamp: ts,
		Interval:  "5m",
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromFloat(volume),
	}
}

// Day returns BaseDate advanced by n days.
func Day(n int) time.Time {
	return BaseDate.AddDate(0, 0, n)
}

// SessionTime returns a timestamp n five-minute steps into the session that
// starts at 09:30 on the given day.
func SessionTime(day time.Time, n int) time.Time {
	open := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, time.UTC)
	return open.Add(time.Duration(n) * 5 * time.Minute)
}

// FlatDailySeries builds n identical liquid bars at the given price.
func FlatDailySeries(symbol string, n int, price, volume float64) []models.DailyBar {
	series := make([]models.DailyBar, n)
	for i := 0; i < n; i++ {
		series[i] = DailyBar(symbol, Day(i), price, price, price, price, volume)
	}
	return series
}
