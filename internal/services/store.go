package services

import (
	"context"
	"time"

	"eventscan/internal/models"
)

// PriceStore is the persistent price-history collaborator. The scanner only
// reads from it; incremental download and retry logic live behind
// EnsureIntradayDownloaded.
type PriceStore interface {
	// GetUniverse returns the full scan set of symbols.
	GetUniverse(ctx context.Context) ([]string, error)
	// GetDailySeries returns daily bars in chronological order.
	GetDailySeries(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error)
	// GetIntradaySeries returns intraday bars for the trailing window.
	GetIntradaySeries(ctx context.Context, symbol, interval string, days int) ([]models.IntradayBar, error)
	// EnsureIntradayDownloaded backfills intraday bars; idempotent.
	EnsureIntradayDownloaded(ctx context.Context, symbol, interval string, days int) error
}
