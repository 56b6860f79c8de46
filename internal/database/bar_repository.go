package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"eventscan/internal/models"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// IntradayFetcher pulls intraday bars from the external data service when
// the store has no fresh copy.
type IntradayFetcher interface {
	GetIntradayBars(ctx context.Context, symbol, interval string, days int) ([]models.IntradayBar, error)
}

// MarkerCache records which symbol+interval windows were already downloaded,
// making EnsureIntradayDownloaded idempotent across runs.
type MarkerCache interface {
	Seen(ctx context.Context, symbol, interval string, days int) bool
	Mark(ctx context.Context, symbol, interval string, days int) error
}

// BarRepository is the price-history store: daily bars, intraday bars and
// the scan universe, backed by Postgres with an on-demand intraday backfill.
type BarRepository struct {
	pool    DatabasePool
	fetcher IntradayFetcher
	markers MarkerCache
	logger  *logrus.Logger
}

// NewBarRepository creates a new bar repository.
func NewBarRepository(pool DatabasePool, fetcher IntradayFetcher, markers MarkerCache, logger *logrus.Logger) *BarRepository {
	return &BarRepository{
		pool:    pool,
		fetcher: fetcher,
		markers: markers,
		logger:  logger,
	}
}

// GetUniverse returns the active scan universe in lexical order.
func (r *BarRepository) GetUniverse(ctx context.Context) ([]string, error) {
	query := `SELECT symbol FROM symbols WHERE is_active = true ORDER BY symbol`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating universe rows: %w", err)
	}
	return symbols, nil
}

// GetDailySeries returns the daily bars for a symbol between from and to,
// in chronological order.
func (r *BarRepository) GetDailySeries(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	query := `
		SELECT symbol, date, open, high, low, close, volume
		FROM daily_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []models.DailyBar
	for rows.Next() {
		var bar models.DailyBar
		if err := rows.Scan(&bar.Symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily bar: %w", err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily bar rows: %w", err)
	}
	return bars, nil
}

// GetIntradaySeries returns intraday bars for the trailing number of days,
// in chronological order.
func (r *BarRepository) GetIntradaySeries(ctx context.Context, symbol, interval string, days int) ([]models.IntradayBar, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	query := `
		SELECT symbol, timestamp, interval, open, high, low, close, volume
		FROM intraday_bars
		WHERE symbol = $1 AND interval = $2 AND timestamp >= $3
		ORDER BY timestamp
	`

	rows, err := r.pool.Query(ctx, query, symbol, interval, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query intraday bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []models.IntradayBar
	for rows.Next() {
		var bar models.IntradayBar
		if err := rows.Scan(&bar.Symbol, &bar.Timestamp, &bar.Interval, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan intraday bar: %w", err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intraday bar rows: %w", err)
	}
	return bars, nil
}

// EnsureIntradayDownloaded backfills intraday bars for a symbol if no fresh
// download marker exists. Idempotent: a second call within the marker TTL is
// a no-op.
func (r *BarRepository) EnsureIntradayDownloaded(ctx context.Context, symbol, interval string, days int) error {
	if r.markers.Seen(ctx, symbol, interval, days) {
		r.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"interval": interval,
		}).Debug("Intraday history already downloaded, skipping fetch")
		return nil
	}

	bars, err := r.fetcher.GetIntradayBars(ctx, symbol, interval, days)
	if err != nil {
		return fmt.Errorf("failed to fetch intraday bars for %s: %w", symbol, err)
	}

	if err := r.insertIntradayBars(ctx, bars); err != nil {
		return err
	}

	if err := r.markers.Mark(ctx, symbol, interval, days); err != nil {
		// The data landed; a lost marker only costs a refetch next run.
		r.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to store download marker")
	}

	r.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"interval": interval,
		"bars":     len(bars),
	}).Info("Downloaded intraday history")
	return nil
}

func (r *BarRepository) insertIntradayBars(ctx context.Context, bars []models.IntradayBar) error {
	query := `
		INSERT INTO intraday_bars (symbol, timestamp, interval, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timestamp, interval) DO NOTHING
	`

	for _, bar := range bars {
		if _, err := r.pool.Exec(ctx, query,
			bar.Symbol, bar.Timestamp, bar.Interval,
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		); err != nil {
			return fmt.Errorf("failed to insert intraday bar for %s: %w", bar.Symbol, err)
		}
	}
	return nil
}
