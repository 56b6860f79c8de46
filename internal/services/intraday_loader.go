package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// IntradayLoader fetches fine-grained bars for watchlist symbols only,
// never the full universe: this is the resource-minimization boundary
// between coarse screening and expensive data acquisition. A small bounded
// worker pool keeps concurrent fetches within external rate limits.
type IntradayLoader struct {
	store  PriceStore
	cfg    config.IntradayConfig
	logger *logrus.Logger
}

// NewIntradayLoader creates a new intraday loader.
func NewIntradayLoader(store PriceStore, cfg config.IntradayConfig, logger *logrus.Logger) *IntradayLoader {
	return &IntradayLoader{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Load returns intraday series keyed by symbol. Per-symbol failures are
// logged and the symbol omitted; the pipeline continues without it.
func (l *IntradayLoader) Load(ctx context.Context, watchlist []models.WatchlistEntry) map[string][]models.IntradayBar {
	symbols := uniqueSymbols(watchlist)
	result := make(map[string][]models.IntradayBar, len(symbols))
	if len(symbols) == 0 {
		return result
	}

	workers := l.cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				bars, err := l.loadSymbol(ctx, symbol)
				if err != nil {
					l.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to load intraday data")
					continue
				}
				if len(bars) == 0 {
					l.logger.WithField("symbol", symbol).Debug("No intraday bars available")
					continue
				}
				mu.Lock()
				result[symbol] = bars
				mu.Unlock()
			}
		}()
	}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			// Stop scheduling; in-flight fetches finish on their own.
			close(jobs)
			wg.Wait()
			return result
		case jobs <- symbol:
		}
	}
	close(jobs)
	wg.Wait()

	l.logger.WithFields(logrus.Fields{
		"requested": len(symbols),
		"loaded":    len(result),
	}).Info("Loaded intraday data for watchlist")
	return result
}

func (l *IntradayLoader) loadSymbol(ctx context.Context, symbol string) ([]models.IntradayBar, error) {
	if err := l.store.EnsureIntradayDownloaded(ctx, symbol, l.cfg.Interval, l.cfg.Days); err != nil {
		return nil, err
	}
	return l.store.GetIntradaySeries(ctx, symbol, l.cfg.Interval, l.cfg.Days)
}

func uniqueSymbols(watchlist []models.WatchlistEntry) []string {
	seen := make(map[string]struct{}, len(watchlist))
	symbols := make([]string, 0, len(watchlist))
	for _, entry := range watchlist {
		if _, ok := seen[entry.Symbol]; ok {
			continue
		}
		seen[entry.Symbol] = struct{}{}
		symbols = append(symbols, entry.Symbol)
	}
	return symbols
}
