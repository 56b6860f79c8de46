package services

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// Scanner sequences the full event discovery pipeline: daily filtering and
// anomaly scoring across the universe, watchlist ranking, selective intraday
// loading and confirmation. Per-symbol failures are isolated; a run always
// produces a result set.
type Scanner struct {
	store     PriceStore
	filter    *DailyFilter
	gap       *GapAnalyzer
	squeeze   *SqueezeReleaseAnalyzer
	watchlist *WatchlistBuilder
	loader    *IntradayLoader
	confirmer *Confirmer
	cfg       config.ScanConfig
	logger    *logrus.Logger
}

// NewScanner wires the pipeline components.
func NewScanner(store PriceStore, cfg *config.Config, logger *logrus.Logger) *Scanner {
	return &Scanner{
		store:     store,
		filter:    NewDailyFilter(cfg.Filter, logger),
		gap:       NewGapAnalyzer(cfg.Gap, logger),
		squeeze:   NewSqueezeReleaseAnalyzer(cfg.Squeeze, logger),
		watchlist: NewWatchlistBuilder(cfg.Watchlist, logger),
		loader:    NewIntradayLoader(store, cfg.Intraday, logger),
		confirmer: NewConfirmer(cfg.Confirmation, logger),
		cfg:       cfg.Scan,
		logger:    logger,
	}
}

// Run executes one full pipeline pass over the universe. Cancelling the
// context stops scheduling of remaining symbols and returns the partial
// result built so far.
func (s *Scanner) Run(ctx context.Context) (*models.ScanResult, error) {
	result := &models.ScanResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	universe, err := s.store.GetUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	result.Stats.SymbolsScanned = len(universe)

	s.logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"symbols": len(universe),
	}).Info("Starting event discovery scan")

	events, failures := s.runDailyStage(ctx, universe)
	result.Failures = failures
	result.Stats.DailyEvents = len(events)
	result.Stats.FailureCount = len(failures)

	result.Watchlist = s.watchlist.Build(events)
	result.Stats.WatchlistSize = len(result.Watchlist)

	intradayData := s.loader.Load(ctx, result.Watchlist)

	for _, entry := range result.Watchlist {
		bars, ok := intradayData[entry.Symbol]
		if !ok {
			continue
		}
		confirmation := s.confirmer.Confirm(entry, bars)
		if confirmation.Confirmed {
			result.ConfirmedEvents = append(result.ConfirmedEvents, models.ConfirmedEvent{
				WatchlistEntry: entry,
				Confirmation:   confirmation,
			})
		}
	}
	result.Stats.ConfirmedCount = len(result.ConfirmedEvents)
	result.FinishedAt = time.Now()

	s.logger.WithFields(logrus.Fields{
		"run_id":       result.RunID,
		"daily_events": result.Stats.DailyEvents,
		"watchlist":    result.Stats.WatchlistSize,
		"confirmed":    result.Stats.ConfirmedCount,
		"failures":     result.Stats.FailureCount,
		"duration":     result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Scan complete")

	return result, nil
}

// runDailyStage fans the stateless per-symbol analysis out over a worker
// pool bounded by CPU count. Symbols are shuffled so a time-budget cutoff
// still yields a representative partial watchlist.
func (s *Scanner) runDailyStage(ctx context.Context, universe []string) ([]models.SymbolEvent, []*models.SymbolError) {
	symbols := make([]string, len(universe))
	copy(symbols, universe)
	if s.cfg.ShuffleUniverse {
		rand.Shuffle(len(symbols), func(i, j int) {
			symbols[i], symbols[j] = symbols[j], symbols[i]
		})
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}
	if workers == 0 {
		return nil, nil
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var events []models.SymbolEvent
	var failures []*models.SymbolError
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				event, symErr := s.analyzeSymbol(ctx, symbol)
				mu.Lock()
				if symErr != nil {
					failures = append(failures, symErr)
				} else if event != nil {
					events = append(events, *event)
				}
				mu.Unlock()
			}
		}()
	}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			s.logger.Warn("Scan cancelled, returning partial daily results")
			close(jobs)
			wg.Wait()
			return events, failures
		case jobs <- symbol:
		}
	}
	close(jobs)
	wg.Wait()
	return events, failures
}

// analyzeSymbol runs filter + both analyzers for one symbol. A nil event
// with nil error means the symbol is simply quiet today.
func (s *Scanner) analyzeSymbol(ctx context.Context, symbol string) (*models.SymbolEvent, *models.SymbolError) {
	to := time.Now()
	from := to.AddDate(0, 0, -s.cfg.HistoryDays)

	series, err := s.store.GetDailySeries(ctx, symbol, from, to)
	if err != nil {
		return nil, &models.SymbolError{Symbol: symbol, Kind: models.ErrFetchFailed, Err: err}
	}
	if len(series) == 0 {
		return nil, &models.SymbolError{Symbol: symbol, Kind: models.ErrDataUnavailable}
	}
	if len(series) < s.cfg.MinHistoryBars {
		return nil, &models.SymbolError{Symbol: symbol, Kind: models.ErrInsufficientHistory}
	}

	filtered := s.filter.Filter(series)
	if len(filtered) < s.cfg.MinFilteredBars {
		return nil, &models.SymbolError{Symbol: symbol, Kind: models.ErrInsufficientHistory}
	}

	gapEvent := s.gap.Analyze(filtered)
	squeezeEvent := s.squeeze.Analyze(filtered)

	if gapEvent.Score <= 0 && squeezeEvent.Score <= 0 {
		return nil, nil
	}

	return &models.SymbolEvent{
		Symbol:  symbol,
		Date:    filtered[len(filtered)-1].Date,
		Gap:     gapEvent,
		Squeeze: squeezeEvent,
	}, nil
}
