package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Scan: config.ScanConfig{
			Workers:         2,
			HistoryDays:     180,
			MinHistoryBars:  60,
			MinFilteredBars: 30,
		},
		Filter: config.FilterConfig{
			MinPrice:           5.0,
			MinDollarVolume:    1000000.0,
			DollarVolumeWindow: 20,
			MaxGap:             0.5,
		},
		Gap: config.GapConfig{
			Lookback:     60,
			MinGap:       0.01,
			MinMoveRatio: 0.5,
		},
		Squeeze: config.SqueezeConfig{
			SqueezePeriod:      20,
			ShortWindow:        5,
			LongWindow:         20,
			ReferenceLookback:  60,
			LowVolQuantile:     0.2,
			MinSqueezeFraction: 0.6,
			ReleaseThreshold:   2.0,
			MaxReleaseStrength: 3.0,
		},
		Watchlist: config.WatchlistConfig{
			TopN:     20,
			MinScore: 50.0,
		},
		Intraday: config.IntradayConfig{
			Interval: "5m",
			Days:     5,
			Workers:  2,
		},
		Confirmation: config.ConfirmationConfig{
			MinBars:          10,
			OpeningRangeBars: 6,
			MinORQuality:     0.6,
			LevelTolerance:   0.005,
			MinVolumeBars:    20,
			VolumeRatio:      1.5,
		},
	}
}

// fakePriceStore is an in-memory PriceStore for pipeline tests.
type fakePriceStore struct {
	mu          sync.Mutex
	universe    []string
	universeErr error
	daily       map[string][]models.DailyBar
	dailyErr    map[string]error
	intraday    map[string][]models.IntradayBar
	ensureErr   map[string]error
	ensureCalls []string
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{
		daily:     make(map[string][]models.DailyBar),
		dailyErr:  make(map[string]error),
		intraday:  make(map[string][]models.IntradayBar),
		ensureErr: make(map[string]error),
	}
}

func (s *fakePriceStore) GetUniverse(ctx context.Context) ([]string, error) {
	if s.universeErr != nil {
		return nil, s.universeErr
	}
	return s.universe, nil
}

func (s *fakePriceStore) GetDailySeries(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	if err := s.dailyErr[symbol]; err != nil {
		return nil, err
	}
	return s.daily[symbol], nil
}

func (s *fakePriceStore) GetIntradaySeries(ctx context.Context, symbol, interval string, days int) ([]models.IntradayBar, error) {
	return s.intraday[symbol], nil
}

func (s *fakePriceStore) EnsureIntradayDownloaded(ctx context.Context, symbol, interval string, days int) error {
	s.mu.Lock()
	s.ensureCalls = append(s.ensureCalls, symbol)
	s.mu.Unlock()
	return s.ensureErr[symbol]
}
