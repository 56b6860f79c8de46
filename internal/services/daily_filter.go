package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// DailyFilter cleans a daily series before analysis: penny-stock exclusion,
// rolling dollar-volume floor and corporate-action removal. Pure transform,
// no side effects.
type DailyFilter struct {
	cfg    config.FilterConfig
	logger *logrus.Logger
}

// NewDailyFilter creates a new daily filter.
func NewDailyFilter(cfg config.FilterConfig, logger *logrus.Logger) *DailyFilter {
	return &DailyFilter{
		cfg:    cfg,
		logger: logger,
	}
}

// Filter returns the cleaned series. Empty input returns empty output,
// never an error, and filtering already-filtered output removes nothing.
func (f *DailyFilter) Filter(series []models.DailyBar) []models.DailyBar {
	if len(series) == 0 {
		return series
	}

	kept := f.filterPrice(series)
	kept = f.filterLiquidityAndGaps(kept)

	if removed := len(series) - len(kept); removed > 0 {
		f.logger.WithFields(logrus.Fields{
			"symbol":  series[0].Symbol,
			"removed": removed,
			"kept":    len(kept),
		}).Debug("Filtered daily series")
	}
	return kept
}

func (f *DailyFilter) filterPrice(series []models.DailyBar) []models.DailyBar {
	kept := make([]models.DailyBar, 0, len(series))
	for _, bar := range series {
		if bar.Close.InexactFloat64() >= f.cfg.MinPrice {
			kept = append(kept, bar)
		}
	}
	return kept
}

// filterLiquidityAndGaps walks the series once and keeps a bar only if the
// rolling median dollar volume of the surviving bars (trailing window,
// minimum one sample) clears the floor and its overnight gap against the
// last surviving close stays below the corporate-action threshold: a gap at
// that size is almost certainly a split or merger, not a market anomaly.
// The liquidity threshold is rolling rather than global so liquidity regime
// shifts are respected.
//
// Both criteria are judged against the surviving series, not the raw input.
// That keeps Filter idempotent (a second pass sees the same trailing context
// for every bar and removes nothing) and guarantees the output contains no
// flaggable gap between adjacent bars. The first surviving bar has no
// previous close, so no gap applies to it.
func (f *DailyFilter) filterLiquidityAndGaps(series []models.DailyBar) []models.DailyBar {
	window := f.cfg.DollarVolumeWindow
	if window <= 0 {
		window = 20
	}

	kept := make([]models.DailyBar, 0, len(series))
	keptDollarVolumes := make([]float64, 0, len(series))
	windowDollarVolumes := make([]float64, 0, window)

	for _, bar := range series {
		dollarVolume := bar.Close.InexactFloat64() * bar.Volume.InexactFloat64()

		start := len(keptDollarVolumes) - window + 1
		if start < 0 {
			start = 0
		}
		windowDollarVolumes = append(windowDollarVolumes[:0], keptDollarVolumes[start:]...)
		windowDollarVolumes = append(windowDollarVolumes, dollarVolume)
		if median(windowDollarVolumes) < f.cfg.MinDollarVolume {
			continue
		}

		if len(kept) > 0 {
			prevClose := kept[len(kept)-1].Close.InexactFloat64()
			if prevClose != 0 {
				gap := (bar.Open.InexactFloat64() - prevClose) / prevClose
				if math.Abs(gap) >= f.cfg.MaxGap {
					continue
				}
			}
		}

		kept = append(kept, bar)
		keptDollarVolumes = append(keptDollarVolumes, dollarVolume)
	}
	return kept
}
