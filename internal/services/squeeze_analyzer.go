package services

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// SqueezeReleaseAnalyzer scores volatility compression-to-expansion
// transitions. Expansion alone is common and uninformative; only expansion
// after genuine compression, with price escaping the consolidation range,
// qualifies.
type SqueezeReleaseAnalyzer struct {
	cfg    config.SqueezeConfig
	logger *logrus.Logger
}

// NewSqueezeReleaseAnalyzer creates a new squeeze-release analyzer.
func NewSqueezeReleaseAnalyzer(cfg config.SqueezeConfig, logger *logrus.Logger) *SqueezeReleaseAnalyzer {
	return &SqueezeReleaseAnalyzer{
		cfg:    cfg,
		logger: logger,
	}
}

// Analyze evaluates the latest bar of a cleaned daily series. Series too
// short for the squeeze window degrade to a zero-score event.
func (a *SqueezeReleaseAnalyzer) Analyze(series []models.DailyBar) models.SqueezeReleaseEvent {
	zero := models.SqueezeReleaseEvent{}
	if len(series) < a.cfg.SqueezePeriod+10 {
		return zero
	}

	tr := trueRanges(series)
	volShort := rollingMean(tr, a.cfg.ShortWindow)
	volLong := rollingMean(tr, a.cfg.LongWindow)
	if len(volShort) == 0 || len(volLong) == 0 {
		return zero
	}

	latestShort := volShort[len(volShort)-1]
	latestLong := volLong[len(volLong)-1]

	// Squeeze: share of recent days whose short-window volatility sits in
	// the bottom quantile of the longer reference window.
	refCount := len(volShort)
	if a.cfg.ReferenceLookback > 0 && refCount > a.cfg.ReferenceLookback {
		refCount = a.cfg.ReferenceLookback
	}
	threshold := percentile(volShort[len(volShort)-refCount:], a.cfg.LowVolQuantile)

	recentCount := len(volShort)
	if recentCount > a.cfg.SqueezePeriod {
		recentCount = a.cfg.SqueezePeriod
	}
	recent := volShort[len(volShort)-recentCount:]
	lowDays := 0
	for _, v := range recent {
		if v <= threshold {
			lowDays++
		}
	}
	squeezeStrength := float64(lowDays) / float64(len(recent))
	wasSqueezed := squeezeStrength > a.cfg.MinSqueezeFraction

	// Release: short-window volatility blowing out against the long window.
	volRatio := 1.0
	if latestLong > 0 {
		volRatio = latestShort / latestLong
	}
	isReleasing := volRatio > a.cfg.ReleaseThreshold

	if !wasSqueezed || !isReleasing {
		return zero
	}

	// Consolidation box over the squeeze window preceding the latest bar.
	boxBars := series[len(series)-1-a.cfg.SqueezePeriod : len(series)-1]
	box := models.ConsolidationBox{
		Upper: math.Inf(-1),
		Lower: math.Inf(1),
	}
	for _, bar := range boxBars {
		box.Upper = math.Max(box.Upper, bar.High.InexactFloat64())
		box.Lower = math.Min(box.Lower, bar.Low.InexactFloat64())
	}

	latestClose := series[len(series)-1].Close.InexactFloat64()
	var direction models.BreakoutDirection
	var breakoutLevel float64
	switch {
	case latestClose > box.Upper:
		direction = models.BreakoutUp
		breakoutLevel = box.Upper
	case latestClose < box.Lower:
		direction = models.BreakoutDown
		breakoutLevel = box.Lower
	default:
		// Squeeze and release both triggered but price is still inside
		// the box: not an event until it actually escapes the range.
		return zero
	}

	releaseStrength := math.Min(volRatio/a.cfg.ReleaseThreshold, a.cfg.MaxReleaseStrength)
	score := squeezeStrength*50 + releaseStrength/a.cfg.MaxReleaseStrength*50

	return models.SqueezeReleaseEvent{
		Score:           clampScore(score),
		SqueezeStrength: squeezeStrength,
		ReleaseStrength: releaseStrength,
		Direction:       direction,
		BreakoutLevel:   breakoutLevel,
		Box:             box,
		VolRatio:        volRatio,
	}
}

// trueRanges computes the True Range per bar. The first bar has no previous
// close, so its range is high-low.
func trueRanges(series []models.DailyBar) []float64 {
	tr := make([]float64, len(series))
	for i, bar := range series {
		high := bar.High.InexactFloat64()
		low := bar.Low.InexactFloat64()
		if i == 0 {
			tr[i] = high - low
			continue
		}
		prevClose := series[i-1].Close.InexactFloat64()
		tr[i] = math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}
	return tr
}

// rollingMean returns the simple moving average of values; the output is
// shorter than the input by period-1.
func rollingMean(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
}
