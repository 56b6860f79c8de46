package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// GapAnalyzer scores opening-gap anomalies on a cleaned daily series.
// The z-score uses median/MAD over the trailing gap history rather than
// mean/stddev: a handful of extreme historical gaps must not suppress
// detection of a new one.
type GapAnalyzer struct {
	cfg    config.GapConfig
	logger *logrus.Logger
}

// NewGapAnalyzer creates a new gap analyzer.
func NewGapAnalyzer(cfg config.GapConfig, logger *logrus.Logger) *GapAnalyzer {
	return &GapAnalyzer{
		cfg:    cfg,
		logger: logger,
	}
}

// Analyze classifies the latest bar's gap behavior. Degenerate input
// (fewer than two bars, zero MAD) degrades to a NONE / zero-score event,
// never an error.
func (a *GapAnalyzer) Analyze(series []models.DailyBar) models.GapEvent {
	none := models.GapEvent{Type: models.GapNone}
	if len(series) < 2 {
		return none
	}

	latest := series[len(series)-1]
	prev := series[len(series)-2]

	prevClose := prev.Close.InexactFloat64()
	open := latest.Open.InexactFloat64()
	close := latest.Close.InexactFloat64()
	if prevClose == 0 || open == 0 {
		return none
	}

	gap := (open - prevClose) / prevClose
	intraday := (close - open) / open

	// Gap too small to be worth evaluating.
	if math.Abs(gap) < a.cfg.MinGap {
		return none
	}

	zScore := a.robustZ(series, gap)
	reversalRatio := -intraday / gap
	moveRatio := intraday / gap

	refLevels := map[string]float64{
		models.LevelPrevClose: prevClose,
		models.LevelOpen:      open,
		models.LevelClose:     close,
	}

	event := models.GapEvent{
		Type:          models.GapNone,
		GapSize:       gap,
		ReversalRatio: reversalRatio,
		ZScore:        zScore,
		RefLevels:     refLevels,
	}

	switch {
	case reversalRatio > a.cfg.MinMoveRatio:
		// Gapped one way, closed substantially the other way.
		event.Type = models.GapReversal
		event.Score = clampScore(math.Abs(zScore) * reversalRatio)
	case math.Abs(moveRatio) > a.cfg.MinMoveRatio && sameSign(gap, intraday):
		// Intraday move extended the gap.
		event.Type = models.GapContinuation
		event.Score = clampScore(math.Abs(zScore) * math.Abs(moveRatio))
	}

	return event
}

// robustZ scores the latest gap against the trailing lookback window of
// historical gaps, the latest gap included, using median and MAD.
func (a *GapAnalyzer) robustZ(series []models.DailyBar, gap float64) float64 {
	count := len(series) - 1
	if a.cfg.Lookback > 0 && count > a.cfg.Lookback {
		count = a.cfg.Lookback
	}

	gaps := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		curr := series[len(series)-1-i]
		prevBar := series[len(series)-2-i]
		prevClose := prevBar.Close.InexactFloat64()
		if prevClose == 0 {
			continue
		}
		gaps = append(gaps, (curr.Open.InexactFloat64()-prevClose)/prevClose)
	}

	med := median(gaps)
	dispersion := mad(gaps, med)
	if dispersion == 0 {
		return 0
	}
	return (gap - med) / (dispersion * madScale)
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
