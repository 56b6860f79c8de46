package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// Confirmer validates a daily event against intraday structure. Three
// independent checks (opening range, key-level reaction, volume expansion)
// each may confirm; the event is confirmed if any one fires.
type Confirmer struct {
	cfg    config.ConfirmationConfig
	logger *logrus.Logger
}

// NewConfirmer creates a new intraday confirmer.
func NewConfirmer(cfg config.ConfirmationConfig, logger *logrus.Logger) *Confirmer {
	return &Confirmer{
		cfg:    cfg,
		logger: logger,
	}
}

// Confirm evaluates a watchlist entry against its intraday bars. Only bars
// on the event's date count; fewer than the minimum bar count means the
// session cannot be judged and the event stays unconfirmed.
func (c *Confirmer) Confirm(entry models.WatchlistEntry, bars []models.IntradayBar) models.ConfirmationResult {
	result := models.ConfirmationResult{Status: models.StatusNotEvaluated}

	sessionBars := barsOnDate(bars, entry)
	if len(sessionBars) < c.cfg.MinBars {
		result.Status = models.StatusNotConfirmed
		return result
	}

	var tags []string
	confirmed := false

	orResult := c.checkOpeningRange(sessionBars)
	result.OpeningRange = orResult
	if orResult.Quality > c.cfg.MinORQuality {
		tags = append(tags, orResult.Tag)
		confirmed = true
	}

	levelResult := c.checkKeyLevels(entry.KeyLevels, sessionBars)
	result.KeyLevel = levelResult
	if levelResult.Reacted {
		tags = append(tags, levelResult.Tag)
		confirmed = true
	}

	volResult := c.checkVolumeExpansion(sessionBars)
	result.Volume = volResult
	if volResult.Expanded {
		tags = append(tags, models.TagVolExpansion)
		confirmed = true
	}

	result.Confirmed = confirmed
	result.StructureTags = tags
	if confirmed {
		result.Status = models.StatusConfirmed
	} else {
		result.Status = models.StatusNotConfirmed
	}
	return result
}

// checkOpeningRange compares the rest of the session to the range set by
// the first 30 minutes. Quality is the breakout excursion relative to the
// range size, capped at 1.
func (c *Confirmer) checkOpeningRange(bars []models.IntradayBar) models.OpeningRangeAnalysis {
	orBars := c.cfg.OpeningRangeBars
	if len(bars) < orBars+1 {
		return models.OpeningRangeAnalysis{}
	}

	orHigh := bars[0].High.InexactFloat64()
	orLow := bars[0].Low.InexactFloat64()
	for _, bar := range bars[1:orBars] {
		orHigh = math.Max(orHigh, bar.High.InexactFloat64())
		orLow = math.Min(orLow, bar.Low.InexactFloat64())
	}
	orRange := orHigh - orLow

	maxHigh := bars[orBars].High.InexactFloat64()
	minLow := bars[orBars].Low.InexactFloat64()
	for _, bar := range bars[orBars+1:] {
		maxHigh = math.Max(maxHigh, bar.High.InexactFloat64())
		minLow = math.Min(minLow, bar.Low.InexactFloat64())
	}

	analysis := models.OpeningRangeAnalysis{High: orHigh, Low: orLow}
	switch {
	case maxHigh > orHigh:
		analysis.Tag = models.TagORBreakoutUp
		if orRange > 0 {
			analysis.Quality = math.Min((maxHigh-orHigh)/orRange, 1.0)
		}
	case minLow < orLow:
		analysis.Tag = models.TagORBreakoutDown
		if orRange > 0 {
			analysis.Quality = math.Min((orLow-minLow)/orRange, 1.0)
		}
	default:
		analysis.Tag = models.TagORNoBreakout
	}
	return analysis
}

// checkKeyLevels reports the first key level whose tolerance band was
// touched by any bar's low/high range. Levels are visited in name order so
// the reported level is deterministic.
func (c *Confirmer) checkKeyLevels(keyLevels map[string]float64, bars []models.IntradayBar) models.KeyLevelAnalysis {
	if len(keyLevels) == 0 {
		return models.KeyLevelAnalysis{}
	}

	names := make([]string, 0, len(keyLevels))
	for name := range keyLevels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		level := keyLevels[name]
		if level <= 0 {
			continue
		}
		tolerance := level * c.cfg.LevelTolerance

		touched := 0
		for _, bar := range bars {
			if bar.Low.InexactFloat64() <= level+tolerance && bar.High.InexactFloat64() >= level-tolerance {
				touched++
			}
		}
		if touched > 0 {
			return models.KeyLevelAnalysis{
				Reacted:     true,
				Tag:         fmt.Sprintf("LEVEL_%s_TEST", strings.ToUpper(name)),
				Level:       level,
				BarsAtLevel: touched,
			}
		}
	}
	return models.KeyLevelAnalysis{}
}

// checkVolumeExpansion compares mean volume of the session's second half
// against its first half.
func (c *Confirmer) checkVolumeExpansion(bars []models.IntradayBar) models.VolumeAnalysis {
	if len(bars) < c.cfg.MinVolumeBars {
		return models.VolumeAnalysis{}
	}

	mid := len(bars) / 2
	firstHalf := make([]float64, 0, mid)
	secondHalf := make([]float64, 0, len(bars)-mid)
	for i, bar := range bars {
		if i < mid {
			firstHalf = append(firstHalf, bar.Volume.InexactFloat64())
		} else {
			secondHalf = append(secondHalf, bar.Volume.InexactFloat64())
		}
	}

	firstMean := mean(firstHalf)
	if firstMean == 0 {
		return models.VolumeAnalysis{}
	}

	ratio := mean(secondHalf) / firstMean
	return models.VolumeAnalysis{
		Expanded: ratio > c.cfg.VolumeRatio,
		Ratio:    ratio,
	}
}

// barsOnDate restricts intraday bars to the event's trading date.
func barsOnDate(bars []models.IntradayBar, entry models.WatchlistEntry) []models.IntradayBar {
	year, month, day := entry.Date.Date()
	session := make([]models.IntradayBar, 0, len(bars))
	for _, bar := range bars {
		y, m, d := bar.Timestamp.Date()
		if y == year && m == month && d == day {
			session = append(session, bar)
		}
	}
	return session
}
