package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"eventscan/internal/config"
	"eventscan/internal/models"
)

// WatchlistBuilder aggregates per-symbol daily events into the ranked,
// size-bounded shortlist handed to intraday confirmation.
type WatchlistBuilder struct {
	cfg    config.WatchlistConfig
	logger *logrus.Logger
}

// NewWatchlistBuilder creates a new watchlist builder.
func NewWatchlistBuilder(cfg config.WatchlistConfig, logger *logrus.Logger) *WatchlistBuilder {
	return &WatchlistBuilder{
		cfg:    cfg,
		logger: logger,
	}
}

// Build scores each symbol as max(gap score, squeeze score), drops entries
// below the minimum, sorts by score descending with symbol as tie-break,
// and truncates to the configured top N.
func (b *WatchlistBuilder) Build(events []models.SymbolEvent) []models.WatchlistEntry {
	entries := make([]models.WatchlistEntry, 0, len(events))

	for _, event := range events {
		score := event.Squeeze.Score
		eventType := models.EventSqueezeRelease
		if event.Gap.Score > score {
			score = event.Gap.Score
			eventType = gapEventLabel(event.Gap.Type)
		}

		if score < b.cfg.MinScore || eventType == "" {
			continue
		}

		entries = append(entries, models.WatchlistEntry{
			Symbol:    event.Symbol,
			Date:      event.Date,
			EventType: eventType,
			Score:     score,
			KeyLevels: extractKeyLevels(event),
			Gap:       event.Gap,
			Squeeze:   event.Squeeze,
		})
	}

	// Equal scores break ties on symbol so ranking is deterministic even
	// when the daily stage ran in parallel.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Symbol < entries[j].Symbol
	})

	if len(entries) > b.cfg.TopN {
		entries = entries[:b.cfg.TopN]
	}

	b.logger.WithFields(logrus.Fields{
		"candidates": len(events),
		"selected":   len(entries),
	}).Info("Built watchlist")
	return entries
}

func gapEventLabel(t models.GapEventType) string {
	switch t {
	case models.GapReversal:
		return models.EventGapReversal
	case models.GapContinuation:
		return models.EventGapContinuation
	default:
		return ""
	}
}

// extractKeyLevels merges the reference levels of both sub-events into one
// mapping used by the key-level confirmation check.
func extractKeyLevels(event models.SymbolEvent) map[string]float64 {
	levels := make(map[string]float64)

	for name, price := range event.Gap.RefLevels {
		levels[name] = price
	}

	if event.Squeeze.Score > 0 {
		levels[models.LevelBoxUpper] = event.Squeeze.Box.Upper
		levels[models.LevelBoxLower] = event.Squeeze.Box.Lower
		levels[models.LevelBreakoutLevel] = event.Squeeze.BreakoutLevel
	}

	return levels
}
