package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscan/internal/config"
	"eventscan/internal/models"
	"eventscan/internal/testutil"
)

func newTestWatchlistBuilder(cfg config.WatchlistConfig) *WatchlistBuilder {
	return NewWatchlistBuilder(cfg, testLogger())
}

func gapScoredEvent(symbol string, score float64) models.SymbolEvent {
	return models.SymbolEvent{
		Symbol: symbol,
		Date:   testutil.Day(0),
		Gap: models.GapEvent{
			Type:  models.GapReversal,
			Score: score,
			RefLevels: map[string]float64{
				models.LevelPrevClose: 100,
				models.LevelOpen:      105,
				models.LevelClose:     98.7,
			},
		},
	}
}

func squeezeScoredEvent(symbol string, score float64) models.SymbolEvent {
	return models.SymbolEvent{
		Symbol: symbol,
		Date:   testutil.Day(0),
		Squeeze: models.SqueezeReleaseEvent{
			Score:         score,
			Direction:     models.BreakoutUp,
			BreakoutLevel: 100.6,
			Box:           models.ConsolidationBox{Upper: 100.6, Lower: 99.6},
		},
	}
}

func TestWatchlistBuilder_EmptyInput(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)
	assert.Empty(t, builder.Build(nil))
}

func TestWatchlistBuilder_TakesHigherScore(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	event := gapScoredEvent("AAA", 80)
	event.Squeeze = squeezeScoredEvent("AAA", 60).Squeeze

	entries := builder.Build([]models.SymbolEvent{event})

	require.Len(t, entries, 1)
	assert.Equal(t, models.EventGapReversal, entries[0].EventType)
	assert.Equal(t, 80.0, entries[0].Score)
}

func TestWatchlistBuilder_SqueezeWinsTies(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	event := gapScoredEvent("AAA", 70)
	event.Squeeze = squeezeScoredEvent("AAA", 70).Squeeze

	entries := builder.Build([]models.SymbolEvent{event})

	require.Len(t, entries, 1)
	assert.Equal(t, models.EventSqueezeRelease, entries[0].EventType)
}

func TestWatchlistBuilder_DropsLowScores(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	entries := builder.Build([]models.SymbolEvent{
		gapScoredEvent("AAA", 49.9),
		squeezeScoredEvent("BBB", 50),
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "BBB", entries[0].Symbol)
}

func TestWatchlistBuilder_SortsByScoreThenSymbol(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	entries := builder.Build([]models.SymbolEvent{
		gapScoredEvent("CCC", 60),
		gapScoredEvent("AAA", 60),
		squeezeScoredEvent("BBB", 90),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "BBB", entries[0].Symbol)
	assert.Equal(t, "AAA", entries[1].Symbol)
	assert.Equal(t, "CCC", entries[2].Symbol)
}

func TestWatchlistBuilder_TruncatesToTopN(t *testing.T) {
	builder := newTestWatchlistBuilder(config.WatchlistConfig{TopN: 2, MinScore: 50})

	entries := builder.Build([]models.SymbolEvent{
		gapScoredEvent("AAA", 55),
		gapScoredEvent("BBB", 65),
		gapScoredEvent("CCC", 75),
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "CCC", entries[0].Symbol)
	assert.Equal(t, "BBB", entries[1].Symbol)
}

func TestWatchlistBuilder_MergesKeyLevels(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	event := gapScoredEvent("AAA", 80)
	event.Squeeze = squeezeScoredEvent("AAA", 60).Squeeze

	entries := builder.Build([]models.SymbolEvent{event})

	require.Len(t, entries, 1)
	levels := entries[0].KeyLevels
	assert.InDelta(t, 100, levels[models.LevelPrevClose], 1e-9)
	assert.InDelta(t, 105, levels[models.LevelOpen], 1e-9)
	assert.InDelta(t, 100.6, levels[models.LevelBoxUpper], 1e-9)
	assert.InDelta(t, 99.6, levels[models.LevelBoxLower], 1e-9)
	assert.InDelta(t, 100.6, levels[models.LevelBreakoutLevel], 1e-9)
}

func TestWatchlistBuilder_SkipsSqueezeLevelsWhenAbsent(t *testing.T) {
	builder := newTestWatchlistBuilder(testConfig().Watchlist)

	entries := builder.Build([]models.SymbolEvent{gapScoredEvent("AAA", 80)})

	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].KeyLevels, models.LevelBoxUpper)
	assert.NotContains(t, entries[0].KeyLevels, models.LevelBreakoutLevel)
}
