package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventscan/internal/models"
	"eventscan/internal/testutil"
)

func newTestSqueezeAnalyzer() *SqueezeReleaseAnalyzer {
	return NewSqueezeReleaseAnalyzer(testConfig().Squeeze, testLogger())
}

// squeezeSeries builds 39 bars: 20 with a true range of 1.0 followed by 19
// compressed bars with a true range of 0.2, all closing at 100. Tests append
// the 40th bar to trigger (or not trigger) a release.
func squeezeSeries(symbol string) []models.DailyBar {
	series := make([]models.DailyBar, 0, 40)
	for i := 0; i < 20; i++ {
		series = append(series, testutil.DailyBar(symbol, testutil.Day(i), 100, 100.6, 99.6, 100, 100000))
	}
	for i := 20; i < 39; i++ {
		series = append(series, testutil.DailyBar(symbol, testutil.Day(i), 100, 100.1, 99.9, 100, 100000))
	}
	return series
}

func TestSqueezeAnalyzer_EmptySeries(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	event := analyzer.Analyze(nil)
	assert.Zero(t, event.Score)
}

func TestSqueezeAnalyzer_TooFewBars(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	event := analyzer.Analyze(testutil.FlatDailySeries("X", 25, 100, 100000))
	assert.Zero(t, event.Score)
}

func TestSqueezeAnalyzer_UpwardBreakout(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	series := squeezeSeries("X")
	// Range expansion bar closing well above the consolidation box.
	series = append(series, testutil.DailyBar("X", testutil.Day(39), 100.5, 103.2, 100.2, 102.7, 100000))

	event := analyzer.Analyze(series)

	assert.Equal(t, models.BreakoutUp, event.Direction)
	// 15 of the last 20 short-window readings sat at the low-vol floor.
	assert.InDelta(t, 0.75, event.SqueezeStrength, 1e-9)
	// Short-window vol 0.8 against long-window vol 0.35.
	assert.InDelta(t, 2.2857, event.VolRatio, 0.001)
	// Box spans the squeeze window preceding the breakout bar; bar 19 still
	// carries the wide pre-squeeze range.
	assert.InDelta(t, 100.6, event.Box.Upper, 1e-9)
	assert.InDelta(t, 99.6, event.Box.Lower, 1e-9)
	assert.InDelta(t, 100.6, event.BreakoutLevel, 1e-9)
	assert.InDelta(t, 56.55, event.Score, 0.05)
}

func TestSqueezeAnalyzer_DownwardBreakout(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	series := squeezeSeries("X")
	series = append(series, testutil.DailyBar("X", testutil.Day(39), 99.5, 99.8, 97.0, 97.5, 100000))

	event := analyzer.Analyze(series)

	assert.Equal(t, models.BreakoutDown, event.Direction)
	assert.InDelta(t, 99.6, event.BreakoutLevel, 1e-9)
	assert.Greater(t, event.Score, 50.0)
}

func TestSqueezeAnalyzer_ExpansionInsideBoxIgnored(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	series := squeezeSeries("X")
	// Volatility expands but the close lands back inside the box: wide
	// intraday swing, no escape.
	series = append(series, testutil.DailyBar("X", testutil.Day(39), 100, 100.55, 97.5, 100, 100000))

	event := analyzer.Analyze(series)

	assert.Zero(t, event.Score)
	assert.Equal(t, models.BreakoutNone, event.Direction)
}

func TestSqueezeAnalyzer_NoExpansionIgnored(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	series := squeezeSeries("X")
	// One more quiet bar: squeezed but nothing released.
	series = append(series, testutil.DailyBar("X", testutil.Day(39), 100, 100.1, 99.9, 100, 100000))

	event := analyzer.Analyze(series)
	assert.Zero(t, event.Score)
}

func TestSqueezeAnalyzer_ExpansionWithoutSqueezeIgnored(t *testing.T) {
	analyzer := newTestSqueezeAnalyzer()

	// Volatility has already been elevated for weeks when the expansion bar
	// prints: no recent compression, so no release.
	series := make([]models.DailyBar, 0, 40)
	for i := 0; i < 20; i++ {
		series = append(series, testutil.DailyBar("X", testutil.Day(i), 100, 100.1, 99.9, 100, 100000))
	}
	for i := 20; i < 39; i++ {
		series = append(series, testutil.DailyBar("X", testutil.Day(i), 100, 100.6, 99.6, 100, 100000))
	}
	series = append(series, testutil.DailyBar("X", testutil.Day(39), 100, 114, 99, 113, 100000))

	event := analyzer.Analyze(series)
	assert.Zero(t, event.Score)
}
