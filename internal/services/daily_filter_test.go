package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscan/internal/models"
	"eventscan/internal/testutil"
)

func newTestDailyFilter() *DailyFilter {
	return NewDailyFilter(testConfig().Filter, testLogger())
}

func TestDailyFilter_EmptyInput(t *testing.T) {
	filter := newTestDailyFilter()
	assert.Empty(t, filter.Filter(nil))
	assert.Empty(t, filter.Filter([]models.DailyBar{}))
}

func TestDailyFilter_PennyStockRemoved(t *testing.T) {
	filter := newTestDailyFilter()

	series := []models.DailyBar{
		testutil.DailyBar("PNY", testutil.Day(0), 4.0, 4.2, 3.9, 4.0, 1000000),
		testutil.DailyBar("PNY", testutil.Day(1), 4.1, 4.3, 4.0, 4.2, 1000000),
	}

	assert.Empty(t, filter.Filter(series))
}

func TestDailyFilter_IlliquidRemoved(t *testing.T) {
	filter := newTestDailyFilter()

	// Close 10 x volume 500 = 5000 dollar volume, far below the floor.
	series := []models.DailyBar{
		testutil.DailyBar("THIN", testutil.Day(0), 10, 10.2, 9.8, 10, 500),
		testutil.DailyBar("THIN", testutil.Day(1), 10, 10.2, 9.8, 10, 500),
	}

	assert.Empty(t, filter.Filter(series))
}

func TestDailyFilter_LiquidSeriesKept(t *testing.T) {
	filter := newTestDailyFilter()

	series := testutil.FlatDailySeries("LQD", 30, 100, 100000)
	kept := filter.Filter(series)

	assert.Len(t, kept, 30)
}

func TestDailyFilter_CorporateActionGapRemoved(t *testing.T) {
	filter := newTestDailyFilter()

	series := []models.DailyBar{
		testutil.DailyBar("SPLT", testutil.Day(0), 100, 101, 99, 100, 100000),
		testutil.DailyBar("SPLT", testutil.Day(1), 100, 101, 99, 100, 100000),
		// +80% overnight gap: split or merger, not a market event.
		testutil.DailyBar("SPLT", testutil.Day(2), 180, 182, 178, 180, 100000),
		// Gap vs the 180 close is -43.9%, below the removal threshold.
		testutil.DailyBar("SPLT", testutil.Day(3), 101, 102, 100, 101, 100000),
	}

	kept := filter.Filter(series)

	assert.Len(t, kept, 3)
	for _, bar := range kept {
		assert.NotEqual(t, testutil.Day(2), bar.Date)
	}
}

func TestDailyFilter_FirstBarKept(t *testing.T) {
	filter := newTestDailyFilter()

	// The first bar has no previous close, so no gap can be computed for it.
	series := testutil.FlatDailySeries("ONE", 1, 100, 100000)
	assert.Len(t, filter.Filter(series), 1)
}

func TestDailyFilter_ChainedSplitGapIdempotent(t *testing.T) {
	filter := newTestDailyFilter()

	// A split halves the price and the series never recovers: every bar
	// after the split gaps -50% against the last surviving close, so the
	// whole post-split tail goes, not just the split bar. Removing the
	// split bar must not surface a new flaggable gap on a second pass.
	series := []models.DailyBar{
		testutil.DailyBar("SPLT", testutil.Day(0), 100, 101, 99, 100, 100000),
		testutil.DailyBar("SPLT", testutil.Day(1), 50, 50.5, 49.5, 50, 100000),
		testutil.DailyBar("SPLT", testutil.Day(2), 50, 50.5, 49.5, 50, 100000),
		testutil.DailyBar("SPLT", testutil.Day(3), 50, 50.5, 49.5, 50, 100000),
	}

	once := filter.Filter(series)

	require.Len(t, once, 1)
	assert.Equal(t, testutil.Day(0), once[0].Date)

	twice := filter.Filter(once)
	assert.Equal(t, once, twice)
}

func TestDailyFilter_OutputHasNoFlaggableGaps(t *testing.T) {
	filter := newTestDailyFilter()

	// Two consecutive split-sized gaps. Whatever survives, no adjacent
	// pair of kept bars may still gap beyond the removal threshold.
	series := []models.DailyBar{
		testutil.DailyBar("SPLT", testutil.Day(0), 100, 101, 99, 100, 100000),
		testutil.DailyBar("SPLT", testutil.Day(1), 200, 202, 198, 200, 100000),
		testutil.DailyBar("SPLT", testutil.Day(2), 100, 101, 99, 100, 100000),
		testutil.DailyBar("SPLT", testutil.Day(3), 101, 102, 100, 101, 100000),
	}

	kept := filter.Filter(series)

	require.NotEmpty(t, kept)
	for i := 1; i < len(kept); i++ {
		prevClose := kept[i-1].Close.InexactFloat64()
		gap := (kept[i].Open.InexactFloat64() - prevClose) / prevClose
		assert.Less(t, math.Abs(gap), 0.5)
	}
	assert.Equal(t, kept, filter.Filter(kept))
}

func TestDailyFilter_Idempotent(t *testing.T) {
	filter := newTestDailyFilter()

	series := []models.DailyBar{
		testutil.DailyBar("IDP", testutil.Day(0), 100, 101, 99, 100, 100000),
		testutil.DailyBar("IDP", testutil.Day(1), 100, 101, 99, 100, 100000),
		testutil.DailyBar("IDP", testutil.Day(2), 180, 182, 178, 180, 100000),
		testutil.DailyBar("IDP", testutil.Day(3), 101, 102, 100, 101, 100000),
		testutil.DailyBar("IDP", testutil.Day(4), 4.0, 4.2, 3.8, 4.0, 100000),
	}

	once := filter.Filter(series)
	twice := filter.Filter(once)

	assert.Equal(t, once, twice)
}
