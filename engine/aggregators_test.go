package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// AGGREGATOR TESTS
// ============================================================================
// Tests cover:
//   1. Series statistics on regular and empty input
//   2. Moving average, correlation and growth rate edge cases
//   3. Number and duration formatting
// ============================================================================

func TestStats(t *testing.T) {
	s := Stats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, s.Mean)
	assert.Equal(t, 4.5, s.Median)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 2.0, s.StdDev)

	assert.Equal(t, Statistics{}, Stats(nil))
}

func TestSeriesHelpersOnEmptyInput(t *testing.T) {
	for name, fn := range map[string]func([]float64) float64{
		"sum": Sum, "mean": Mean, "max": Max, "min": Min, "median": Median,
	} {
		t.Run(name, func(t *testing.T) {
			v := fn(nil)
			assert.Zero(t, v)
			assert.False(t, math.IsNaN(v))
		})
	}
}

func TestMedianOddLength(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 4}, MovingAverage([]float64{1, 2, 3, 4, 5}, 3))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 3))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
	assert.Empty(t, MovingAverage(nil, 7))
}

func TestMovingAverageDoesNotAliasInput(t *testing.T) {
	in := []float64{1, 2}
	out := MovingAverage(in, 5)
	out[0] = 99
	assert.Equal(t, 1.0, in[0])
}

func TestCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	assert.Zero(t, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Zero(t, Correlation([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Zero(t, Correlation(nil, nil))
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, 50.0, GrowthRate(100, 150))
	assert.Equal(t, -50.0, GrowthRate(200, 100))
	assert.Equal(t, 100.0, GrowthRate(0, 10))
	assert.Zero(t, GrowthRate(0, 0))
	assert.Zero(t, GrowthRate(0, -5))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2.67, RoundTo2(8.0/3))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
	assert.Equal(t, 1.235, RoundTo(1.23456, 3))
}

func TestNumberFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "0", FormatInt(0))
	assert.Equal(t, "-1,000", FormatInt(-1000))
	assert.Equal(t, "1,234.50", FormatNumber(1234.5, 2))
	assert.Equal(t, "2,667", FormatNumber(2666.67, 0))
}

func TestDurationFormatting(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) string
		in   float64
		want string
	}{
		{"clock", FormatDuration, 3725, "1:02:05"},
		{"clock zero", FormatDuration, 0, "0:00:00"},
		{"clock negative", FormatDuration, -10, "0:00:00"},
		{"clock long", FormatDuration, 90061, "25:01:01"},
		{"short", FormatDurationShort, 3725, "1:02"},
		{"short zero", FormatDurationShort, 0, "0:00"},
		{"hours minutes", FormatHoursMinutes, 12300, "3h 25m"},
		{"hours minutes negative", FormatHoursMinutes, -1, "0h 0m"},
		{"minutes and seconds", FormatMinutes, 245, "4m 5s"},
		{"whole minutes", FormatMinutes, 120, "2m"},
		{"seconds only", FormatMinutes, 5, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "Avg View Time", LabelFor("avgViewTime"))
	assert.Equal(t, "Likes", LabelFor("likes"))
	assert.Equal(t, "", LabelFor(""))
}
