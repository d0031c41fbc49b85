package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================================================
// AGGREGATORS — Series statistics and formatting utilities
// ============================================================================
// All functions operate on plain []float64 series extracted from a Dataset.
// Empty input never panics and never produces NaN.
// ============================================================================

// Sum adds every value of a series.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean computes the arithmetic mean, 0 for an empty series.
func Mean(values []float64) float64 {
	return safeDiv(Sum(values), float64(len(values)))
}

// Max returns the largest value, 0 for an empty series.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest value, 0 for an empty series.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

// Median returns the middle value, averaging the two middle values of an
// even-length series.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Stats summarises a series. The standard deviation is the population one.
func Stats(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return Statistics{
		Mean:   mean,
		Median: Median(values),
		Min:    Min(values),
		Max:    Max(values),
		StdDev: math.Sqrt(variance),
	}
}

// MovingAverage returns the mean of each full window. A series shorter than
// the window, or a non-positive window, is returned unchanged.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// Correlation returns the Pearson coefficient of two equal-length series,
// 0 when lengths differ, the series are empty, or either is constant.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}
	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}

// GrowthRate is the percentage change from old to new. Growth from zero is
// 100% when new is positive, otherwise 0.
func GrowthRate(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		if newValue > 0 {
			return 100
		}
		return 0
	}
	return (newValue - oldValue) / oldValue * 100
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo rounds to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatInt formats an integer with thousands separators.
func FormatInt(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatNumber formats a value with thousands separators and the given
// number of decimals.
func FormatNumber(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return message.NewPrinter(language.English).Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// FormatDuration renders seconds as H:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00:00"
	}
	s := int64(seconds)
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// FormatDurationShort renders seconds as H:MM.
func FormatDurationShort(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	s := int64(seconds)
	return fmt.Sprintf("%d:%02d", s/3600, (s%3600)/60)
}

// FormatHoursMinutes renders seconds as "3h 25m".
func FormatHoursMinutes(seconds float64) string {
	s := int64(math.Max(seconds, 0))
	return fmt.Sprintf("%dh %dm", s/3600, (s%3600)/60)
}

// FormatMinutes renders seconds as "4m 5s", dropping a zero part.
func FormatMinutes(seconds float64) string {
	s := int64(math.Max(seconds, 0))
	m, rem := s/60, s%60
	switch {
	case m == 0:
		return fmt.Sprintf("%ds", rem)
	case rem == 0:
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, rem)
}

// LabelFor turns a camelCase key into a title-cased label.
// "avgViewTime" → "Avg View Time".
func LabelFor(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
