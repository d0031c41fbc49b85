package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"n/a", 0},
		{"-", 0},
		{"--", 0},
		{".", 0},
		{"42", 42},
		{"-42", -42},
		{"3.75", 3.75},
		{"$1,234.50", 1234.5},
		{"¥500", 500},
		{"1,000,000", 1000000},
		{"12 views", 12},
		{"1.2.3", 1.2},
		{" 7 ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNumber(tt.in))
		})
	}
}

func TestNormalizeDateLayouts(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"iso", "2024-01-15"},
		{"slashed", "2024/01/15"},
		{"us", "01/15/2024"},
		{"day first", "15/01/2024"},
		{"verbose stamp", "Mon Jan 15 2024 10:30:00"},
		{"verbose stamp with zone", "Mon Jan 15 2024 10:30:00 GMT+0900 (Japan Standard Time)"},
		{"free form", "January 15, 2024"},
		{"padded", "  2024-01-15  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.in, clock)
			assert.False(t, got.Fallback)
			assert.Equal(t, "2024/01/15", got.Display)
			assert.Equal(t, 2024, got.Time.Year())
			assert.Equal(t, time.January, got.Time.Month())
			assert.Equal(t, 15, got.Time.Day())
		})
	}
}

func TestNormalizeDateAmbiguousPrefersMonthFirst(t *testing.T) {
	got := NormalizeDate("03/04/2024", clock)
	assert.Equal(t, "2024/03/04", got.Display)
}

func TestNormalizeDateFallsBackToNow(t *testing.T) {
	for _, in := range []string{"", "   ", "xyzq-baad", "not a date"} {
		t.Run(in, func(t *testing.T) {
			got := NormalizeDate(in, clock)
			assert.True(t, got.Fallback)
			assert.Equal(t, fixedNow, got.Time)
			assert.Equal(t, "2025/03/09", got.Display)
			assert.False(t, got.Time.IsZero())
		})
	}
}

func TestNormalizeDateNilClock(t *testing.T) {
	got := NormalizeDate("", nil)
	assert.True(t, got.Fallback)
	assert.WithinDuration(t, time.Now(), got.Time, time.Minute)
}

func TestDateResultConstructors(t *testing.T) {
	d := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, DateResult{Time: d, Display: "2024/02/29"}, Parsed(d))
	assert.Equal(t, DateResult{Time: d, Display: "2024/02/29", Fallback: true}, FallbackUsed(d))
}
