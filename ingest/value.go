package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/spektr-org/livepulse/engine"
)

// ============================================================================
// CELL VALUES — Lenient number and date parsing
// ============================================================================
// Neither function can fail. Garbled numbers read as 0; unparseable dates
// read as the current time and are marked as a fallback.
// ============================================================================

var numericPrefix = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)

// SafeNumber strips every character except digits, '.' and '-', then parses
// the longest leading number. Anything unparseable is 0.
func SafeNumber(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	m := numericPrefix.FindString(cleaned)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// DateResult is the outcome of lenient date parsing: either a genuinely
// parsed date or the fallback clock reading.
type DateResult struct {
	Time     time.Time `json:"time"`
	Display  string    `json:"display"`
	Fallback bool      `json:"fallback"`
}

// Parsed wraps a successfully parsed date.
func Parsed(t time.Time) DateResult {
	return DateResult{Time: t, Display: t.Format(engine.DisplayLayout)}
}

// FallbackUsed wraps the substitute date used when parsing failed.
func FallbackUsed(now time.Time) DateResult {
	return DateResult{Time: now, Display: now.Format(engine.DisplayLayout), Fallback: true}
}

// dateLayouts are tried in order; the first clean parse wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"Mon Jan 02 2006 15:04:05",
}

// verboseStampLen is the length of "Mon Jan 02 2006 15:04:05"; browser date
// strings append a zone suffix after it.
const verboseStampLen = len("Mon Jan 02 2006 15:04:05")

// NormalizeDate parses a raw date cell. Known layouts are tried first, then
// free-form parsing, then now() is used. It never fails.
func NormalizeDate(raw string, now func() time.Time) DateResult {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return Parsed(t)
			}
		}
		if len(s) > verboseStampLen {
			if t, err := time.ParseInLocation(dateLayouts[4], s[:verboseStampLen], time.UTC); err == nil {
				return Parsed(t)
			}
		}
		if t, ok := freeFormDate(s); ok {
			return Parsed(t)
		}
	}

	if now == nil {
		now = time.Now
	}
	return FallbackUsed(now())
}

// freeFormDate wraps dateparse and recovers from its panics on odd input.
func freeFormDate(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
