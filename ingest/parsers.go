package ingest

import (
	"strings"
	"time"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/schema"
)

// ============================================================================
// RECORD PARSERS — Raw rows to typed daily records
// ============================================================================
// Column positions come from the kind's schema mapping table. No row is ever
// rejected: missing cells read as 0 and bad dates fall back to now().
// ============================================================================

// rowReader reads mapped cells from one row.
type rowReader struct {
	mapping schema.Mapping
	now     func() time.Time
}

func newRowReader(headers []string, kind schema.RecordKind, now func() time.Time) rowReader {
	if now == nil {
		now = time.Now
	}
	return rowReader{mapping: schema.Resolve(headers, kind), now: now}
}

func (r rowReader) cell(row []string, field string) string {
	i := r.mapping.Column(field)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (r rowReader) number(row []string, field string) float64 {
	return SafeNumber(r.cell(row, field))
}

func (r rowReader) date(row []string) DateResult {
	return NormalizeDate(r.cell(row, schema.FieldDate), r.now)
}

// ParseStats reports how leniently a set of rows was read.
type ParseStats struct {
	Rows          int      `json:"rows"`
	FallbackDates int      `json:"fallbackDates"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func newParseStats(r rowReader, kind schema.RecordKind, rows int) ParseStats {
	st := ParseStats{Rows: rows}
	for _, f := range schema.Fields(kind) {
		if r.mapping.Column(f.Name) < 0 {
			st.MissingFields = append(st.MissingFields, f.Name)
		}
	}
	return st
}

// ParseEngagement converts engagement rows into records.
func ParseEngagement(headers []string, rows [][]string, now func() time.Time) ([]engine.EngagementRecord, ParseStats) {
	r := newRowReader(headers, schema.KindEngagement, now)
	st := newParseStats(r, schema.KindEngagement, len(rows))
	out := make([]engine.EngagementRecord, 0, len(rows))
	for _, row := range rows {
		d := r.date(row)
		if d.Fallback {
			st.FallbackDates++
		}
		out = append(out, engine.EngagementRecord{
			Date:         d.Time,
			DateString:   d.Display,
			GiftGivers:   r.number(row, schema.FieldGiftGivers),
			NewFollowers: r.number(row, schema.FieldNewFollowers),
			Commenters:   r.number(row, schema.FieldCommenters),
			Likes:        r.number(row, schema.FieldLikes),
			Shares:       r.number(row, schema.FieldShares),
		})
	}
	return out, st
}

// ParseRevenue converts revenue rows into records.
func ParseRevenue(headers []string, rows [][]string, now func() time.Time) ([]engine.RevenueRecord, ParseStats) {
	r := newRowReader(headers, schema.KindRevenue, now)
	st := newParseStats(r, schema.KindRevenue, len(rows))
	out := make([]engine.RevenueRecord, 0, len(rows))
	for _, row := range rows {
		d := r.date(row)
		if d.Fallback {
			st.FallbackDates++
		}
		out = append(out, engine.RevenueRecord{
			Date:       d.Time,
			DateString: d.Display,
			Diamonds:   r.number(row, schema.FieldDiamonds),
		})
	}
	return out, st
}

// ParseActivity converts activity rows into records.
func ParseActivity(headers []string, rows [][]string, now func() time.Time) ([]engine.ActivityRecord, ParseStats) {
	r := newRowReader(headers, schema.KindActivity, now)
	st := newParseStats(r, schema.KindActivity, len(rows))
	out := make([]engine.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		d := r.date(row)
		if d.Fallback {
			st.FallbackDates++
		}
		out = append(out, engine.ActivityRecord{
			Date:            d.Time,
			DateString:      d.Display,
			LiveTimeSeconds: r.number(row, schema.FieldLiveTime),
			LiveCount:       r.number(row, schema.FieldLiveCount),
		})
	}
	return out, st
}

// ParseViewer converts viewer rows into records.
func ParseViewer(headers []string, rows [][]string, now func() time.Time) ([]engine.ViewerRecord, ParseStats) {
	r := newRowReader(headers, schema.KindViewer, now)
	st := newParseStats(r, schema.KindViewer, len(rows))
	out := make([]engine.ViewerRecord, 0, len(rows))
	for _, row := range rows {
		d := r.date(row)
		if d.Fallback {
			st.FallbackDates++
		}
		out = append(out, engine.ViewerRecord{
			Date:               d.Time,
			DateString:         d.Display,
			ViewCount:          r.number(row, schema.FieldViewCount),
			UniqueViewers:      r.number(row, schema.FieldUniqueViewers),
			AvgViewTimeSeconds: r.number(row, schema.FieldAvgViewTime),
			MaxConcurrent:      r.number(row, schema.FieldMaxConcurrent),
			AvgConcurrent:      r.number(row, schema.FieldAvgConcurrent),
		})
	}
	return out, st
}
