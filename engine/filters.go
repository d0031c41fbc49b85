package engine

import "time"

// ============================================================================
// FILTERS — Date-range selection over a Dataset
// ============================================================================
// Filtering copies the matching records into a new Dataset; the input is
// never modified.
// ============================================================================

// FilterRange returns the records dated on a day within [start, end],
// inclusive. Only the calendar day counts, so a record stamped 15:04 on the
// end day is kept. A zero start or end leaves that side open.
func FilterRange(ds Dataset, start, end time.Time) Dataset {
	if start.IsZero() && end.IsZero() {
		return ds
	}
	first, last := truncateDay(start), truncateDay(end)
	in := func(t time.Time) bool {
		d := truncateDay(t)
		if !start.IsZero() && d.Before(first) {
			return false
		}
		if !end.IsZero() && d.After(last) {
			return false
		}
		return true
	}
	return Dataset{
		Engagement: filterRecords(ds.Engagement, func(r EngagementRecord) bool { return in(r.Date) }),
		Revenue:    filterRecords(ds.Revenue, func(r RevenueRecord) bool { return in(r.Date) }),
		Activity:   filterRecords(ds.Activity, func(r ActivityRecord) bool { return in(r.Date) }),
		Viewer:     filterRecords(ds.Viewer, func(r ViewerRecord) bool { return in(r.Date) }),
	}
}

func filterRecords[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Dates returns every record date across the four sequences, unsorted.
func Dates(ds Dataset) []time.Time {
	dates := make([]time.Time, 0, len(ds.Engagement)+len(ds.Revenue)+len(ds.Activity)+len(ds.Viewer))
	for _, r := range ds.Engagement {
		dates = append(dates, r.Date)
	}
	for _, r := range ds.Revenue {
		dates = append(dates, r.Date)
	}
	for _, r := range ds.Activity {
		dates = append(dates, r.Date)
	}
	for _, r := range ds.Viewer {
		dates = append(dates, r.Date)
	}
	return dates
}

// DateRange returns the earliest and latest record dates.
// ok is false for an empty dataset.
func DateRange(ds Dataset) (start, end time.Time, ok bool) {
	for i, t := range Dates(ds) {
		if i == 0 || t.Before(start) {
			start = t
		}
		if i == 0 || t.After(end) {
			end = t
		}
		ok = true
	}
	return start, end, ok
}
