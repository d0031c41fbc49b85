package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ============================================================================
// MERGER — Outer join of the four sequences on the display date
// ============================================================================
// Dates are collected in first-seen order (engagement, revenue, activity,
// viewer). Each sequence then writes its disjoint field set into the row for
// its date. The same day written in two different display formats stays two
// rows; no reconciliation is attempted.
// ============================================================================

// ErrUnknownColumn is returned when sorting by a column that does not exist.
var ErrUnknownColumn = errors.New("unknown column")

// Column keys of a MergedRow, in export order.
const (
	ColDate          = "date"
	ColGiftGivers    = "giftGivers"
	ColNewFollowers  = "newFollowers"
	ColCommenters    = "commenters"
	ColLikes         = "likes"
	ColShares        = "shares"
	ColLiveTime      = "liveTime"
	ColLiveCount     = "liveCount"
	ColViews         = "views"
	ColUniqueViewers = "uniqueViewers"
	ColAvgViewTime   = "avgViewTime"
	ColMaxConcurrent = "maxConcurrent"
	ColAvgConcurrent = "avgConcurrent"
	ColDiamonds      = "diamonds"
)

var rowColumns = []Column{
	{Key: ColDate, Label: "Date", Type: "date", Align: "left"},
	{Key: ColGiftGivers, Label: "Gift Givers", Type: "number", Align: "right"},
	{Key: ColNewFollowers, Label: "New Followers", Type: "number", Align: "right"},
	{Key: ColCommenters, Label: "Commenters", Type: "number", Align: "right"},
	{Key: ColLikes, Label: "Likes", Type: "number", Align: "right"},
	{Key: ColShares, Label: "Shares", Type: "number", Align: "right"},
	{Key: ColLiveTime, Label: "Live Time", Type: "duration", Align: "right"},
	{Key: ColLiveCount, Label: "Live Count", Type: "number", Align: "right"},
	{Key: ColViews, Label: "Views", Type: "number", Align: "right"},
	{Key: ColUniqueViewers, Label: "Unique Viewers", Type: "number", Align: "right"},
	{Key: ColAvgViewTime, Label: "Avg View Time", Type: "duration", Align: "right"},
	{Key: ColMaxConcurrent, Label: "Peak Concurrent", Type: "number", Align: "right"},
	{Key: ColAvgConcurrent, Label: "Avg Concurrent", Type: "number", Align: "right"},
	{Key: ColDiamonds, Label: "Diamonds", Type: "currency", Align: "right"},
}

// RowColumns returns the merged-row columns in their fixed order.
func RowColumns() []Column {
	out := make([]Column, len(rowColumns))
	copy(out, rowColumns)
	return out
}

// Merge joins a Dataset into one row per distinct display date.
// Rows come back in first-seen order with every field populated.
func Merge(ds Dataset) []MergedRow {
	rows := make([]MergedRow, 0)
	index := make(map[string]int)

	rowFor := func(key string, t time.Time) *MergedRow {
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, MergedRow{Date: key, Time: t})
		}
		return &rows[i]
	}

	// First pass fixes insertion order across all four sources.
	for _, r := range ds.Engagement {
		rowFor(r.DateString, r.Date)
	}
	for _, r := range ds.Revenue {
		rowFor(r.DateString, r.Date)
	}
	for _, r := range ds.Activity {
		rowFor(r.DateString, r.Date)
	}
	for _, r := range ds.Viewer {
		rowFor(r.DateString, r.Date)
	}

	for _, r := range ds.Engagement {
		row := rowFor(r.DateString, r.Date)
		row.GiftGivers = r.GiftGivers
		row.NewFollowers = r.NewFollowers
		row.Commenters = r.Commenters
		row.Likes = r.Likes
		row.Shares = r.Shares
	}
	for _, r := range ds.Revenue {
		rowFor(r.DateString, r.Date).Diamonds = r.Diamonds
	}
	for _, r := range ds.Activity {
		row := rowFor(r.DateString, r.Date)
		row.LiveTime = r.LiveTimeSeconds
		row.LiveCount = r.LiveCount
	}
	for _, r := range ds.Viewer {
		row := rowFor(r.DateString, r.Date)
		row.Views = r.ViewCount
		row.UniqueViewers = r.UniqueViewers
		row.AvgViewTime = r.AvgViewTimeSeconds
		row.MaxConcurrent = r.MaxConcurrent
		row.AvgConcurrent = r.AvgConcurrent
	}

	return rows
}

// Value returns the numeric value of a column. The date column has none.
func (r MergedRow) Value(column string) (float64, bool) {
	switch column {
	case ColGiftGivers:
		return r.GiftGivers, true
	case ColNewFollowers:
		return r.NewFollowers, true
	case ColCommenters:
		return r.Commenters, true
	case ColLikes:
		return r.Likes, true
	case ColShares:
		return r.Shares, true
	case ColLiveTime:
		return r.LiveTime, true
	case ColLiveCount:
		return r.LiveCount, true
	case ColViews:
		return r.Views, true
	case ColUniqueViewers:
		return r.UniqueViewers, true
	case ColAvgViewTime:
		return r.AvgViewTime, true
	case ColMaxConcurrent:
		return r.MaxConcurrent, true
	case ColAvgConcurrent:
		return r.AvgConcurrent, true
	case ColDiamonds:
		return r.Diamonds, true
	}
	return 0, false
}

// chronological returns the calendar value of the row's display date.
func (r MergedRow) chronological() time.Time {
	if t, err := time.Parse(DisplayLayout, r.Date); err == nil {
		return t
	}
	return r.Time
}

// SortRows orders rows in place by any column. The date column compares
// chronologically, every other column numerically. Ties keep their order.
func SortRows(rows []MergedRow, column string, desc bool) error {
	var less func(a, b MergedRow) bool
	if column == ColDate {
		less = func(a, b MergedRow) bool { return a.chronological().Before(b.chronological()) }
	} else {
		if _, ok := (MergedRow{}).Value(column); !ok {
			return fmt.Errorf("sort by %q: %w", column, ErrUnknownColumn)
		}
		less = func(a, b MergedRow) bool {
			av, _ := a.Value(column)
			bv, _ := b.Value(column)
			return av < bv
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return nil
}
