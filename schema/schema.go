package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// ============================================================================
// SCHEMA — Record kinds and per-kind field mapping tables
// ============================================================================
// Each export flavour is described by an ordered table of fields. A field
// names the record attribute it fills, the header labels it may appear under,
// and the column it occupies when no label matches.
// ============================================================================

// RecordKind identifies which export a CSV file came from.
type RecordKind string

const (
	KindEngagement RecordKind = "engagement"
	KindRevenue    RecordKind = "revenue"
	KindActivity   RecordKind = "activity"
	KindViewer     RecordKind = "viewer"
	KindUnknown    RecordKind = "unknown"
)

// Kinds returns the known kinds in detection order.
func Kinds() []RecordKind {
	return []RecordKind{KindEngagement, KindRevenue, KindActivity, KindViewer}
}

// Known reports whether k is one of the four recognised export kinds.
func (k RecordKind) Known() bool {
	switch k {
	case KindEngagement, KindRevenue, KindActivity, KindViewer:
		return true
	}
	return false
}

// Field names shared by the mapping tables and the record parsers.
const (
	FieldDate          = "date"
	FieldGiftGivers    = "giftGivers"
	FieldNewFollowers  = "newFollowers"
	FieldCommenters    = "commenters"
	FieldLikes         = "likes"
	FieldShares        = "shares"
	FieldDiamonds      = "diamonds"
	FieldLiveTime      = "liveTime"
	FieldLiveCount     = "liveCount"
	FieldViewCount     = "viewCount"
	FieldUniqueViewers = "uniqueViewers"
	FieldAvgViewTime   = "avgViewTime"
	FieldMaxConcurrent = "maxConcurrent"
	FieldAvgConcurrent = "avgConcurrent"
)

// FieldSpec maps one record attribute to its accepted header labels and
// its positional fallback column.
type FieldSpec struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Index   int      `json:"index"`
}

var dateField = FieldSpec{Name: FieldDate, Aliases: []string{"date", "日付", "day"}, Index: 0}

var fieldTables = map[RecordKind][]FieldSpec{
	KindEngagement: {
		dateField,
		{Name: FieldGiftGivers, Aliases: []string{"giftGivers", "gift givers", "gift giver count", "ギフト贈呈者"}, Index: 1},
		{Name: FieldNewFollowers, Aliases: []string{"newFollowers", "new followers", "followers", "新規フォロワー"}, Index: 2},
		{Name: FieldCommenters, Aliases: []string{"commenters", "viewers who commented", "コメントした視聴者"}, Index: 3},
		{Name: FieldLikes, Aliases: []string{"likes", "いいね"}, Index: 4},
		{Name: FieldShares, Aliases: []string{"shares", "シェア"}, Index: 5},
	},
	KindRevenue: {
		dateField,
		{Name: FieldDiamonds, Aliases: []string{"diamonds", "diamond", "ダイヤモンド"}, Index: 1},
	},
	KindActivity: {
		dateField,
		{Name: FieldLiveTime, Aliases: []string{"liveTime", "live time", "broadcast time", "LIVE時間", "配信時間"}, Index: 1},
		{Name: FieldLiveCount, Aliases: []string{"liveCount", "live count", "total lives", "LIVEの合計数"}, Index: 2},
	},
	KindViewer: {
		dateField,
		{Name: FieldViewCount, Aliases: []string{"viewCount", "view count", "views", "視聴数"}, Index: 1},
		{Name: FieldUniqueViewers, Aliases: []string{"uniqueViewers", "unique viewers", "ユニーク視聴者数"}, Index: 2},
		{Name: FieldAvgViewTime, Aliases: []string{"avgViewTime", "average view time", "avg view time", "平均視聴時間"}, Index: 3},
		{Name: FieldMaxConcurrent, Aliases: []string{"maxConcurrent", "peak concurrent viewers", "max concurrent", "最高同時視聴者数"}, Index: 4},
		{Name: FieldAvgConcurrent, Aliases: []string{"avgConcurrent", "average concurrent viewers", "avg concurrent", "平均同時視聴者数"}, Index: 5},
	},
}

// Fields returns the mapping table for a kind. Unknown kinds have none.
func Fields(kind RecordKind) []FieldSpec {
	table := fieldTables[kind]
	out := make([]FieldSpec, len(table))
	copy(out, table)
	return out
}

// Mapping resolves field names to column indexes for one header row.
// An index of -1 means the field is absent and reads as zero.
type Mapping map[string]int

// Column returns the column index for a field, or -1.
func (m Mapping) Column(field string) int {
	if i, ok := m[field]; ok {
		return i
	}
	return -1
}

// Resolve builds the column mapping for headers under the given kind.
// Named lookup is tried first; when no alias matches, the field falls back
// to its positional index if the header row is wide enough.
func Resolve(headers []string, kind RecordKind) Mapping {
	byLabel := make(map[string]int, len(headers))
	for i, h := range headers {
		key := HeaderKey(h)
		if _, seen := byLabel[key]; !seen {
			byLabel[key] = i
		}
	}

	m := make(Mapping)
	for _, f := range fieldTables[kind] {
		idx := -1
		for _, alias := range f.Aliases {
			if i, ok := byLabel[HeaderKey(alias)]; ok {
				idx = i
				break
			}
		}
		if idx < 0 && f.Index < len(headers) {
			idx = f.Index
		}
		m[f.Name] = idx
	}
	return m
}

// FoldHeader normalises a header for marker matching: full-width characters
// become half-width and letters are case-folded.
func FoldHeader(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(width.Fold.String(s))
}

// HeaderKey reduces a header label to a comparison key.
// "Gift Givers", "gift_givers" and "giftGivers" all map to "giftgivers".
func HeaderKey(s string) string {
	s = FoldHeader(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "\ufeff")
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '_', '-', '\t', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
