package schema

import "strings"

// ============================================================================
// DETECTION — Keyword heuristic over the header row
// ============================================================================
// The header row is folded, joined with commas and tested against marker
// groups per kind. Kinds are checked in a fixed order and the first match
// wins, so a header satisfying two kinds takes the earlier one.
// ============================================================================

// markerRule describes one kind: every group must match, any token in a
// group may match. maxHeaders > 0 caps the header count.
type markerRule struct {
	kind       RecordKind
	groups     [][]string
	maxHeaders int
}

var detectionRules = []markerRule{
	{
		kind: KindEngagement,
		groups: [][]string{
			{"gift", "ギフト"},
			{"follower", "フォロワー"},
			{"like", "いいね"},
		},
	},
	{
		kind:       KindRevenue,
		groups:     [][]string{{"diamond", "ダイヤモンド"}},
		maxHeaders: 3,
	},
	{
		kind:   KindActivity,
		groups: [][]string{{"live time", "livetime", "live_time", "broadcast time", "live時間", "配信時間"}},
	},
	{
		kind: KindViewer,
		groups: [][]string{
			{"view count", "viewcount", "view_count", "視聴数"},
			{"unique", "ユニーク"},
		},
	},
}

// DetectKind classifies a CSV file from its header row.
// Headers matching no rule yield KindUnknown.
func DetectKind(headers []string) RecordKind {
	joined := FoldHeader(strings.Join(headers, ","))
	for _, rule := range detectionRules {
		if rule.maxHeaders > 0 && len(headers) > rule.maxHeaders {
			continue
		}
		if matchesAll(joined, rule.groups) {
			return rule.kind
		}
	}
	return KindUnknown
}

func matchesAll(joined string, groups [][]string) bool {
	for _, group := range groups {
		if !matchesAny(joined, group) {
			return false
		}
	}
	return true
}

func matchesAny(joined string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(joined, tok) {
			return true
		}
	}
	return false
}
