package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Plain-text summary of a Report
// ============================================================================

// BuildSummaryText renders the headline figures, score, trends and insights
// of a report as human-readable lines.
func BuildSummaryText(r *Report) string {
	if r == nil {
		return "No data available to analyze."
	}

	var b strings.Builder
	k := r.KPIs

	if r.StartDate != nil && r.EndDate != nil {
		fmt.Fprintf(&b, "Period: %s - %s\n", r.StartDate.Format(DisplayLayout), r.EndDate.Format(DisplayLayout))
	}
	fmt.Fprintf(&b, "Diamonds: %s (%s per stream)\n", FormatInt(int64(k.TotalDiamonds)), FormatNumber(k.AvgRevenuePerStream, 0))
	fmt.Fprintf(&b, "Views: %s, unique viewers: %s, peak concurrent: %s\n",
		FormatInt(int64(k.TotalViews)), FormatInt(int64(k.TotalUniqueViewers)), FormatInt(int64(k.PeakConcurrentViewers)))
	fmt.Fprintf(&b, "Likes: %s, new followers: %s, engagement rate: %.1f%%\n",
		FormatInt(int64(k.TotalLikes)), FormatInt(int64(k.TotalFollowers)), k.AvgEngagementRate)
	fmt.Fprintf(&b, "Active days: %d, streams: %s, live time: %s\n",
		k.ActiveDays, FormatInt(int64(k.TotalLiveCount)), FormatDuration(k.TotalLiveTime))
	fmt.Fprintf(&b, "Score: %d/100 (grade %s), growth: %s (%+.1f%%)\n",
		r.Performance.Score, r.Performance.Grade, r.Growth.Trend, r.Growth.GrowthRate)

	for _, t := range r.Trends {
		fmt.Fprintf(&b, "  %-14s %-6s %+.1f%%\n", t.Label, t.Direction, t.PercentageChange)
	}
	for _, in := range r.Insights {
		fmt.Fprintf(&b, "[%s] %s: %s\n", in.Severity, in.Title, in.Description)
	}

	return strings.TrimRight(b.String(), "\n")
}
