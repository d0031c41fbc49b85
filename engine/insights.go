package engine

import "fmt"

// ============================================================================
// INSIGHTS — Threshold rules over the KPIs
// ============================================================================
// Rules are evaluated independently in a fixed order; any number may fire.
// ============================================================================

// Insight thresholds.
const (
	HighEngagementRate   = 10.0
	LowEngagementRate    = 3.0
	MinActiveDays        = 10
	HighRevenuePerStream = 10000.0
)

// GenerateInsights applies the threshold rules to kpis. The dataset is
// accepted for future rules and is not inspected.
func GenerateInsights(_ Dataset, kpis KPIMetrics) []Insight {
	insights := []Insight{}

	switch {
	case kpis.AvgEngagementRate > HighEngagementRate:
		insights = append(insights, Insight{
			Severity:       SeveritySuccess,
			Title:          "High engagement rate",
			Description:    fmt.Sprintf("Average engagement rate is %.1f%%, which is excellent.", kpis.AvgEngagementRate),
			Metric:         "engagement",
			Value:          kpis.AvgEngagementRate,
			Recommendation: "Keep the current streaming style and aim to push it further.",
		})
	case kpis.AvgEngagementRate < LowEngagementRate:
		insights = append(insights, Insight{
			Severity:       SeverityWarning,
			Title:          "Engagement rate needs improvement",
			Description:    fmt.Sprintf("Engagement rate is low at %.1f%%.", kpis.AvgEngagementRate),
			Metric:         "engagement",
			Value:          kpis.AvgEngagementRate,
			Recommendation: "Reply to comments more actively and interact with viewers more often.",
		})
	}

	if kpis.ActiveDays < MinActiveDays {
		insights = append(insights, Insight{
			Severity:       SeverityInfo,
			Title:          "Room to stream more often",
			Description:    fmt.Sprintf("You streamed on %d days in this period.", kpis.ActiveDays),
			Metric:         "frequency",
			Value:          float64(kpis.ActiveDays),
			Recommendation: "A regular streaming schedule helps viewers come back.",
		})
	}

	if kpis.AvgRevenuePerStream > HighRevenuePerStream {
		insights = append(insights, Insight{
			Severity:       SeveritySuccess,
			Title:          "High revenue efficiency",
			Description:    fmt.Sprintf("Streams earn %s diamonds on average.", FormatInt(int64(RoundTo(kpis.AvgRevenuePerStream, 0)))),
			Metric:         "revenue",
			Value:          kpis.AvgRevenuePerStream,
			Recommendation: "Keep producing content at this quality.",
		})
	}

	return insights
}
