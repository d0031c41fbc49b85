package engine

// ============================================================================
// PERFORMANCE SCORE — Weighted 0-100 evaluation with a letter grade
// ============================================================================
// Four dimensions, each scored on a tiered scale:
//   engagement rate     30 pts   (>20 / >10 / >5 %)
//   streaming frequency 25 pts   (>80 / >50 / >30 % of engagement days)
//   revenue per hour    25 pts   (>2000 / >1000 / >500 diamonds)
//   viewer retention    20 pts   (>70 / >50 / >30 % avg-to-peak concurrency)
// ============================================================================

type scoreTier struct {
	above  float64
	points int
	sev    Severity
	msg    string
}

type scoreDimension struct {
	name      string
	maxPoints int
	tiers     []scoreTier
	floorMsg  string
}

var scoreDimensions = []scoreDimension{
	{
		name: "engagement", maxPoints: 30,
		tiers: []scoreTier{
			{20, 30, SeveritySuccess, "Engagement rate is exceptionally high"},
			{10, 20, SeveritySuccess, "Engagement rate is healthy"},
			{5, 10, SeverityWarning, "Engagement rate needs improvement"},
		},
		floorMsg: "Engagement rate is too low",
	},
	{
		name: "frequency", maxPoints: 25,
		tiers: []scoreTier{
			{0.8, 25, SeveritySuccess, "Streaming frequency is high"},
			{0.5, 15, SeveritySuccess, "Streaming frequency is moderate"},
			{0.3, 10, SeverityWarning, "Consider streaming more often"},
		},
		floorMsg: "Streaming frequency is insufficient",
	},
	{
		name: "revenue", maxPoints: 25,
		tiers: []scoreTier{
			{2000, 25, SeveritySuccess, "Revenue per hour is exceptionally high"},
			{1000, 15, SeveritySuccess, "Revenue per hour is healthy"},
			{500, 10, SeverityWarning, "Revenue per hour has room to grow"},
		},
		floorMsg: "Revenue per hour is too low",
	},
	{
		name: "retention", maxPoints: 20,
		tiers: []scoreTier{
			{70, 20, SeveritySuccess, "Viewer retention is excellent"},
			{50, 15, SeveritySuccess, "Viewer retention is healthy"},
			{30, 10, SeverityWarning, "Viewer retention needs improvement"},
		},
		floorMsg: "Viewer retention is too low",
	},
}

// ScorePerformance evaluates a dataset on four weighted dimensions.
func ScorePerformance(ds Dataset, kpis KPIMetrics) PerformanceReport {
	values := map[string]float64{
		"engagement": kpis.AvgEngagementRate,
		"frequency":  safeDiv(float64(kpis.ActiveDays), float64(len(ds.Engagement))),
		"revenue":    RevenuePerHour(kpis),
		"retention":  safeDiv(kpis.AvgConcurrentViewers, kpis.PeakConcurrentViewers) * 100,
	}

	report := PerformanceReport{Feedback: make([]ScoreComponent, 0, len(scoreDimensions))}
	for _, d := range scoreDimensions {
		v := values[d.name]
		c := ScoreComponent{
			Dimension: d.name,
			MaxPoints: d.maxPoints,
			Value:     v,
			Severity:  SeverityError,
			Message:   d.floorMsg,
		}
		for _, t := range d.tiers {
			if v > t.above {
				c.Points, c.Severity, c.Message = t.points, t.sev, t.msg
				break
			}
		}
		report.Score += c.Points
		report.Feedback = append(report.Feedback, c)
	}
	report.Grade = Grade(report.Score)
	return report
}

// Grade maps a 0-100 score to S, A, B, C, D or F.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "S"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	}
	return "F"
}

// RevenuePerHour is diamonds earned per hour live, 0 without live time.
func RevenuePerHour(kpis KPIMetrics) float64 {
	return safeDiv(kpis.TotalDiamonds, kpis.TotalLiveTime/3600)
}

// ============================================================================
// GROWTH ANALYSIS
// ============================================================================

// Growth classification thresholds, in percent.
const (
	GrowingThreshold   = 10.0
	DecliningThreshold = -10.0
)

// AnalyzeGrowth averages the half-over-half change of likes, diamonds and
// views and names the best and worst of them.
func AnalyzeGrowth(ds Dataset) GrowthTrend {
	metrics := []string{MetricLikes, MetricDiamonds, MetricViews}
	g := GrowthTrend{Metrics: make([]MetricTrend, 0, len(metrics))}

	var best, worst MetricTrend
	for i, m := range metrics {
		mt := MetricTrend{
			Metric: m,
			Label:  MetricLabel(m),
			Period: "First half vs second half",
			Trend:  CalculateTrend(MetricSeries(ds, m)),
		}
		g.Metrics = append(g.Metrics, mt)
		g.GrowthRate += mt.PercentageChange

		if i == 0 || mt.PercentageChange > best.PercentageChange {
			best = mt
		}
		if i == 0 || mt.PercentageChange < worst.PercentageChange {
			worst = mt
		}
	}
	g.GrowthRate /= float64(len(metrics))
	g.BestMetric = best.Label
	g.WorstMetric = worst.Label

	switch {
	case g.GrowthRate > GrowingThreshold:
		g.Trend = Growing
	case g.GrowthRate > DecliningThreshold:
		g.Trend = Steady
	default:
		g.Trend = Declining
	}
	return g
}
