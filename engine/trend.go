package engine

// ============================================================================
// TREND — Half-over-half mean comparison
// ============================================================================
// CalculateTrend is the single routine behind every growth figure: trend
// lists, likes/diamonds/views growth and the overall growth analysis.
// ============================================================================

// TrendThreshold is the percentage beyond which a change counts as movement.
const TrendThreshold = 5.0

// CalculateTrend splits a chronological series at floor(n/2) and compares
// the mean of the second half with the mean of the first.
// Series shorter than two points, or with a zero first-half mean, are stable at 0%.
func CalculateTrend(values []float64) Trend {
	stable := Trend{Direction: DirectionStable}
	if len(values) < 2 {
		return stable
	}

	mid := len(values) / 2
	firstMean := Mean(values[:mid])
	secondMean := Mean(values[mid:])
	if firstMean == 0 {
		return stable
	}

	change := (secondMean - firstMean) / firstMean * 100
	t := Trend{Direction: DirectionStable, PercentageChange: change}
	switch {
	case change > TrendThreshold:
		t.Direction = DirectionUp
	case change < -TrendThreshold:
		t.Direction = DirectionDown
	}
	return t
}

// Metric keys shared by trends, charts and growth analysis.
const (
	MetricDiamonds   = "diamonds"
	MetricLikes      = "likes"
	MetricFollowers  = "followers"
	MetricViews      = "views"
	MetricLiveTime   = "liveTime"
	MetricConcurrent = "concurrent"
)

var metricLabels = map[string]string{
	MetricDiamonds:   "Diamonds",
	MetricLikes:      "Likes",
	MetricFollowers:  "New Followers",
	MetricViews:      "Views",
	MetricLiveTime:   "Live Hours",
	MetricConcurrent: "Peak Concurrent Viewers",
}

// MetricLabel returns the display label for a metric key.
func MetricLabel(metric string) string {
	if l, ok := metricLabels[metric]; ok {
		return l
	}
	return LabelFor(metric)
}

// MetricSeries extracts a metric's values from its source sequence in
// record order. Unknown metrics yield nil.
func MetricSeries(ds Dataset, metric string) []float64 {
	view, err := MetricView(ds, metric)
	if err != nil {
		return nil
	}
	return Values(view)
}

// Trends computes the trend of each headline metric over the whole period.
func Trends(ds Dataset) []MetricTrend {
	metrics := []string{MetricDiamonds, MetricLikes, MetricFollowers, MetricViews}
	out := make([]MetricTrend, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, MetricTrend{
			Metric: m,
			Label:  MetricLabel(m),
			Period: "Entire period",
			Trend:  CalculateTrend(MetricSeries(ds, m)),
		})
	}
	return out
}
