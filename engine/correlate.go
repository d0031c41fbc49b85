package engine

// correlatedPairs are the merged-row column pairs reported by Correlations.
var correlatedPairs = [][2]string{
	{ColLiveTime, ColDiamonds},
	{ColViews, ColDiamonds},
	{ColLikes, ColDiamonds},
	{ColLiveTime, ColViews},
	{ColMaxConcurrent, ColLikes},
}

// SeriesStats summarises every chart metric's daily series.
func SeriesStats(ds Dataset) map[string]Statistics {
	out := make(map[string]Statistics, len(ChartMetrics()))
	for _, m := range ChartMetrics() {
		out[m] = Stats(MetricSeries(ds, m))
	}
	return out
}

// Correlations measures how strongly column pairs move together across
// merged rows. Days missing a kind count as zeros for it.
func Correlations(rows []MergedRow) []MetricCorrelation {
	out := make([]MetricCorrelation, 0, len(correlatedPairs))
	for _, p := range correlatedPairs {
		x := make([]float64, len(rows))
		y := make([]float64, len(rows))
		for i, r := range rows {
			x[i], _ = r.Value(p[0])
			y[i], _ = r.Value(p[1])
		}
		out = append(out, MetricCorrelation{X: p[0], Y: p[1], Coefficient: RoundTo(Correlation(x, y), 4)})
	}
	return out
}
