package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig per metric
// ============================================================================
// Colours come from an explicit ChartStyle passed by the caller; there is no
// package-level palette.
// ============================================================================

// ErrUnknownMetric is returned for a chart metric with no series.
var ErrUnknownMetric = errors.New("unknown metric")

// ChartStyle configures chart rendering.
type ChartStyle struct {
	ChartType string   `json:"chartType" mapstructure:"chart_type"`
	Palette   []string `json:"palette" mapstructure:"palette"`
	// Window adds a moving-average series of that many days when > 1.
	Window int `json:"window,omitempty" mapstructure:"window"`
}

// DefaultChartStyle returns the stock line chart style.
func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		ChartType: "line",
		Palette: []string{
			"#FF0050", "#00F2EA", "#FE2C55", "#25F4EE", "#FFB800",
			"#161823", "#8B5CF6", "#10B981", "#F97316", "#6366F1",
		},
	}
}

// Color returns the palette colour for series i, cycling when needed.
func (s ChartStyle) Color(i int) string {
	if len(s.Palette) == 0 {
		return ""
	}
	return s.Palette[i%len(s.Palette)]
}

// ChartMetrics lists the metrics BuildChart understands.
func ChartMetrics() []string {
	return []string{MetricDiamonds, MetricLikes, MetricFollowers, MetricViews, MetricLiveTime, MetricConcurrent}
}

// BuildChart produces the time series chart for one metric.
func BuildChart(ds Dataset, metric string, style ChartStyle) (*ChartConfig, error) {
	points, err := chartPoints(ds, metric)
	if err != nil {
		return nil, err
	}

	chartType := style.ChartType
	if chartType == "" {
		chartType = "line"
	}

	label := MetricLabel(metric)
	series := []ChartSeries{{Name: label, Data: points, Color: style.Color(0)}}
	if avg := movingAverageSeries(points, style.Window); avg != nil {
		avg.Color = style.Color(1)
		series = append(series, *avg)
	}

	return &ChartConfig{
		Metric:     metric,
		ChartType:  chartType,
		Title:      label + " by Day",
		XAxis:      "Date",
		YAxis:      label,
		Series:     series,
		Colors:     assignColors(style, len(series)),
		ShowLegend: len(series) > 1,
		ShowGrid:   true,
	}, nil
}

// BuildCharts produces a chart for every known metric.
func BuildCharts(ds Dataset, style ChartStyle) []*ChartConfig {
	metrics := ChartMetrics()
	charts := make([]*ChartConfig, 0, len(metrics))
	for _, m := range metrics {
		c, err := BuildChart(ds, m, style)
		if err != nil {
			continue
		}
		charts = append(charts, c)
	}
	return charts
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

// chartUnit scales a raw metric value for display and describes a point.
type chartUnit struct {
	scale float64
	note  func(v float64) string
}

var chartUnits = map[string]chartUnit{
	MetricDiamonds:   {1, func(v float64) string { return FormatInt(int64(v)) + " diamonds" }},
	MetricLikes:      {1, func(v float64) string { return FormatInt(int64(v)) + " likes" }},
	MetricFollowers:  {1, func(v float64) string { return FormatInt(int64(v)) + " new followers" }},
	MetricViews:      {1, func(v float64) string { return FormatInt(int64(v)) + " views" }},
	MetricLiveTime:   {1.0 / 3600, func(v float64) string { return fmt.Sprintf("%.1f hours", v) }},
	MetricConcurrent: {1, func(v float64) string { return fmt.Sprintf("peak %s concurrent", FormatInt(int64(v))) }},
}

func chartPoints(ds Dataset, metric string) ([]ChartPoint, error) {
	unit, ok := chartUnits[metric]
	if !ok {
		return nil, fmt.Errorf("chart %q: %w", metric, ErrUnknownMetric)
	}
	view, err := MetricView(ds, metric)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}

	points := make([]ChartPoint, view.Len())
	for i := range points {
		v := view.Value(i) * unit.scale
		points[i] = ChartPoint{Label: view.Label(i), Value: RoundTo2(v), Note: unit.note(v)}
	}
	return points, nil
}

// movingAverageSeries smooths points over window days. Each average is
// labelled with the last date of its window. Nil when there is nothing to add.
func movingAverageSeries(points []ChartPoint, window int) *ChartSeries {
	if window <= 1 || len(points) < window {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	avg := MovingAverage(values, window)
	data := make([]ChartPoint, len(avg))
	for i, v := range avg {
		data[i] = ChartPoint{Label: points[i+window-1].Label, Value: RoundTo2(v)}
	}
	return &ChartSeries{Name: fmt.Sprintf("%d-day average", window), Data: data}
}

func assignColors(style ChartStyle, count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = style.Color(i)
	}
	return colors
}
