package engine

import "fmt"

// ============================================================================
// SERIES VIEW — Zero-copy access to one metric of one record sequence
// ============================================================================
// Each metric lives in exactly one record kind. Accessors are registered
// once per kind; binding a metric to a Dataset holds a reference to the
// record slice and reads through the accessor on every call.
//
// Charts, trends and statistics all resolve metrics through MetricView.
// ============================================================================

// SeriesView provides indexed access to one metric over dated records.
type SeriesView interface {
	Len() int
	Label(i int) string // display date of record i
	Value(i int) float64
}

// RecordAdapter builds SeriesViews over typed records.
// Declare once, bind many times.
type RecordAdapter[T any] struct {
	label    func(T) string
	order    []string
	measures map[string]func(T) float64
}

// NewRecordAdapter creates an adapter whose views label points with label.
func NewRecordAdapter[T any](label func(T) string) *RecordAdapter[T] {
	return &RecordAdapter[T]{label: label, measures: make(map[string]func(T) float64)}
}

// Measure registers a metric accessor.
func (a *RecordAdapter[T]) Measure(key string, fn func(T) float64) *RecordAdapter[T] {
	if _, exists := a.measures[key]; !exists {
		a.order = append(a.order, key)
	}
	a.measures[key] = fn
	return a
}

// Keys lists registered metrics in registration order.
func (a *RecordAdapter[T]) Keys() []string {
	return append([]string(nil), a.order...)
}

// Bind returns a view of one metric over data. ok is false when the
// metric is not registered.
func (a *RecordAdapter[T]) Bind(data []T, key string) (SeriesView, bool) {
	fn, ok := a.measures[key]
	if !ok {
		return nil, false
	}
	return &recordView[T]{data: data, label: a.label, value: fn}, true
}

type recordView[T any] struct {
	data  []T
	label func(T) string
	value func(T) float64
}

func (v *recordView[T]) Len() int { return len(v.data) }

func (v *recordView[T]) Label(i int) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	return v.label(v.data[i])
}

func (v *recordView[T]) Value(i int) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	return v.value(v.data[i])
}

// ============================================================================
// METRIC REGISTRY
// ============================================================================

var (
	engagementMetrics = NewRecordAdapter(func(r EngagementRecord) string { return r.DateString }).
		Measure(MetricLikes, func(r EngagementRecord) float64 { return r.Likes }).
		Measure(MetricFollowers, func(r EngagementRecord) float64 { return r.NewFollowers })

	revenueMetrics = NewRecordAdapter(func(r RevenueRecord) string { return r.DateString }).
		Measure(MetricDiamonds, func(r RevenueRecord) float64 { return r.Diamonds })

	activityMetrics = NewRecordAdapter(func(r ActivityRecord) string { return r.DateString }).
		Measure(MetricLiveTime, func(r ActivityRecord) float64 { return r.LiveTimeSeconds })

	viewerMetrics = NewRecordAdapter(func(r ViewerRecord) string { return r.DateString }).
		Measure(MetricViews, func(r ViewerRecord) float64 { return r.ViewCount }).
		Measure(MetricConcurrent, func(r ViewerRecord) float64 { return r.MaxConcurrent })
)

// MetricView binds a metric to its record sequence in ds, in record order.
// Live time is in seconds.
func MetricView(ds Dataset, metric string) (SeriesView, error) {
	if v, ok := revenueMetrics.Bind(ds.Revenue, metric); ok {
		return v, nil
	}
	if v, ok := engagementMetrics.Bind(ds.Engagement, metric); ok {
		return v, nil
	}
	if v, ok := activityMetrics.Bind(ds.Activity, metric); ok {
		return v, nil
	}
	if v, ok := viewerMetrics.Bind(ds.Viewer, metric); ok {
		return v, nil
	}
	return nil, fmt.Errorf("metric %q: %w", metric, ErrUnknownMetric)
}

// Values copies every value of a view.
func Values(v SeriesView) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.Value(i)
	}
	return out
}
