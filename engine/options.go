package engine

import "time"

// ============================================================================
// ENGINE OPTIONS — Functional options for Analyze()
// ============================================================================

// Option configures analysis via functional options pattern.
type Option func(*config)

type config struct {
	Periods    int        // windows for period comparison; 0 disables it
	SortColumn string     // merged-row sort column; empty keeps first-seen order
	SortDesc   bool       // descending sort
	Style      ChartStyle // chart colours and type
	Charts     bool       // build per-metric chart series
	Start, End time.Time  // optional date range
	Now        func() time.Time
}

// WithPeriods sets how many windows the period comparison uses.
func WithPeriods(n int) Option {
	return func(c *config) {
		c.Periods = n
	}
}

// WithSort orders the merged rows by column.
func WithSort(column string, desc bool) Option {
	return func(c *config) {
		c.SortColumn = column
		c.SortDesc = desc
	}
}

// WithChartStyle sets the chart palette and type and enables charts.
func WithChartStyle(style ChartStyle) Option {
	return func(c *config) {
		c.Style = style
		c.Charts = true
	}
}

// WithoutCharts skips chart series.
func WithoutCharts() Option {
	return func(c *config) {
		c.Charts = false
	}
}

// WithDateRange restricts analysis to records within [start, end].
func WithDateRange(start, end time.Time) Option {
	return func(c *config) {
		c.Start = start
		c.End = end
	}
}

// WithClock overrides the report timestamp source. nil keeps time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.Now = now
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Periods: 2,
		Style:   DefaultChartStyle(),
		Charts:  true,
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
