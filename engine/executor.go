package engine

// ============================================================================
// EXECUTOR — Runs every analysis over one Dataset
// ============================================================================
// Entry point: Analyze(ds, opts...)
//
// Pipeline:
//   1. Optional date-range filter
//   2. KPIs
//   3. Insights, trends, growth, score, detailed stats
//   4. Series statistics and correlations, period comparison
//   5. Merged rows (optionally sorted)
//   6. Chart series
//   7. Text summary
//
// Analyze is pure apart from the clock: identical input yields an identical
// report. The input Dataset is never modified.
// ============================================================================

// Analyze computes the full report for a dataset.
func Analyze(ds Dataset, opts ...Option) (*Report, error) {
	cfg := applyOptions(opts)

	ds = FilterRange(ds, cfg.Start, cfg.End)
	kpis := ComputeKPIs(ds)

	report := &Report{
		GeneratedAt: cfg.Now(),
		KPIs:        kpis,
		Insights:    GenerateInsights(ds, kpis),
		Trends:      Trends(ds),
		Growth:      AnalyzeGrowth(ds),
		Performance: ScorePerformance(ds, kpis),
		Detail:      ComputeDetailedStats(ds, kpis),
		Dataset:     ds,
	}

	if start, end, ok := DateRange(ds); ok {
		report.StartDate, report.EndDate = &start, &end
	}

	report.Stats = SeriesStats(ds)

	if cfg.Periods > 0 {
		report.Comparison = ComparePeriods(ds, cfg.Periods)
	}

	report.Rows = Merge(ds)
	report.Correlation = Correlations(report.Rows)
	if cfg.SortColumn != "" {
		if err := SortRows(report.Rows, cfg.SortColumn, cfg.SortDesc); err != nil {
			return nil, err
		}
	}

	if cfg.Charts {
		report.Charts = BuildCharts(ds, cfg.Style)
	}

	report.Summary = BuildSummaryText(report)
	return report, nil
}
