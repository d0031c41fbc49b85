package engine

import (
	"fmt"
	"time"
)

// ============================================================================
// PERIOD COMPARISON — KPIs per equal-length window
// ============================================================================
// The span from the earliest to the latest record date is cut into n windows
// of floor(days/n) days each. The last window runs to the latest date so no
// trailing day is dropped.
// ============================================================================

// ComparePeriods splits the dataset into n consecutive windows and computes
// KPIs for each. An empty dataset or n < 1 yields nil.
func ComparePeriods(ds Dataset, n int) []ComparisonPeriod {
	start, end, ok := DateRange(ds)
	if !ok || n < 1 {
		return nil
	}

	start = truncateDay(start)
	end = truncateDay(end)
	totalDays := int(end.Sub(start).Hours()/24) + 1
	if n > totalDays {
		n = totalDays
	}
	periodDays := totalDays / n

	periods := make([]ComparisonPeriod, 0, n)
	for i := 0; i < n; i++ {
		pStart := start.AddDate(0, 0, i*periodDays)
		pEnd := start.AddDate(0, 0, (i+1)*periodDays).Add(-time.Nanosecond)
		if i == n-1 {
			pEnd = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}

		p := ComparisonPeriod{
			Label:     fmt.Sprintf("Period %d (%s - %s)", i+1, pStart.Format("01/02"), pEnd.Format("01/02")),
			StartDate: pStart,
			EndDate:   pEnd,
			KPIs:      ComputeKPIs(FilterRange(ds, pStart, pEnd)),
		}
		if i > 0 {
			p.Growth = periodGrowth(periods[i-1].KPIs, p.KPIs)
		}
		periods = append(periods, p)
	}
	return periods
}

func periodGrowth(prev, cur KPIMetrics) map[string]float64 {
	return map[string]float64{
		MetricDiamonds:  GrowthRate(prev.TotalDiamonds, cur.TotalDiamonds),
		MetricLikes:     GrowthRate(prev.TotalLikes, cur.TotalLikes),
		MetricFollowers: GrowthRate(prev.TotalFollowers, cur.TotalFollowers),
		MetricViews:     GrowthRate(prev.TotalViews, cur.TotalViews),
		MetricLiveTime:  GrowthRate(prev.TotalLiveTime, cur.TotalLiveTime),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
