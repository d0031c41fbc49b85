package engine

// ComputeDetailedStats derives per-day, per-hour and frequency figures.
// Day-based averages divide by active days; viewer averages divide by the
// number of viewer records. Every ratio is 0 when its base is 0.
func ComputeDetailedStats(ds Dataset, kpis KPIMetrics) DetailedStats {
	totalDays := len(ds.Engagement)
	active := float64(kpis.ActiveDays)
	liveHours := kpis.TotalLiveTime / 3600

	var longest float64
	for _, r := range ds.Activity {
		if r.LiveTimeSeconds > longest {
			longest = r.LiveTimeSeconds
		}
	}

	inactive := totalDays - kpis.ActiveDays
	if inactive < 0 {
		inactive = 0
	}

	return DetailedStats{
		TotalDays:              totalDays,
		InactiveDays:           inactive,
		OperatingRatio:         safeDiv(active, float64(totalDays)) * 100,
		TotalLiveHours:         liveHours,
		AvgDiamondsPerDay:      safeDiv(kpis.TotalDiamonds, active),
		AvgLikesPerDay:         safeDiv(kpis.TotalLikes, active),
		AvgViewsPerDay:         safeDiv(kpis.TotalViews, active),
		AvgFollowersPerDay:     safeDiv(kpis.TotalFollowers, active),
		AvgGiftGiversPerDay:    safeDiv(kpis.TotalGiftGivers, active),
		AvgCommentersPerDay:    safeDiv(kpis.TotalCommenters, active),
		AvgSharesPerDay:        safeDiv(kpis.TotalShares, active),
		AvgLiveHoursPerDay:     safeDiv(liveHours, active),
		AvgUniqueViewersPerDay: safeDiv(kpis.TotalUniqueViewers, float64(len(ds.Viewer))),
		RevenuePerHour:         RevenuePerHour(kpis),
		LikesPerHour:           safeDiv(kpis.TotalLikes, liveHours),
		WeeklyFrequency:        safeDiv(active, float64(totalDays)/7),
		MonthlyFrequency:       safeDiv(active, float64(totalDays)/30),
		LongestStreamHours:     longest / 3600,
		LikesGrowth:            CalculateTrend(MetricSeries(ds, MetricLikes)).PercentageChange,
		DiamondsGrowth:         CalculateTrend(MetricSeries(ds, MetricDiamonds)).PercentageChange,
		ViewsGrowth:            CalculateTrend(MetricSeries(ds, MetricViews)).PercentageChange,
	}
}
