package engine

// ============================================================================
// KPI AGGREGATOR — Fixed scalar summary of a Dataset
// ============================================================================
// Every KPI is a pure function of the Dataset. Each division returns 0 when
// its denominator is 0, so no KPI is ever NaN or Inf.
// ============================================================================

// ComputeKPIs reduces a Dataset to its KPIMetrics.
func ComputeKPIs(ds Dataset) KPIMetrics {
	var k KPIMetrics

	for _, r := range ds.Revenue {
		k.TotalDiamonds += r.Diamonds
	}

	var totalEngagements float64
	for _, r := range ds.Engagement {
		k.TotalLikes += r.Likes
		k.TotalFollowers += r.NewFollowers
		k.TotalGiftGivers += r.GiftGivers
		k.TotalCommenters += r.Commenters
		k.TotalShares += r.Shares
		totalEngagements += r.Likes + r.Commenters + r.GiftGivers + r.Shares
	}

	var viewTimeSum, concurrentSum float64
	for _, r := range ds.Viewer {
		k.TotalViews += r.ViewCount
		k.TotalUniqueViewers += r.UniqueViewers
		viewTimeSum += r.AvgViewTimeSeconds
		concurrentSum += r.AvgConcurrent
		if r.MaxConcurrent > k.PeakConcurrentViewers {
			k.PeakConcurrentViewers = r.MaxConcurrent
		}
	}

	for _, r := range ds.Activity {
		if r.LiveCount > 0 {
			k.ActiveDays++
		}
		k.TotalLiveTime += r.LiveTimeSeconds
		k.TotalLiveCount += r.LiveCount
	}

	// Unweighted mean of per-day averages.
	k.AvgViewTime = safeDiv(viewTimeSum, float64(len(ds.Viewer)))
	k.AvgConcurrentViewers = safeDiv(concurrentSum, float64(len(ds.Viewer)))

	k.AvgLiveTimePerStream = safeDiv(k.TotalLiveTime, k.TotalLiveCount)
	// Actions are not deduplicated per viewer.
	k.AvgEngagementRate = safeDiv(totalEngagements, k.TotalViews) * 100
	k.AvgRevenuePerStream = safeDiv(k.TotalDiamonds, float64(k.ActiveDays))
	k.AvgViewersPerStream = safeDiv(k.TotalViews, float64(k.ActiveDays))

	return k
}

// safeDiv divides, returning 0 for a zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
