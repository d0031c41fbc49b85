package engine

import "time"

// --- Test Fixtures ---

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func key(d int) string {
	return day(d).Format(DisplayLayout)
}

// weekDataset covers 2024/01/01 - 2024/01/04 with every kind present.
// Revenue skips day 2 and viewer adds day 5.
func weekDataset() Dataset {
	return Dataset{
		Engagement: []EngagementRecord{
			{Date: day(1), DateString: key(1), GiftGivers: 2, NewFollowers: 3, Commenters: 4, Likes: 100, Shares: 5},
			{Date: day(2), DateString: key(2), GiftGivers: 1, NewFollowers: 1, Commenters: 2, Likes: 50, Shares: 1},
			{Date: day(3), DateString: key(3), GiftGivers: 3, NewFollowers: 6, Commenters: 8, Likes: 200, Shares: 4},
			{Date: day(4), DateString: key(4), GiftGivers: 4, NewFollowers: 5, Commenters: 6, Likes: 250, Shares: 2},
		},
		Revenue: []RevenueRecord{
			{Date: day(1), DateString: key(1), Diamonds: 1000},
			{Date: day(3), DateString: key(3), Diamonds: 3000},
			{Date: day(4), DateString: key(4), Diamonds: 4000},
		},
		Activity: []ActivityRecord{
			{Date: day(1), DateString: key(1), LiveTimeSeconds: 3600, LiveCount: 1},
			{Date: day(2), DateString: key(2), LiveTimeSeconds: 0, LiveCount: 0},
			{Date: day(3), DateString: key(3), LiveTimeSeconds: 7200, LiveCount: 2},
			{Date: day(4), DateString: key(4), LiveTimeSeconds: 5400, LiveCount: 1},
		},
		Viewer: []ViewerRecord{
			{Date: day(1), DateString: key(1), ViewCount: 1000, UniqueViewers: 600, AvgViewTimeSeconds: 40, MaxConcurrent: 50, AvgConcurrent: 20},
			{Date: day(3), DateString: key(3), ViewCount: 3000, UniqueViewers: 1500, AvgViewTimeSeconds: 80, MaxConcurrent: 150, AvgConcurrent: 60},
			{Date: day(5), DateString: key(5), ViewCount: 2000, UniqueViewers: 900, AvgViewTimeSeconds: 60, MaxConcurrent: 100, AvgConcurrent: 40},
		},
	}
}
