package engine

import "time"

// ============================================================================
// LIVEPULSE ENGINE TYPES — Daily live-stream records and derived results
// ============================================================================
// Every record carries the parsed calendar date and its display key
// ("2006/01/02"). Merging joins on the display key; ranges and comparisons
// use the parsed date.
//
// Dependency: engine has no knowledge of CSV or file handling.
// ============================================================================

// DisplayLayout is the canonical display format for record dates.
const DisplayLayout = "2006/01/02"

// ============================================================================
// RECORDS
// ============================================================================

// EngagementRecord holds one day of audience interaction counts.
type EngagementRecord struct {
	Date         time.Time `json:"date"`
	DateString   string    `json:"dateString"`
	GiftGivers   float64   `json:"giftGivers"`
	NewFollowers float64   `json:"newFollowers"`
	Commenters   float64   `json:"commenters"`
	Likes        float64   `json:"likes"`
	Shares       float64   `json:"shares"`
}

// RevenueRecord holds one day of diamond income.
type RevenueRecord struct {
	Date       time.Time `json:"date"`
	DateString string    `json:"dateString"`
	Diamonds   float64   `json:"diamonds"`
}

// ActivityRecord holds one day of streaming activity.
type ActivityRecord struct {
	Date            time.Time `json:"date"`
	DateString      string    `json:"dateString"`
	LiveTimeSeconds float64   `json:"liveTime"`
	LiveCount       float64   `json:"liveCount"`
}

// ViewerRecord holds one day of audience size and concurrency.
// AvgConcurrent is expected to stay at or below MaxConcurrent; it is not enforced.
type ViewerRecord struct {
	Date               time.Time `json:"date"`
	DateString         string    `json:"dateString"`
	ViewCount          float64   `json:"viewCount"`
	UniqueViewers      float64   `json:"uniqueViewers"`
	AvgViewTimeSeconds float64   `json:"avgViewTime"`
	MaxConcurrent      float64   `json:"maxConcurrent"`
	AvgConcurrent      float64   `json:"avgConcurrent"`
}

// Dataset is the four parallel record sequences of one upload batch.
// Sequences need not be the same length or share dates.
type Dataset struct {
	Engagement []EngagementRecord `json:"engagement"`
	Revenue    []RevenueRecord    `json:"revenue"`
	Activity   []ActivityRecord   `json:"activity"`
	Viewer     []ViewerRecord     `json:"viewer"`
}

// IsEmpty reports whether no sequence holds any record.
func (d Dataset) IsEmpty() bool {
	return len(d.Engagement) == 0 && len(d.Revenue) == 0 && len(d.Activity) == 0 && len(d.Viewer) == 0
}

// ============================================================================
// MERGED ROW — One synthesized row per display date
// ============================================================================

// MergedRow combines all four kinds for one date. Absent fields are zero.
type MergedRow struct {
	Date          string    `json:"date"`
	Time          time.Time `json:"-"`
	GiftGivers    float64   `json:"giftGivers"`
	NewFollowers  float64   `json:"newFollowers"`
	Commenters    float64   `json:"commenters"`
	Likes         float64   `json:"likes"`
	Shares        float64   `json:"shares"`
	LiveTime      float64   `json:"liveTime"`
	LiveCount     float64   `json:"liveCount"`
	Views         float64   `json:"views"`
	UniqueViewers float64   `json:"uniqueViewers"`
	AvgViewTime   float64   `json:"avgViewTime"`
	MaxConcurrent float64   `json:"maxConcurrent"`
	AvgConcurrent float64   `json:"avgConcurrent"`
	Diamonds      float64   `json:"diamonds"`
}

// ============================================================================
// KPI METRICS
// ============================================================================

// KPIMetrics is the fixed set of scalar aggregates over a Dataset.
type KPIMetrics struct {
	TotalDiamonds         float64 `json:"totalDiamonds"`
	TotalLikes            float64 `json:"totalLikes"`
	TotalFollowers        float64 `json:"totalFollowers"`
	TotalViews            float64 `json:"totalViews"`
	ActiveDays            int     `json:"activeDays"`
	TotalLiveTime         float64 `json:"totalLiveTime"`
	AvgEngagementRate     float64 `json:"avgEngagementRate"`
	AvgRevenuePerStream   float64 `json:"avgRevenuePerStream"`
	AvgViewersPerStream   float64 `json:"avgViewersPerStream"`
	PeakConcurrentViewers float64 `json:"peakConcurrentViewers"`
	TotalGiftGivers       float64 `json:"totalGiftGivers"`
	TotalCommenters       float64 `json:"totalCommenters"`
	TotalShares           float64 `json:"totalShares"`
	TotalLiveCount        float64 `json:"totalLiveCount"`
	TotalUniqueViewers    float64 `json:"totalUniqueViewers"`
	AvgViewTime           float64 `json:"avgViewTime"`
	AvgConcurrentViewers  float64 `json:"avgConcurrentViewers"`
	AvgLiveTimePerStream  float64 `json:"avgLiveTimePerStream"`
}

// ============================================================================
// INSIGHTS AND TRENDS
// ============================================================================

// Severity classifies an insight.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Insight is one qualitative observation derived from the KPIs.
type Insight struct {
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Metric         string   `json:"metric,omitempty"`
	Value          float64  `json:"value"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Direction is the sign of a trend.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Trend compares the mean of the second half of a series with the first.
// PercentageChange is signed.
type Trend struct {
	Direction        Direction `json:"direction"`
	PercentageChange float64   `json:"percentageChange"`
}

// MetricTrend is a Trend bound to a named metric.
type MetricTrend struct {
	Metric string `json:"metric"`
	Label  string `json:"label"`
	Period string `json:"period"`
	Trend
}

// MetricCorrelation is the Pearson coefficient of two merged-row columns.
type MetricCorrelation struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Coefficient float64 `json:"coefficient"`
}

// Statistics summarises a numeric series.
type Statistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// ============================================================================
// ADVANCED ANALYSIS
// ============================================================================

// ComparisonPeriod is one equal-length window of the dataset with its KPIs.
// Growth holds the percentage change of the headline totals against the
// previous window; the first window has none.
type ComparisonPeriod struct {
	Label     string             `json:"label"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	KPIs      KPIMetrics         `json:"kpis"`
	Growth    map[string]float64 `json:"growth,omitempty"`
}

// PerformanceReport is the weighted 0-100 stream performance score.
type PerformanceReport struct {
	Score    int              `json:"score"`
	Grade    string           `json:"grade"`
	Feedback []ScoreComponent `json:"feedback"`
}

// ScoreComponent is the scored outcome of one evaluated dimension.
type ScoreComponent struct {
	Dimension string   `json:"dimension"`
	Points    int      `json:"points"`
	MaxPoints int      `json:"maxPoints"`
	Value     float64  `json:"value"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// GrowthDirection labels the overall growth of a dataset.
type GrowthDirection string

const (
	Growing   GrowthDirection = "growing"
	Steady    GrowthDirection = "stable"
	Declining GrowthDirection = "declining"
)

// GrowthTrend summarises half-over-half growth across the headline metrics.
type GrowthTrend struct {
	Trend       GrowthDirection `json:"trend"`
	GrowthRate  float64         `json:"growthRate"`
	BestMetric  string          `json:"bestMetric"`
	WorstMetric string          `json:"worstMetric"`
	Metrics     []MetricTrend   `json:"metrics"`
}

// DetailedStats holds per-day and per-hour derived figures.
type DetailedStats struct {
	TotalDays              int     `json:"totalDays"`
	InactiveDays           int     `json:"inactiveDays"`
	OperatingRatio         float64 `json:"operatingRatio"`
	TotalLiveHours         float64 `json:"totalLiveHours"`
	AvgDiamondsPerDay      float64 `json:"avgDiamondsPerDay"`
	AvgLikesPerDay         float64 `json:"avgLikesPerDay"`
	AvgViewsPerDay         float64 `json:"avgViewsPerDay"`
	AvgFollowersPerDay     float64 `json:"avgFollowersPerDay"`
	AvgGiftGiversPerDay    float64 `json:"avgGiftGiversPerDay"`
	AvgCommentersPerDay    float64 `json:"avgCommentersPerDay"`
	AvgSharesPerDay        float64 `json:"avgSharesPerDay"`
	AvgLiveHoursPerDay     float64 `json:"avgLiveHoursPerDay"`
	AvgUniqueViewersPerDay float64 `json:"avgUniqueViewersPerDay"`
	RevenuePerHour         float64 `json:"revenuePerHour"`
	LikesPerHour           float64 `json:"likesPerHour"`
	WeeklyFrequency        float64 `json:"weeklyFrequency"`
	MonthlyFrequency       float64 `json:"monthlyFrequency"`
	LongestStreamHours     float64 `json:"longestStreamHours"`
	LikesGrowth            float64 `json:"likesGrowth"`
	DiamondsGrowth         float64 `json:"diamondsGrowth"`
	ViewsGrowth            float64 `json:"viewsGrowth"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a per-metric time series chart.
type ChartConfig struct {
	Metric     string        `json:"metric"`
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Note  string  `json:"note,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "date", "number", "duration", "currency"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// REPORT — Everything derived from one Dataset
// ============================================================================

// Report bundles every derived view of a Dataset.
type Report struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	StartDate   *time.Time            `json:"startDate,omitempty"`
	EndDate     *time.Time            `json:"endDate,omitempty"`
	KPIs        KPIMetrics            `json:"kpis"`
	Insights    []Insight             `json:"insights"`
	Trends      []MetricTrend         `json:"trends"`
	Growth      GrowthTrend           `json:"growth"`
	Performance PerformanceReport     `json:"performance"`
	Detail      DetailedStats         `json:"detail"`
	Stats       map[string]Statistics `json:"stats"`
	Correlation []MetricCorrelation   `json:"correlation"`
	Comparison  []ComparisonPeriod    `json:"comparison,omitempty"`
	Rows        []MergedRow           `json:"rows"`
	Charts      []*ChartConfig        `json:"charts,omitempty"`
	Summary     string                `json:"summary"`
	Dataset     Dataset               `json:"-"`
}
