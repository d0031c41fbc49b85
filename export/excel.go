package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/livepulse/engine"
)

// ============================================================================
// EXCEL — Multi-sheet workbook
// ============================================================================
// Sheets: Summary, Detail, Revenue, Engagement, Viewers, Live, Advanced and,
// when charts are included, Charts. Numeric cells stay numeric so the
// workbook can be re-analysed; derived ratios are rounded to 2 decimals.
// ============================================================================

// Sheet names in workbook order.
const (
	SheetSummary    = "Summary"
	SheetDetail     = "Detail"
	SheetRevenue    = "Revenue"
	SheetEngagement = "Engagement"
	SheetViewers    = "Viewers"
	SheetLive       = "Live"
	SheetAdvanced   = "Advanced"
	SheetCharts     = "Charts"
)

type workbookStyles struct {
	title, header, section, number, decimal int
}

func newWorkbookStyles(f *excelize.File, accent string) (workbookStyles, error) {
	var s workbookStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: accent},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{accent}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.section, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
	}); err != nil {
		return s, err
	}
	if s.number, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil {
		return s, err
	}
	s.decimal, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	return s, err
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	name   string
	styles workbookStyles
	row    int
	err    error
}

func (s *sheetWriter) cell(col, row int) string {
	c, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return c
}

// values writes the next row starting at column A.
func (s *sheetWriter) values(vals ...any) {
	if s.err != nil {
		return
	}
	s.row++
	s.err = s.f.SetSheetRow(s.name, s.cell(1, s.row), &vals)
}

func (s *sheetWriter) blank() { s.row++ }

// style applies a style to columns 1..cols of the current row.
func (s *sheetWriter) style(id, cols int) {
	if s.err != nil || cols < 1 {
		return
	}
	s.err = s.f.SetCellStyle(s.name, s.cell(1, s.row), s.cell(cols, s.row), id)
}

// styleRange applies a style to a block of columns and rows.
func (s *sheetWriter) styleRange(id, fromCol, fromRow, toCol, toRow int) {
	if s.err != nil || toRow < fromRow {
		return
	}
	s.err = s.f.SetCellStyle(s.name, s.cell(fromCol, fromRow), s.cell(toCol, toRow), id)
}

func (s *sheetWriter) header(labels ...string) {
	vals := make([]any, len(labels))
	for i, l := range labels {
		vals[i] = l
	}
	s.values(vals...)
	s.style(s.styles.header, len(labels))
}

func (s *sheetWriter) section(title string) {
	s.values(title)
	s.style(s.styles.section, 1)
}

func (s *sheetWriter) widths(w ...float64) {
	for i, width := range w {
		if s.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			s.err = err
			return
		}
		s.err = s.f.SetColWidth(s.name, col, col, width)
	}
}

type sheetBuilder struct {
	name  string
	build func(*sheetWriter, *engine.Report, Options)
}

// Excel writes the report as an .xlsx workbook.
func Excel(w io.Writer, r *engine.Report, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	accent := opts.Style.Color(0)
	if accent == "" {
		accent = engine.DefaultChartStyle().Color(0)
	}
	styles, err := newWorkbookStyles(f, accent)
	if err != nil {
		return fmt.Errorf("workbook styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	builders := []sheetBuilder{
		{SheetSummary, writeSummarySheet},
		{SheetDetail, writeDetailSheet},
		{SheetRevenue, writeRevenueSheet},
		{SheetEngagement, writeEngagementSheet},
		{SheetViewers, writeViewerSheet},
		{SheetLive, writeLiveSheet},
		{SheetAdvanced, writeAdvancedSheet},
	}
	charts := opts.charts(r)
	if len(charts) > 0 {
		builders = append(builders, sheetBuilder{SheetCharts, func(s *sheetWriter, _ *engine.Report, _ Options) {
			writeChartSheet(s, charts)
		}})
	}

	for _, b := range builders {
		if b.name != SheetSummary {
			if _, err := f.NewSheet(b.name); err != nil {
				return fmt.Errorf("sheet %s: %w", b.name, err)
			}
		}
		s := &sheetWriter{f: f, name: b.name, styles: styles}
		b.build(s, r, opts)
		if s.err != nil {
			return fmt.Errorf("sheet %s: %w", b.name, s.err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ============================================================================
// SHEETS
// ============================================================================

func writeSummarySheet(s *sheetWriter, r *engine.Report, opts Options) {
	k, d := r.KPIs, r.Detail

	s.values(opts.title())
	s.style(s.styles.title, 1)
	if p := opts.period(r); p != "" {
		s.values("Period", p)
	}
	s.values("Generated", r.GeneratedAt.Format("2006/01/02 15:04"))
	s.blank()

	s.header("Metric", "Total", "Per Active Day", "Unit")
	first := s.row + 1
	s.values("Diamonds", k.TotalDiamonds, engine.RoundTo2(d.AvgDiamondsPerDay), "diamonds")
	s.values("Likes", k.TotalLikes, engine.RoundTo2(d.AvgLikesPerDay), "likes")
	s.values("New Followers", k.TotalFollowers, engine.RoundTo2(d.AvgFollowersPerDay), "followers")
	s.values("Views", k.TotalViews, engine.RoundTo2(d.AvgViewsPerDay), "views")
	s.values("Live Time", engine.RoundTo2(d.TotalLiveHours), engine.RoundTo2(d.AvgLiveHoursPerDay), "hours")
	s.values("Streams", k.TotalLiveCount, engine.RoundTo2(ratio(k.TotalLiveCount, float64(k.ActiveDays))), "streams")
	s.values("Unique Viewers", k.TotalUniqueViewers, engine.RoundTo2(d.AvgUniqueViewersPerDay), "viewers")
	s.values("Peak Concurrent", k.PeakConcurrentViewers, engine.RoundTo2(k.AvgConcurrentViewers), "viewers")
	s.styleRange(s.styles.number, 2, first, 2, s.row)
	s.styleRange(s.styles.decimal, 3, first, 3, s.row)
	s.blank()

	s.values("Active Days", k.ActiveDays)
	s.values("Engagement Rate (%)", engine.RoundTo2(k.AvgEngagementRate))
	s.values("Diamonds per Stream", engine.RoundTo2(k.AvgRevenuePerStream))
	s.values("Views per Stream", engine.RoundTo2(k.AvgViewersPerStream))
	s.values("Avg View Time", engine.FormatMinutes(k.AvgViewTime))
	s.values("Avg Stream Length", engine.FormatDuration(k.AvgLiveTimePerStream))
	s.values("Score", r.Performance.Score, r.Performance.Grade)

	if len(r.Insights) > 0 {
		s.blank()
		s.section("Highlights")
		for _, in := range r.Insights {
			s.values(in.Title, in.Description, in.Recommendation)
		}
	}

	s.widths(26, 18, 18, 40)
}

func writeDetailSheet(s *sheetWriter, r *engine.Report, _ Options) {
	cols := engine.RowColumns()
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	s.header(labels...)

	first := s.row + 1
	for _, row := range r.Rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			if c.Key == engine.ColDate {
				vals[i] = row.Date
				continue
			}
			vals[i], _ = row.Value(c.Key)
		}
		s.values(vals...)
	}
	s.styleRange(s.styles.number, 2, first, len(cols), s.row)

	if t := engine.BuildTable("", r.Rows); t.Summary != nil {
		vals := make([]any, len(cols))
		vals[0] = t.Summary.Label
		for i, c := range cols[1:] {
			vals[i+1] = t.Summary.Values[c.Key]
		}
		s.values(vals...)
		s.style(s.styles.section, len(cols))
	}

	widths := make([]float64, len(cols))
	for i := range widths {
		widths[i] = 15
	}
	s.widths(widths...)
}

func writeRevenueSheet(s *sheetWriter, r *engine.Report, _ Options) {
	s.header("Date", "Diamonds", "Live Hours", "Streams", "Diamonds / Hour", "Diamonds / Stream")
	first := s.row + 1
	var best float64
	for _, row := range r.Rows {
		hours := row.LiveTime / 3600
		s.values(row.Date, row.Diamonds, engine.RoundTo2(hours), row.LiveCount,
			engine.RoundTo2(ratio(row.Diamonds, hours)), engine.RoundTo2(ratio(row.Diamonds, row.LiveCount)))
		if row.Diamonds > best {
			best = row.Diamonds
		}
	}
	s.styleRange(s.styles.number, 2, first, 2, s.row)
	s.blank()

	s.section("Revenue Summary")
	s.values("Total Diamonds", r.KPIs.TotalDiamonds)
	s.values("Per Active Day", engine.RoundTo2(r.Detail.AvgDiamondsPerDay))
	s.values("Best Day", best)
	s.values("Per Hour", engine.RoundTo2(r.Detail.RevenuePerHour))
	s.values("Per Stream", engine.RoundTo2(r.KPIs.AvgRevenuePerStream))
	s.widths(14, 14, 14, 12, 18, 18)
}

func writeEngagementSheet(s *sheetWriter, r *engine.Report, _ Options) {
	s.header("Date", "Likes", "Gift Givers", "Commenters", "Shares", "New Followers", "Views", "Engagement Rate (%)")
	first := s.row + 1
	var peak float64
	for _, row := range r.Rows {
		rate := ratio(row.Likes+row.GiftGivers+row.Commenters+row.Shares, row.Views) * 100
		if rate > peak {
			peak = rate
		}
		s.values(row.Date, row.Likes, row.GiftGivers, row.Commenters, row.Shares, row.NewFollowers, row.Views, engine.RoundTo2(rate))
	}
	s.styleRange(s.styles.number, 2, first, 7, s.row)
	s.blank()

	k := r.KPIs
	s.section("Engagement Summary")
	s.values("Average Engagement Rate (%)", engine.RoundTo2(k.AvgEngagementRate))
	s.values("Best Engagement Rate (%)", engine.RoundTo2(peak))
	s.values("Total Engagements", k.TotalLikes+k.TotalGiftGivers+k.TotalCommenters+k.TotalShares)
	s.values("Likes per View (%)", engine.RoundTo2(ratio(k.TotalLikes, k.TotalViews)*100))
	s.values("Follower Conversion (%)", engine.RoundTo2(ratio(k.TotalFollowers, k.TotalViews)*100))
	s.widths(28, 12, 12, 12, 12, 14, 12, 20)
}

func writeViewerSheet(s *sheetWriter, r *engine.Report, _ Options) {
	s.header("Date", "Views", "Unique Viewers", "Peak Concurrent", "Avg Concurrent", "Avg View Time (min)", "Live Hours", "Retention (%)")
	first := s.row + 1
	for _, row := range r.Rows {
		s.values(row.Date, row.Views, row.UniqueViewers, row.MaxConcurrent, row.AvgConcurrent,
			engine.RoundTo2(row.AvgViewTime/60), engine.RoundTo2(row.LiveTime/3600),
			engine.RoundTo2(ratio(row.AvgConcurrent, row.MaxConcurrent)*100))
	}
	s.styleRange(s.styles.number, 2, first, 5, s.row)
	s.widths(14, 12, 16, 16, 16, 20, 12, 14)
}

func writeLiveSheet(s *sheetWriter, r *engine.Report, _ Options) {
	s.header("Date", "Streams", "Live Hours", "Avg Stream (min)", "Diamonds", "Views", "Diamonds / Hour")
	for _, row := range r.Rows {
		hours := row.LiveTime / 3600
		s.values(row.Date, row.LiveCount, engine.RoundTo2(hours),
			engine.RoundTo2(ratio(row.LiveTime/60, row.LiveCount)),
			row.Diamonds, row.Views, engine.RoundTo2(ratio(row.Diamonds, hours)))
	}
	s.widths(14, 10, 12, 18, 12, 12, 16)
}

func writeAdvancedSheet(s *sheetWriter, r *engine.Report, opts Options) {
	if opts.has(SectionScore) {
		s.section(fmt.Sprintf("Performance Score: %d / 100 (%s)", r.Performance.Score, r.Performance.Grade))
		s.header("Dimension", "Points", "Max", "Value", "Assessment")
		for _, c := range r.Performance.Feedback {
			s.values(engine.LabelFor(c.Dimension), c.Points, c.MaxPoints, engine.RoundTo2(c.Value), c.Message)
		}
		s.blank()
	}

	if opts.has(SectionTrends) {
		g := r.Growth
		s.section(fmt.Sprintf("Growth: %s (%+.1f%%)", g.Trend, g.GrowthRate))
		s.values("Best metric", g.BestMetric)
		s.values("Worst metric", g.WorstMetric)
		s.header("Metric", "Direction", "Change (%)")
		for _, t := range r.Trends {
			s.values(t.Label, string(t.Direction), engine.RoundTo2(t.PercentageChange))
		}
		s.blank()
	}

	if opts.has(SectionComparison) && len(r.Comparison) > 0 {
		s.section("Period Comparison")
		s.header("Period", "Diamonds", "Likes", "Views", "Live Hours", "Active Days", "Diamonds Change (%)")
		for _, p := range r.Comparison {
			var change any = ""
			if p.Growth != nil {
				change = engine.RoundTo2(p.Growth[engine.MetricDiamonds])
			}
			s.values(p.Label, p.KPIs.TotalDiamonds, p.KPIs.TotalLikes, p.KPIs.TotalViews,
				engine.RoundTo2(p.KPIs.TotalLiveTime/3600), p.KPIs.ActiveDays, change)
		}
		s.blank()
	}

	d := r.Detail
	s.section("Detailed Statistics")
	s.values("Total Days", d.TotalDays)
	s.values("Inactive Days", d.InactiveDays)
	s.values("Operating Ratio (%)", engine.RoundTo2(d.OperatingRatio))
	s.values("Streams per Week", engine.RoundTo2(d.WeeklyFrequency))
	s.values("Streams per Month", engine.RoundTo2(d.MonthlyFrequency))
	s.values("Longest Stream (h)", engine.RoundTo2(d.LongestStreamHours))
	s.values("Likes per Hour", engine.RoundTo2(d.LikesPerHour))
	s.values("Diamonds per Hour", engine.RoundTo2(d.RevenuePerHour))

	if len(r.Correlation) > 0 {
		s.blank()
		s.section("Correlation")
		s.header("Metric", "Against", "Coefficient")
		for _, c := range r.Correlation {
			s.values(engine.LabelFor(c.X), engine.LabelFor(c.Y), c.Coefficient)
		}
	}

	s.widths(32, 14, 14, 14, 30, 14, 20)
}

// writeChartSheet lays out each chart's series as a data block and adds a
// native chart over it.
func writeChartSheet(s *sheetWriter, charts []*engine.ChartConfig) {
	col := 1
	for i, c := range charts {
		if len(c.Series) == 0 || len(c.Series[0].Data) == 0 {
			continue
		}
		points := c.Series[0].Data
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			s.err = err
			return
		}
		catName, err := excelize.ColumnNumberToName(col)
		if err != nil {
			s.err = err
			return
		}

		if s.err == nil {
			s.err = s.f.SetSheetRow(s.name, s.cell(col, 1), &[]any{"Date", c.Series[0].Name})
		}
		for j, p := range points {
			if s.err != nil {
				return
			}
			s.err = s.f.SetSheetRow(s.name, s.cell(col, j+2), &[]any{p.Label, p.Value})
		}

		last := len(points) + 1
		chart := &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$%s$1", s.name, colName),
				Categories: fmt.Sprintf("'%s'!$%s$2:$%s$%d", s.name, catName, catName, last),
				Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", s.name, colName, colName, last),
			}},
			Title: []excelize.RichTextRun{{Text: c.Title}},
		}
		if s.err == nil {
			s.err = s.f.AddChart(s.name, s.cell(len(charts)*2+2, i*16+1), chart)
		}
		col += 2
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
