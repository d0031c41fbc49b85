package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/spektr-org/livepulse/engine"
)

// ============================================================================
// PDF — Paginated report drawn with fpdf primitives
// ============================================================================
// A pdfBuilder owns the document and its cursor for exactly one PDF call.
// Layout is A4 landscape so the full merged table fits one page width.
// Core fonts are cp1252; characters outside it print as '.'.
// ============================================================================

const (
	pdfMargin      = 12.0
	pdfLine        = 6.0
	pdfChartH      = 48.0
	pdfCardH       = 18.0
	pdfCardsPerRow = 4
)

type rgb struct{ r, g, b int }

var (
	pdfInk   = rgb{33, 33, 33}
	pdfMuted = rgb{110, 110, 110}
	pdfPanel = rgb{245, 245, 247}
	pdfGrid  = rgb{210, 210, 214}
)

type pdfBuilder struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	bottom float64
	accent rgb
	second rgb
}

func newPDFBuilder(r *engine.Report, opts Options) *pdfBuilder {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(opts.title(), true)
	pdf.SetCreator("livepulse", true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.AliasNbPages("")

	style := opts.Style
	if len(style.Palette) == 0 {
		style = engine.DefaultChartStyle()
	}

	b := &pdfBuilder{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		accent: hexRGB(style.Color(0)),
		second: hexRGB(style.Color(1)),
	}
	pageW, pageH := pdf.GetPageSize()
	b.width = pageW - 2*pdfMargin
	b.bottom = pageH - pdfMargin - 8

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		b.font("", 8, pdfMuted)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return b
}

// PDF writes the report as a PDF document.
func PDF(w io.Writer, r *engine.Report, opts Options) error {
	b := newPDFBuilder(r, opts)

	b.heading(opts.title(), opts.period(r))
	if opts.has(SectionKPIs) {
		b.kpiCards(r)
	}
	if opts.has(SectionScore) {
		b.score(r.Performance)
	}
	if opts.has(SectionInsights) {
		b.insights(r.Insights)
	}
	if opts.has(SectionTrends) {
		b.trends(r)
	}
	if opts.has(SectionComparison) && len(r.Comparison) > 0 {
		b.comparison(r.Comparison)
	}
	for _, c := range opts.charts(r) {
		b.barChart(c)
	}
	if opts.has(SectionTable) {
		b.table(engine.BuildTable("Daily Breakdown", r.Rows))
	}

	if err := b.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// ============================================================================
// PRIMITIVES
// ============================================================================

func (b *pdfBuilder) font(style string, size float64, c rgb) {
	b.pdf.SetFont("Helvetica", style, size)
	b.pdf.SetTextColor(c.r, c.g, c.b)
}

func (b *pdfBuilder) fill(c rgb) { b.pdf.SetFillColor(c.r, c.g, c.b) }
func (b *pdfBuilder) draw(c rgb) { b.pdf.SetDrawColor(c.r, c.g, c.b) }

// ensure starts a new page unless h millimetres still fit on this one.
func (b *pdfBuilder) ensure(h float64) {
	if b.pdf.GetY()+h > b.bottom {
		b.pdf.AddPage()
	}
}

func (b *pdfBuilder) text(w, h float64, s, align string) {
	b.pdf.CellFormat(w, h, b.tr(s), "", 0, align, false, 0, "")
}

func (b *pdfBuilder) heading(title, period string) {
	b.fill(b.accent)
	b.pdf.Rect(pdfMargin, pdfMargin, b.width, 2, "F")
	b.pdf.SetY(pdfMargin + 5)

	b.font("B", 20, pdfInk)
	b.text(b.width, 10, title, "L")
	b.pdf.Ln(10)
	if period != "" {
		b.font("", 11, pdfMuted)
		b.text(b.width, pdfLine, "Period: "+period, "L")
		b.pdf.Ln(pdfLine)
	}
	b.pdf.Ln(4)
}

func (b *pdfBuilder) section(title string) {
	b.ensure(16)
	b.pdf.Ln(3)
	b.font("B", 13, pdfInk)
	b.text(b.width, 8, title, "L")
	b.pdf.Ln(8)
	b.draw(b.accent)
	y := b.pdf.GetY()
	b.pdf.Line(pdfMargin, y, pdfMargin+40, y)
	b.pdf.Ln(2)
}

// ============================================================================
// SECTIONS
// ============================================================================

func (b *pdfBuilder) kpiCards(r *engine.Report) {
	k := r.KPIs
	cards := [][2]string{
		{"Diamonds", engine.FormatInt(int64(k.TotalDiamonds))},
		{"Likes", engine.FormatInt(int64(k.TotalLikes))},
		{"New Followers", engine.FormatInt(int64(k.TotalFollowers))},
		{"Views", engine.FormatInt(int64(k.TotalViews))},
		{"Live Time", engine.FormatHoursMinutes(k.TotalLiveTime)},
		{"Active Days", strconv.Itoa(k.ActiveDays)},
		{"Engagement Rate", fmt.Sprintf("%.1f%%", k.AvgEngagementRate)},
		{"Peak Concurrent", engine.FormatInt(int64(k.PeakConcurrentViewers))},
	}

	b.section("Key Metrics")
	gap := 4.0
	cardW := (b.width - gap*(pdfCardsPerRow-1)) / pdfCardsPerRow
	for i, c := range cards {
		col := i % pdfCardsPerRow
		if col == 0 {
			b.ensure(pdfCardH + gap)
		}
		x := pdfMargin + float64(col)*(cardW+gap)
		y := b.pdf.GetY()

		b.fill(pdfPanel)
		b.pdf.Rect(x, y, cardW, pdfCardH, "F")
		b.fill(b.accent)
		b.pdf.Rect(x, y, 1.5, pdfCardH, "F")

		b.pdf.SetXY(x+4, y+2)
		b.font("", 9, pdfMuted)
		b.text(cardW-6, 5, c[0], "L")
		b.pdf.SetXY(x+4, y+8)
		b.font("B", 15, pdfInk)
		b.text(cardW-6, 8, c[1], "L")

		if col == pdfCardsPerRow-1 || i == len(cards)-1 {
			b.pdf.SetXY(pdfMargin, y+pdfCardH+gap)
		}
	}
}

func (b *pdfBuilder) score(p engine.PerformanceReport) {
	b.section(fmt.Sprintf("Performance Score: %d / 100 (Grade %s)", p.Score, p.Grade))
	for _, c := range p.Feedback {
		b.ensure(pdfLine)
		b.font("B", 10, pdfInk)
		b.text(40, pdfLine, engine.LabelFor(c.Dimension), "L")
		b.font("", 10, pdfInk)
		b.text(25, pdfLine, fmt.Sprintf("%d / %d", c.Points, c.MaxPoints), "R")
		b.font("", 10, pdfMuted)
		b.text(b.width-65, pdfLine, "   "+c.Message, "L")
		b.pdf.Ln(pdfLine)
	}
}

func (b *pdfBuilder) insights(list []engine.Insight) {
	if len(list) == 0 {
		return
	}
	b.section("Insights")
	for _, in := range list {
		b.ensure(3 * pdfLine)
		b.font("B", 10, severityColor(in.Severity, b.accent))
		b.text(b.width, pdfLine, fmt.Sprintf("[%s] %s", strings.ToUpper(string(in.Severity)), in.Title), "L")
		b.pdf.Ln(pdfLine)
		b.font("", 10, pdfInk)
		b.pdf.MultiCell(b.width, 5, b.tr(in.Description+" "+in.Recommendation), "", "L", false)
		b.pdf.Ln(1)
	}
}

func (b *pdfBuilder) trends(r *engine.Report) {
	g := r.Growth
	b.section(fmt.Sprintf("Trends (overall %s, %+.1f%%)", g.Trend, g.GrowthRate))
	for _, t := range r.Trends {
		b.ensure(pdfLine)
		b.font("", 10, pdfInk)
		b.text(60, pdfLine, t.Label, "L")
		b.text(30, pdfLine, string(t.Direction), "L")
		b.text(30, pdfLine, fmt.Sprintf("%+.1f%%", t.PercentageChange), "R")
		b.pdf.Ln(pdfLine)
	}
	if g.BestMetric != "" {
		b.font("", 9, pdfMuted)
		b.text(b.width, pdfLine, fmt.Sprintf("Strongest: %s   Weakest: %s", g.BestMetric, g.WorstMetric), "L")
		b.pdf.Ln(pdfLine)
	}
}

func (b *pdfBuilder) comparison(periods []engine.ComparisonPeriod) {
	b.section("Period Comparison")
	headers := []string{"Period", "Diamonds", "Likes", "Views", "Live Time", "Active Days"}
	widths := []float64{80, 35, 35, 35, 35, 30}
	b.tableHeader(headers, widths)
	for _, p := range periods {
		b.ensure(pdfLine)
		b.tableRow([]string{
			p.Label,
			engine.FormatInt(int64(p.KPIs.TotalDiamonds)),
			engine.FormatInt(int64(p.KPIs.TotalLikes)),
			engine.FormatInt(int64(p.KPIs.TotalViews)),
			engine.FormatHoursMinutes(p.KPIs.TotalLiveTime),
			strconv.Itoa(p.KPIs.ActiveDays),
		}, widths, false)
	}
}

func (b *pdfBuilder) table(t *engine.TableData) {
	b.section(t.Title)
	widths := make([]float64, len(t.Columns))
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = b.width / float64(len(t.Columns))
		labels[i] = c.Label
	}

	b.tableHeader(labels, widths)
	for _, row := range t.Rows {
		if b.pdf.GetY()+pdfLine > b.bottom {
			b.pdf.AddPage()
			b.tableHeader(labels, widths)
		}
		b.tableRow(row, widths, false)
	}
	if t.Summary != nil {
		cells := make([]string, len(t.Columns))
		cells[0] = t.Summary.Label
		for i, c := range t.Columns[1:] {
			cells[i+1] = t.Summary.Values[c.Key]
		}
		b.ensure(pdfLine)
		b.tableRow(cells, widths, true)
	}
}

func (b *pdfBuilder) tableHeader(labels []string, widths []float64) {
	b.ensure(2 * pdfLine)
	b.fill(b.accent)
	b.font("B", 7, rgb{255, 255, 255})
	for i, l := range labels {
		b.pdf.CellFormat(widths[i], pdfLine, b.tr(l), "", 0, "C", true, 0, "")
	}
	b.pdf.Ln(pdfLine)
}

func (b *pdfBuilder) tableRow(cells []string, widths []float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	b.font(style, 7, pdfInk)
	b.draw(pdfGrid)
	for i, c := range cells {
		align := "R"
		if i == 0 {
			align = "L"
		}
		b.pdf.CellFormat(widths[i], pdfLine, b.tr(c), "B", 0, align, false, 0, "")
	}
	b.pdf.Ln(pdfLine)
}

// barChart draws the first series as bars and any second series (the
// moving average) as a line over them.
func (b *pdfBuilder) barChart(c *engine.ChartConfig) {
	if len(c.Series) == 0 || len(c.Series[0].Data) == 0 {
		return
	}
	points := c.Series[0].Data

	b.ensure(pdfChartH + 20)
	b.section(c.Title)

	var peak float64
	for _, p := range points {
		peak = max(peak, p.Value)
	}

	top := b.pdf.GetY() + 2
	left := pdfMargin + 18
	plotW := b.width - 20
	baseY := top + pdfChartH

	b.draw(pdfGrid)
	b.pdf.SetLineWidth(0.2)
	b.pdf.Line(left, top, left, baseY)
	b.pdf.Line(left, baseY, left+plotW, baseY)
	b.font("", 7, pdfMuted)
	b.pdf.SetXY(pdfMargin, top-2)
	b.text(16, 4, engine.FormatNumber(peak, 0), "R")
	b.pdf.SetXY(pdfMargin, baseY-2)
	b.text(16, 4, "0", "R")

	slot := plotW / float64(len(points))
	barW := slot * 0.7
	scale := 0.0
	if peak > 0 {
		scale = pdfChartH / peak
	}

	index := make(map[string]int, len(points))
	b.fill(b.accent)
	for i, p := range points {
		index[p.Label] = i
		h := max(p.Value, 0) * scale
		if h > 0 {
			b.pdf.Rect(left+float64(i)*slot+(slot-barW)/2, baseY-h, barW, h, "F")
		}
	}

	if len(c.Series) > 1 && scale > 0 {
		b.draw(b.second)
		b.pdf.SetLineWidth(0.6)
		var px, py float64
		drawn := false
		for _, p := range c.Series[1].Data {
			i, ok := index[p.Label]
			if !ok {
				continue
			}
			x := left + float64(i)*slot + slot/2
			y := baseY - max(p.Value, 0)*scale
			if drawn {
				b.pdf.Line(px, py, x, y)
			}
			px, py, drawn = x, y, true
		}
		b.pdf.SetLineWidth(0.2)
	}

	b.font("", 7, pdfMuted)
	for _, i := range labelIndexes(len(points)) {
		b.pdf.SetXY(left+float64(i)*slot+slot/2-12, baseY+1)
		b.text(24, 4, points[i].Label, "C")
	}
	b.pdf.SetXY(pdfMargin, baseY+7)
}

// labelIndexes picks the first, middle and last positions of a series.
func labelIndexes(n int) []int {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []int{0}
	case n == 2:
		return []int{0, 1}
	}
	return []int{0, n / 2, n - 1}
}

func severityColor(s engine.Severity, accent rgb) rgb {
	switch s {
	case engine.SeveritySuccess:
		return rgb{16, 150, 100}
	case engine.SeverityWarning:
		return rgb{214, 120, 0}
	case engine.SeverityError:
		return accent
	}
	return rgb{60, 90, 200}
}

// hexRGB parses "#RRGGBB"; anything else is mid grey.
func hexRGB(s string) rgb {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rgb{128, 128, 128}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{128, 128, 128}
	}
	return rgb{int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)}
}
