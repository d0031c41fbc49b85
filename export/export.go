// Package export renders an analysis report as a downloadable document.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/livepulse/engine"
)

// ============================================================================
// EXPORT — Report to CSV, Excel, PDF or JSON
// ============================================================================
// Every writer renders the whole document before anything reaches its
// destination, so a failed export never leaves a partial file behind.
// ============================================================================

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyDataset      = errors.New("nothing to export")
)

// Format is an export document type.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
	FormatJSON  Format = "json"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatCSV, FormatExcel, FormatPDF, FormatJSON}
}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType is the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Filename builds a download name like "livepulse_20240101_20240131.pdf".
func Filename(r *engine.Report, f Format) string {
	name := "livepulse"
	if r != nil && r.StartDate != nil && r.EndDate != nil {
		name = fmt.Sprintf("livepulse_%s_%s", r.StartDate.Format("20060102"), r.EndDate.Format("20060102"))
	}
	return name + "." + string(f)
}

// ============================================================================
// OPTIONS
// ============================================================================

// Section is an optional part of a document.
type Section string

const (
	SectionKPIs       Section = "kpis"
	SectionInsights   Section = "insights"
	SectionTrends     Section = "trends"
	SectionScore      Section = "score"
	SectionComparison Section = "comparison"
	SectionTable      Section = "table"
)

// DefaultSections lists every section in document order.
func DefaultSections() []Section {
	return []Section{SectionKPIs, SectionInsights, SectionTrends, SectionScore, SectionComparison, SectionTable}
}

// DateRange labels the period a document covers. Zero values fall back to
// the report's own date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Options configures a single export. Nothing is shared between calls.
type Options struct {
	Sections      []Section
	DateRange     DateRange
	IncludeCharts bool
	CSVBOM        bool
	Title         string
	Style         engine.ChartStyle
}

// DefaultOptions returns options with every section and charts enabled.
func DefaultOptions() Options {
	return Options{
		Sections:      DefaultSections(),
		IncludeCharts: true,
		CSVBOM:        true,
		Title:         "Live Stream Analytics Report",
		Style:         engine.DefaultChartStyle(),
	}
}

func (o Options) has(s Section) bool {
	for _, sec := range o.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

func (o Options) title() string {
	if o.Title == "" {
		return "Live Stream Analytics Report"
	}
	return o.Title
}

// period renders the covered date range, or "" when unknown.
func (o Options) period(r *engine.Report) string {
	start, end := o.DateRange.Start, o.DateRange.End
	if start.IsZero() && r.StartDate != nil {
		start = *r.StartDate
	}
	if end.IsZero() && r.EndDate != nil {
		end = *r.EndDate
	}
	if start.IsZero() || end.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s - %s", start.Format(engine.DisplayLayout), end.Format(engine.DisplayLayout))
}

// charts returns the report's charts, building them with the export style
// when the report was analyzed without any.
func (o Options) charts(r *engine.Report) []*engine.ChartConfig {
	if !o.IncludeCharts {
		return nil
	}
	if len(r.Charts) > 0 {
		return r.Charts
	}
	return engine.BuildCharts(r.Dataset, o.Style)
}

// ============================================================================
// DISPATCH
// ============================================================================

// Render writes the report in the given format to w. The document is built
// in memory first; w receives nothing if rendering fails.
func Render(w io.Writer, f Format, r *engine.Report, opts Options) error {
	if r == nil || len(r.Rows) == 0 {
		return ErrEmptyDataset
	}

	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = CSV(&buf, r.Rows, opts)
	case FormatExcel:
		err = Excel(&buf, r, opts)
	case FormatPDF:
		err = PDF(&buf, r, opts)
	case FormatJSON:
		err = JSON(&buf, r, true)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(w)
	return err
}

// WriteFile renders the report and writes it to path. The file appears only
// once the document is complete; an existing file is replaced atomically.
func WriteFile(path string, f Format, r *engine.Report, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var buf bytes.Buffer
	if err := Render(&buf, f, r, opts); err != nil {
		log.Error("export failed", zap.String("format", string(f)), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("export %s: %w", f, err)
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		log.Error("export write failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("write %s: %w", path, err)
	}

	log.Info("report exported",
		zap.String("format", string(f)),
		zap.String("path", path),
		zap.Int("bytes", buf.Len()))
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".livepulse-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
