package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spektr-org/livepulse/engine"
)

// ============================================================================
// EXPORT TESTS
// ============================================================================
// Tests cover:
//   1. Format parsing and dispatch
//   2. CSV column order, raw values and the optional BOM
//   3. Workbook sheet layout read back through excelize
//   4. PDF magic and section selection
//   5. All-or-nothing file writes
// ============================================================================

// --- Test Fixtures ---

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func sampleDataset() engine.Dataset {
	var ds engine.Dataset
	for d := 1; d <= 6; d++ {
		t := day(d)
		key := t.Format(engine.DisplayLayout)
		f := float64(d)
		ds.Engagement = append(ds.Engagement, engine.EngagementRecord{
			Date: t, DateString: key, GiftGivers: f, NewFollowers: 2 * f, Commenters: 3 * f, Likes: 100 * f, Shares: f,
		})
		ds.Revenue = append(ds.Revenue, engine.RevenueRecord{Date: t, DateString: key, Diamonds: 1000 * f})
		ds.Activity = append(ds.Activity, engine.ActivityRecord{Date: t, DateString: key, LiveTimeSeconds: 3600 * f, LiveCount: 1})
		ds.Viewer = append(ds.Viewer, engine.ViewerRecord{
			Date: t, DateString: key, ViewCount: 500 * f, UniqueViewers: 300 * f, AvgViewTimeSeconds: 90, MaxConcurrent: 40 * f, AvgConcurrent: 20 * f,
		})
	}
	return ds
}

func sampleReport(t *testing.T) *engine.Report {
	t.Helper()
	style := engine.DefaultChartStyle()
	style.Window = 3
	r, err := engine.Analyze(sampleDataset(),
		engine.WithChartStyle(style),
		engine.WithClock(func() time.Time { return time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	return r
}

// ============================================================================
// FORMATS
// ============================================================================

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"csv": FormatCSV, "CSV": FormatCSV, ".xlsx": FormatExcel, "excel": FormatExcel,
		"pdf": FormatPDF, " json ": FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/octet-stream", Format("zip").ContentType())
	assert.Len(t, Formats(), 4)

	r := sampleReport(t)
	assert.Equal(t, "livepulse_20240301_20240306.xlsx", Filename(r, FormatExcel))
	assert.Equal(t, "livepulse.csv", Filename(nil, FormatCSV))
}

func TestRenderRejectsEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, FormatCSV, nil, DefaultOptions()), ErrEmptyDataset)

	empty, err := engine.Analyze(engine.Dataset{})
	require.NoError(t, err)
	assert.ErrorIs(t, Render(&buf, FormatPDF, empty, DefaultOptions()), ErrEmptyDataset)
	assert.Zero(t, buf.Len())
}

func TestRenderUnsupportedFormatWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Format("docx"), sampleReport(t), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}

// ============================================================================
// CSV
// ============================================================================

func TestCSV(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, r.Rows, Options{CSVBOM: true}))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	lines := strings.Split(strings.TrimRight(string(out[len(utf8BOM):]), "\r\n"), "\r\n")
	require.Len(t, lines, 7)
	assert.Equal(t,
		"date,giftGivers,newFollowers,commenters,likes,shares,liveTime,liveCount,views,uniqueViewers,avgViewTime,maxConcurrent,avgConcurrent,diamonds",
		lines[0])
	assert.Equal(t, "2024/03/01,1,2,3,100,1,3600,1,500,300,90,40,20,1000", lines[1])
}

func TestCSVWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleReport(t).Rows, Options{}))
	assert.True(t, strings.HasPrefix(buf.String(), "date,"))
}

func TestCSVFollowsRowOrder(t *testing.T) {
	r := sampleReport(t)
	require.NoError(t, engine.SortRows(r.Rows, engine.ColDiamonds, true))

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, r.Rows, Options{}))
	lines := strings.Split(buf.String(), "\r\n")
	assert.True(t, strings.HasPrefix(lines[1], "2024/03/06,"))
}

// ============================================================================
// EXCEL
// ============================================================================

func TestExcelSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, sampleReport(t), DefaultOptions()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{SheetSummary, SheetDetail, SheetRevenue, SheetEngagement, SheetViewers, SheetLive, SheetAdvanced, SheetCharts},
		f.GetSheetList())

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Live Stream Analytics Report", title)

	period, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2024/03/01 - 2024/03/06", period)

	rows, err := f.GetRows(SheetDetail)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 8)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Diamonds", rows[0][13])
	assert.Equal(t, "2024/03/01", rows[1][0])
	assert.Equal(t, "Total (6 days)", rows[7][0])

	diamonds, err := f.GetCellValue(SheetDetail, "N2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1000", diamonds)
}

func TestExcelWithoutCharts(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeCharts = false

	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, sampleReport(t), opts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), SheetCharts)
}

func TestExcelCustomTitle(t *testing.T) {
	opts := DefaultOptions()
	opts.Title = "March Streams"

	var buf bytes.Buffer
	require.NoError(t, Excel(&buf, sampleReport(t), opts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "March Streams", title)
}

// ============================================================================
// PDF AND JSON
// ============================================================================

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sampleReport(t), DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFSectionSubset(t *testing.T) {
	full, minimal := bytes.Buffer{}, bytes.Buffer{}
	r := sampleReport(t)

	require.NoError(t, PDF(&full, r, DefaultOptions()))
	require.NoError(t, PDF(&minimal, r, Options{Sections: []Section{SectionKPIs}}))

	assert.True(t, bytes.HasPrefix(minimal.Bytes(), []byte("%PDF")))
	assert.Less(t, minimal.Len(), full.Len())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport(t), false))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "kpis")
	assert.Contains(t, decoded, "rows")
	assert.NotContains(t, decoded, "Dataset")
}

// ============================================================================
// WRITE FILE
// ============================================================================

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.InfoLevel)

	for _, f := range Formats() {
		path := filepath.Join(dir, "report."+string(f))
		require.NoError(t, WriteFile(path, f, sampleReport(t), DefaultOptions(), zap.New(core)))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Equal(t, 4, logs.FilterMessage("report exported").Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestWriteFileFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	core, logs := observer.New(zapcore.InfoLevel)

	err := WriteFile(path, FormatPDF, &engine.Report{}, DefaultOptions(), zap.New(core))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, 1, logs.FilterMessage("export failed").Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileKeepsExistingFileOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := WriteFile(path, Format("docx"), sampleReport(t), DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

// ============================================================================
// HELPERS
// ============================================================================

func TestHexRGB(t *testing.T) {
	assert.Equal(t, rgb{255, 0, 80}, hexRGB("#FF0050"))
	assert.Equal(t, rgb{0, 242, 234}, hexRGB("00F2EA"))
	assert.Equal(t, rgb{128, 128, 128}, hexRGB("red"))
}

func TestLabelIndexes(t *testing.T) {
	assert.Nil(t, labelIndexes(0))
	assert.Equal(t, []int{0}, labelIndexes(1))
	assert.Equal(t, []int{0, 1}, labelIndexes(2))
	assert.Equal(t, []int{0, 5, 9}, labelIndexes(10))
}
