// Package server exposes the analysis pipeline over HTTP.
//
// Endpoints:
//   - POST   /batches                        upload CSV files (multipart field "files")
//   - GET    /batches                        list batches
//   - GET    /batches/{id}                   file results of one batch
//   - DELETE /batches/{id}                   drop a batch
//   - DELETE /batches/{id}/files/{fileID}    drop one file and recompute
//   - GET    /batches/{id}/report            full report
//   - GET    /batches/{id}/rows              merged rows, ?sort=column&order=desc
//   - GET    /batches/{id}/charts/{metric}   one chart series
//   - GET    /batches/{id}/export/{format}   csv, xlsx, pdf or json download
//   - GET    /health                         liveness
//
// Report, rows and export accept ?from=&to= (YYYY-MM-DD or YYYY/MM/DD).
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/export"
	"github.com/spektr-org/livepulse/ingest"
)

// Options configures a Handler.
type Options struct {
	MaxUploadBytes int64
	Concurrency    int // files parsed at once per upload; 0 means no cap
	Periods        int
	Style          engine.ChartStyle
	Export         export.Options
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxUploadBytes: 32 << 20,
		Concurrency:    4,
		Periods:        2,
		Style:          engine.DefaultChartStyle(),
		Export:         export.DefaultOptions(),
	}
}

// Handler serves the batch API.
type Handler struct {
	Store *Store
	Log   *zap.Logger
	opts  Options
	now   func() time.Time
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(store *Store, opts Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}
	return &Handler{Store: store, Log: log, opts: opts, now: time.Now}
}

// ============================================================================
// VIEWS
// ============================================================================

type fileView struct {
	ingest.FileResult
	Problems []string `json:"problems,omitempty"`
}

type batchView struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Records   recordView `json:"records"`
	Files     []fileView `json:"files"`
}

type recordView struct {
	Engagement int `json:"engagement"`
	Revenue    int `json:"revenue"`
	Activity   int `json:"activity"`
	Viewer     int `json:"viewer"`
}

func fileViews(results []ingest.FileResult) []fileView {
	out := make([]fileView, len(results))
	for i, r := range results {
		out[i] = fileView{FileResult: r, Problems: ingest.Validate(r)}
	}
	return out
}

func newBatchView(b Batch) batchView {
	v := batchView{
		ID:        b.ID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Records: recordView{
			Engagement: len(b.Dataset.Engagement),
			Revenue:    len(b.Dataset.Revenue),
			Activity:   len(b.Dataset.Activity),
			Viewer:     len(b.Dataset.Viewer),
		},
		Files: fileViews(b.Files),
	}
	if start, end, ok := engine.DateRange(b.Dataset); ok {
		v.StartDate, v.EndDate = &start, &end
	}
	return v
}

// ============================================================================
// BATCHES
// ============================================================================

// Upload parses the uploaded files into a new batch.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `no files in form field "files"`)
		return
	}

	sources := make([]ingest.Source, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		sources = append(sources, ingest.Source{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	results := ingest.ParseBatch(r.Context(), sources,
		ingest.WithLogger(h.Log),
		ingest.WithNow(h.now),
		ingest.WithConcurrency(h.opts.Concurrency))

	usable := 0
	for _, res := range results {
		if res.OK() {
			usable++
		}
	}
	if usable == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "no usable files",
			"files": fileViews(results),
		})
		return
	}

	b := h.Store.Create(results)
	h.Log.Info("batch created",
		zap.String("batch", b.ID),
		zap.Int("files", len(results)),
		zap.Int("usable", usable))
	writeJSON(w, http.StatusCreated, newBatchView(b))
}

// List returns every batch, newest first.
func (h *Handler) List(w http.ResponseWriter, _ *http.Request) {
	batches := h.Store.List()
	out := make([]batchView, len(batches))
	for i, b := range batches {
		out[i] = newBatchView(b)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one batch.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchView(b))
}

// Delete drops a batch.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.Delete(id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Log.Info("batch deleted", zap.String("batch", id))
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFile drops one file from a batch and returns the recomputed batch.
func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	id, fileID := chi.URLParam(r, "id"), chi.URLParam(r, "fileID")
	b, err := h.Store.RemoveFile(id, fileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Log.Info("file removed", zap.String("batch", id), zap.String("file", fileID))
	writeJSON(w, http.StatusOK, newBatchView(b))
}

// ============================================================================
// ANALYSIS
// ============================================================================

// Report returns the full analysis of a batch.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyze(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Rows returns the merged rows of a batch.
func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyze(r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": engine.RowColumns(),
		"rows":    report.Rows,
	})
}

// Chart returns the series of one metric.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	chart, err := engine.BuildChart(engine.FilterRange(b.Dataset, start, end), chi.URLParam(r, "metric"), h.opts.Style)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// Export streams a report document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	report, err := h.analyze(r, format == export.FormatExcel || format == export.FormatPDF)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, report, h.opts.Export); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(report, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("export response interrupted", zap.String("format", string(format)), zap.Error(err))
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyze runs the engine over the batch named in the URL, honouring the
// sort, order, from and to query parameters.
func (h *Handler) analyze(r *http.Request, charts bool) (*engine.Report, error) {
	b, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	start, end, err := dateRange(r)
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	opts := []engine.Option{
		engine.WithPeriods(h.opts.Periods),
		engine.WithDateRange(start, end),
		engine.WithSort(q.Get("sort"), strings.EqualFold(q.Get("order"), "desc")),
		engine.WithClock(h.now),
	}
	if charts {
		opts = append(opts, engine.WithChartStyle(h.opts.Style))
	} else {
		opts = append(opts, engine.WithoutCharts())
	}
	return engine.Analyze(b.Dataset, opts...)
}

// errBadQuery marks an unusable query parameter.
var errBadQuery = errors.New("invalid query parameter")

var queryDateLayouts = []string{"2006-01-02", engine.DisplayLayout}

func dateRange(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	if start, err = queryDate(q.Get("from")); err != nil {
		return start, end, fmt.Errorf("%w: from: %v", errBadQuery, err)
	}
	if end, err = queryDate(q.Get("to")); err != nil {
		return start, end, fmt.Errorf("%w: to: %v", errBadQuery, err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("%w: to is before from", errBadQuery)
	}
	return start, end, nil
}

func queryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range queryDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", s)
}

// ============================================================================
// ERRORS
// ============================================================================

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBatchNotFound),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, engine.ErrUnknownMetric):
		return http.StatusNotFound
	case errors.Is(err, errBadQuery),
		errors.Is(err, engine.ErrUnknownColumn),
		errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	h.Log.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	writeError(w, status, err.Error())
}
