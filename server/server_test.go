package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ============================================================================
// SERVER TESTS
// ============================================================================
// Tests cover:
//   1. Multipart upload into a stored batch
//   2. Error mapping to 400 / 404 / 413 / 422
//   3. Report, rows, charts and exports over a stored batch
//   4. Removing files recomputes the dataset
// ============================================================================

// --- Test Fixtures ---

var fixedNow = time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)

const engagementCSV = "Date,Gift givers,New followers,Commenters,Likes,Shares\n" +
	"2024-03-01,2,3,4,100,5\n" +
	"2024-03-02,1,1,2,300,1\n"

const revenueCSV = "Date,Diamonds\n2024-03-01,1000\n2024-03-02,3000\n"

type upload struct {
	name string
	body string
}

func multipartBody(t *testing.T, field string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestServer(t *testing.T, opts Options) (*Handler, http.Handler) {
	t.Helper()
	store := NewStore()
	store.now = func() time.Time { return fixedNow }
	h := NewHandler(store, opts, zap.NewNop())
	h.now = store.now
	return h, Routes(h)
}

func do(t *testing.T, srv http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

// createBatch uploads the engagement and revenue fixtures and returns the
// created batch.
func createBatch(t *testing.T, srv http.Handler) batchView {
	t.Helper()
	body, ct := multipartBody(t, "files",
		upload{"engagement.csv", engagementCSV},
		upload{"revenue.csv", revenueCSV})
	rec := do(t, srv, http.MethodPost, "/batches", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var v batchView
	decode(t, rec, &v)
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, rec, &body)
	msg, _ := body["error"].(string)
	return msg
}

// ============================================================================
// HEALTH AND UPLOAD
// ============================================================================

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	rec := do(t, srv, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload(t *testing.T) {
	h, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, fixedNow, v.CreatedAt)
	require.Len(t, v.Files, 2)
	assert.Equal(t, "engagement.csv", v.Files[0].Name)
	assert.Equal(t, "revenue", string(v.Files[1].Kind))
	assert.Equal(t, recordView{Engagement: 2, Revenue: 2}, v.Records)
	require.NotNil(t, v.StartDate)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *v.StartDate)

	stored, err := h.Store.Get(v.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Dataset.Engagement, 2)
}

func TestUploadKeepsFailedFilesInBatch(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	body, ct := multipartBody(t, "files",
		upload{"revenue.csv", revenueCSV},
		upload{"mystery.csv", "Alpha,Beta\n1,2\n"})

	rec := do(t, srv, http.MethodPost, "/batches", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code)

	var v batchView
	decode(t, rec, &v)
	require.Len(t, v.Files, 2)
	assert.Empty(t, v.Files[0].Error)
	assert.Contains(t, v.Files[1].Error, "could not determine file type")
	assert.NotEmpty(t, v.Files[1].Problems)
	assert.Equal(t, 2, v.Records.Revenue)
}

func TestUploadRejectsUnusableBatch(t *testing.T) {
	h, srv := newTestServer(t, DefaultOptions())
	body, ct := multipartBody(t, "files", upload{"empty.csv", "Date,Diamonds\n"})

	rec := do(t, srv, http.MethodPost, "/batches", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no usable files", errorMessage(t, rec))
	assert.Empty(t, h.Store.List())
}

func TestUploadBadRequests(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())

	t.Run("wrong field", func(t *testing.T) {
		body, ct := multipartBody(t, "file", upload{"revenue.csv", revenueCSV})
		rec := do(t, srv, http.MethodPost, "/batches", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/batches", bytes.NewBufferString(revenueCSV), "text/csv")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadTooLarge(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxUploadBytes = 64
	_, srv := newTestServer(t, opts)

	body, ct := multipartBody(t, "files", upload{"engagement.csv", strings.Repeat(engagementCSV, 20)})
	rec := do(t, srv, http.MethodPost, "/batches", body, ct)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)
}

// ============================================================================
// BATCHES
// ============================================================================

func TestGetAndListBatches(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got batchView
	decode(t, rec, &got)
	assert.Equal(t, v.ID, got.ID)

	rec = do(t, srv, http.MethodGet, "/batches", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []batchView
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, v.ID, list[0].ID)
}

func TestUnknownBatch(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	for _, target := range []string{"/batches/nope", "/batches/nope/report", "/batches/nope/rows", "/batches/nope/export/csv"} {
		rec := do(t, srv, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "batch not found", errorMessage(t, rec), target)
	}
}

func TestDeleteBatch(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodDelete, "/batches/"+v.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/batches/"+v.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/batches/"+v.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFileRecomputes(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)
	revenueID := v.Files[1].ID

	rec := do(t, srv, http.MethodDelete, "/batches/"+v.ID+"/files/"+revenueID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got batchView
	decode(t, rec, &got)
	assert.Len(t, got.Files, 1)
	assert.Equal(t, recordView{Engagement: 2}, got.Records)

	rec = do(t, srv, http.MethodGet, "/batches/"+v.ID+"/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		KPIs struct {
			TotalDiamonds float64 `json:"totalDiamonds"`
			TotalLikes    float64 `json:"totalLikes"`
		} `json:"kpis"`
	}
	decode(t, rec, &report)
	assert.Zero(t, report.KPIs.TotalDiamonds)
	assert.Equal(t, 400.0, report.KPIs.TotalLikes)

	rec = do(t, srv, http.MethodDelete, "/batches/"+v.ID+"/files/"+revenueID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "file not found", errorMessage(t, rec))
}

// ============================================================================
// ANALYSIS
// ============================================================================

func TestReport(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]any
	decode(t, rec, &report)
	kpis := report["kpis"].(map[string]any)
	assert.Equal(t, 4000.0, kpis["totalDiamonds"])
	assert.Equal(t, 400.0, kpis["totalLikes"])
	assert.NotEmpty(t, report["charts"])
	assert.NotEmpty(t, report["summary"])
}

func TestReportDateRange(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/report?from=2024/03/02", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		KPIs struct {
			TotalDiamonds float64 `json:"totalDiamonds"`
		} `json:"kpis"`
	}
	decode(t, rec, &report)
	assert.Equal(t, 3000.0, report.KPIs.TotalDiamonds)

	for _, q := range []string{"?from=soon", "?to=2024-13-40", "?from=2024-03-02&to=2024-03-01"} {
		rec = do(t, srv, http.MethodGet, "/batches/"+v.ID+"/report"+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRows(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/rows?sort=diamonds&order=desc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Columns []struct {
			Key string `json:"key"`
		} `json:"columns"`
		Rows []struct {
			Date     string  `json:"date"`
			Diamonds float64 `json:"diamonds"`
			Likes    float64 `json:"likes"`
		} `json:"rows"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Columns, 14)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "2024/03/02", body.Rows[0].Date)
	assert.Equal(t, 3000.0, body.Rows[0].Diamonds)
	assert.Equal(t, 300.0, body.Rows[0].Likes)

	rec = do(t, srv, http.MethodGet, "/batches/"+v.ID+"/rows?sort=mood", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unknown column")
}

func TestChart(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/charts/diamonds", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chart struct {
		Metric string `json:"metric"`
		Series []struct {
			Data []struct {
				Label string  `json:"label"`
				Value float64 `json:"value"`
			} `json:"data"`
		} `json:"series"`
	}
	decode(t, rec, &chart)
	assert.Equal(t, "diamonds", chart.Metric)
	require.NotEmpty(t, chart.Series)
	require.Len(t, chart.Series[0].Data, 2)
	assert.Equal(t, 1000.0, chart.Series[0].Data[0].Value)

	rec = do(t, srv, http.MethodGet, "/batches/"+v.ID+"/charts/gifts", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// EXPORT
// ============================================================================

func TestExportCSV(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/export/csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="livepulse_20240301_20240302.csv"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "2024/03/02,1,1,2,300,1,0,0,0,0,0,0,0,3000")
}

func TestExportExcel(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/export/xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}

func TestExportPDF(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/export/pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportErrors(t *testing.T) {
	_, srv := newTestServer(t, DefaultOptions())
	v := createBatch(t, srv)

	rec := do(t, srv, http.MethodGet, "/batches/"+v.ID+"/export/docx", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unsupported export format")

	rec = do(t, srv, http.MethodGet, "/batches/"+v.ID+"/export/pdf?from=2025-01-01", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "nothing to export", errorMessage(t, rec))
}
