package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/schema"
)

// ============================================================================
// CSV INGEST — One uploaded file to one FileResult
// ============================================================================
// Consumer reads the file from wherever it lives (disk, HTTP upload).
// ParseFile classifies it by its header row and parses the data rows with
// the matching record parser. Any failure is recorded on the result instead
// of being returned, so one bad file never stops a batch.
// ============================================================================

// Sentinel errors recorded on FileResult.Err.
var (
	ErrMalformedCSV = errors.New("malformed CSV")
	ErrNoData       = errors.New("file contains no data")
	ErrUnknownType  = errors.New("could not determine file type")
)

// FileResult is the outcome of parsing one file.
type FileResult struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Kind       schema.RecordKind         `json:"kind"`
	Stats      ParseStats                `json:"stats"`
	Engagement []engine.EngagementRecord `json:"-"`
	Revenue    []engine.RevenueRecord    `json:"-"`
	Activity   []engine.ActivityRecord   `json:"-"`
	Viewer     []engine.ViewerRecord     `json:"-"`
	Err        error                     `json:"-"`
	Error      string                    `json:"error,omitempty"`
}

// OK reports whether the file parsed into a known kind.
func (r FileResult) OK() bool {
	return r.Err == nil && r.Kind.Known()
}

func (r *FileResult) fail(err error) FileResult {
	r.Err = err
	r.Error = err.Error()
	return *r
}

// ReadRows reads a whole CSV document. Blank lines are skipped and a leading
// UTF-8 byte order mark is dropped. Rows may have differing widths.
func ReadRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrMalformedCSV)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseFile reads, classifies and parses one CSV file.
func ParseFile(name string, r io.Reader, now func() time.Time) FileResult {
	res := FileResult{ID: uuid.NewString(), Name: name, Kind: schema.KindUnknown}

	data, err := io.ReadAll(r)
	if err != nil {
		return res.fail(fmt.Errorf("read %s: %w", name, err))
	}
	return parseBytes(res, data, now)
}

// ParseBytes is ParseFile over an in-memory document.
func ParseBytes(name string, data []byte, now func() time.Time) FileResult {
	return parseBytes(FileResult{ID: uuid.NewString(), Name: name, Kind: schema.KindUnknown}, data, now)
}

func parseBytes(res FileResult, data []byte, now func() time.Time) FileResult {
	rows, err := ReadRows(data)
	if err != nil {
		return res.fail(err)
	}
	if len(rows) < 2 {
		return res.fail(ErrNoData)
	}

	headers, body := rows[0], rows[1:]
	res.Kind = schema.DetectKind(headers)

	switch res.Kind {
	case schema.KindEngagement:
		res.Engagement, res.Stats = ParseEngagement(headers, body, now)
	case schema.KindRevenue:
		res.Revenue, res.Stats = ParseRevenue(headers, body, now)
	case schema.KindActivity:
		res.Activity, res.Stats = ParseActivity(headers, body, now)
	case schema.KindViewer:
		res.Viewer, res.Stats = ParseViewer(headers, body, now)
	default:
		res.Stats = ParseStats{Rows: len(body)}
		return res.fail(fmt.Errorf("%w: headers %q", ErrUnknownType, strings.Join(headers, ",")))
	}
	return res
}
