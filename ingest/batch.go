package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/schema"
)

// ============================================================================
// BATCH — Concurrent parsing of an upload batch
// ============================================================================
// Every file is parsed by its own task into its own result slot. Tasks share
// no mutable state and never return an error to the group, so a failed file
// cannot cancel its siblings. Results are read only after Wait returns.
// ============================================================================

// Source is one file of a batch.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource reads a file from disk.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesSource serves an in-memory document.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// BatchOption configures ParseBatch.
type BatchOption func(*batchConfig)

type batchConfig struct {
	log   *zap.Logger
	now   func() time.Time
	limit int
}

// WithLogger logs per-file outcomes.
func WithLogger(log *zap.Logger) BatchOption {
	return func(c *batchConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithNow sets the clock used for fallback dates.
func WithNow(now func() time.Time) BatchOption {
	return func(c *batchConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithConcurrency caps the number of files parsed at once. 0 means no cap.
func WithConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		c.limit = n
	}
}

// ParseBatch parses every source concurrently and returns one result per
// source, in input order. A context cancelled before a task starts marks
// that file as failed; tasks already running finish.
func ParseBatch(ctx context.Context, sources []Source, opts ...BatchOption) []FileResult {
	cfg := batchConfig{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]FileResult, len(sources))
	var g errgroup.Group
	if cfg.limit > 0 {
		g.SetLimit(cfg.limit)
	}

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = parseSource(ctx, src, cfg.now)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			cfg.log.Warn("file rejected",
				zap.String("file", r.Name),
				zap.String("kind", string(r.Kind)),
				zap.Error(r.Err))
			continue
		}
		cfg.log.Info("file parsed",
			zap.String("file", r.Name),
			zap.String("kind", string(r.Kind)),
			zap.Int("rows", r.Stats.Rows),
			zap.Int("fallback_dates", r.Stats.FallbackDates))
	}
	return results
}

func parseSource(ctx context.Context, src Source, now func() time.Time) FileResult {
	if err := ctx.Err(); err != nil {
		res := FileResult{ID: uuid.NewString(), Name: src.Name, Kind: schema.KindUnknown}
		return res.fail(fmt.Errorf("parse %s: %w", src.Name, err))
	}
	rc, err := src.Open()
	if err != nil {
		res := FileResult{ID: uuid.NewString(), Name: src.Name, Kind: schema.KindUnknown}
		return res.fail(fmt.Errorf("open %s: %w", src.Name, err))
	}
	defer rc.Close()
	return ParseFile(src.Name, rc, now)
}

// BuildDataset concatenates the records of every successful result in
// result order. Failed and unknown files are skipped.
func BuildDataset(results []FileResult) engine.Dataset {
	var ds engine.Dataset
	for _, r := range results {
		if !r.OK() {
			continue
		}
		ds.Engagement = append(ds.Engagement, r.Engagement...)
		ds.Revenue = append(ds.Revenue, r.Revenue...)
		ds.Activity = append(ds.Activity, r.Activity...)
		ds.Viewer = append(ds.Viewer, r.Viewer...)
	}
	return ds
}

// Validate lists human-readable problems with a parsed file. An empty list
// means the file is clean.
func Validate(r FileResult) []string {
	if r.Err != nil {
		return []string{r.Error}
	}
	var problems []string
	if r.Stats.Rows == 0 {
		problems = append(problems, "data is empty")
	}
	for _, f := range r.Stats.MissingFields {
		problems = append(problems, fmt.Sprintf("required field %q not found", f))
	}
	if r.Stats.FallbackDates > 0 {
		problems = append(problems, fmt.Sprintf("%d rows have invalid dates", r.Stats.FallbackDates))
	}
	return problems
}
