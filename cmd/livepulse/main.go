package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/export"
	"github.com/spektr-org/livepulse/ingest"
	"github.com/spektr-org/livepulse/internal/config"
	"github.com/spektr-org/livepulse/internal/logging"
	"github.com/spektr-org/livepulse/server"
)

// ============================================================================
// LIVEPULSE CLI — Live-stream analytics from exported CSV files
// ============================================================================

const version = "0.3.0"

const usageText = `LivePulse — live-stream analytics from exported CSV files

Usage:
  livepulse [flags] engagement.csv revenue.csv activity.csv viewers.csv
  livepulse --format text *.csv
  livepulse --export xlsx --out report.xlsx *.csv
  livepulse --serve --addr :8080

Flags:
`

const usageFooter = `
Environment:
  LIVEPULSE_*       Any config key, e.g. LIVEPULSE_SERVER_ADDR, LIVEPULSE_ANALYSIS_PERIODS

Formats:
  json      Full report as JSON (default)
  pretty    Pretty-printed JSON
  text      Human-readable summary only
  csv       Merged daily rows as CSV (ready for Sheets/Excel)

Exports:
  csv, xlsx, pdf, json   Written atomically to --out, or to export.dir
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags holds the flags that are not configuration keys.
type cliFlags struct {
	configPath string
	format     string
	exportAs   string
	outFile    string
	sortBy     string
	desc       bool
	from       string
	to         string
	serve      bool
	version    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// ── Flags ─────────────────────────────────────────────────────────────
	var f cliFlags
	fs := pflag.NewFlagSet("livepulse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to YAML config file")
	fs.StringVarP(&f.format, "format", "f", "json", "Output format: json, pretty, text, csv")
	fs.StringVarP(&f.exportAs, "export", "e", "", "Export document: csv, xlsx, pdf, json")
	fs.StringVarP(&f.outFile, "out", "o", "", "Write the export (or the output) to this file")
	fs.StringVar(&f.sortBy, "sort", "", "Sort merged rows by column (e.g. diamonds, likes, date)")
	fs.BoolVar(&f.desc, "desc", false, "Sort descending")
	fs.StringVar(&f.from, "from", "", "First day to include (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "Last day to include (YYYY-MM-DD)")
	fs.BoolVar(&f.serve, "serve", false, "Start the HTTP API instead of analyzing files")
	fs.BoolVarP(&f.version, "version", "v", false, "Print version and exit")
	config.RegisterFlags(fs)

	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
		fmt.Fprint(stderr, usageFooter)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "livepulse %s\n", version)
		return 0
	}

	// ── Config and logging ────────────────────────────────────────────────
	cfg, err := config.NewLoader(f.configPath, fs).Load()
	if err != nil {
		return fail(stderr, "%v", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fail(stderr, "%v", err)
	}
	defer func() { _ = log.Sync() }()

	if f.serve {
		if err := serve(ctx, cfg, log); err != nil {
			log.Error("server stopped", zap.Error(err))
			return 1
		}
		return 0
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one CSV file is required")
		fs.Usage()
		return 2
	}

	if err := analyze(ctx, f, fs.Args(), cfg, log, stdout); err != nil {
		return fail(stderr, "%v", err)
	}
	return 0
}

// ============================================================================
// ANALYZE MODE
// ============================================================================

func analyze(ctx context.Context, f cliFlags, paths []string, cfg *config.Config, log *zap.Logger, stdout io.Writer) error {
	start, err := flagDate("from", f.from)
	if err != nil {
		return err
	}
	end, err := flagDate("to", f.to)
	if err != nil {
		return err
	}

	var exportFormat export.Format
	if f.exportAs != "" {
		if exportFormat, err = export.ParseFormat(f.exportAs); err != nil {
			return err
		}
	}

	// ── Parse files ───────────────────────────────────────────────────────
	sources := make([]ingest.Source, len(paths))
	for i, p := range paths {
		sources[i] = ingest.FileSource(p)
	}
	results := ingest.ParseBatch(ctx, sources,
		ingest.WithLogger(log),
		ingest.WithConcurrency(runtime.NumCPU()))

	for _, r := range results {
		if !r.OK() {
			continue
		}
		if problems := ingest.Validate(r); len(problems) > 0 {
			log.Warn("file has problems", zap.String("file", r.Name), zap.Strings("problems", problems))
		}
	}

	ds := ingest.BuildDataset(results)
	if ds.IsEmpty() {
		return errors.New("no usable data in the given files")
	}

	// ── Analyze ───────────────────────────────────────────────────────────
	report, err := engine.Analyze(ds,
		engine.WithPeriods(cfg.Analysis.Periods),
		engine.WithChartStyle(cfg.ChartStyle()),
		engine.WithSort(f.sortBy, f.desc),
		engine.WithDateRange(start, end))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	log.Info("report ready",
		zap.Int("days", len(report.Rows)),
		zap.Int("active_days", report.KPIs.ActiveDays),
		zap.Int("score", report.Performance.Score))

	// ── Export document ───────────────────────────────────────────────────
	if f.exportAs != "" {
		path := f.outFile
		if path == "" {
			path = filepath.Join(cfg.Export.Dir, export.Filename(report, exportFormat))
		}
		opts := export.DefaultOptions()
		opts.CSVBOM = cfg.Export.CSVBOM
		opts.Title = cfg.Export.Title
		opts.Style = cfg.ChartStyle()
		return export.WriteFile(path, exportFormat, report, opts, log)
	}

	// ── Render output ─────────────────────────────────────────────────────
	w := stdout
	if f.outFile != "" {
		file, err := os.Create(f.outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}
	if err := writeReport(w, report, f.format); err != nil {
		return err
	}
	if f.outFile != "" {
		log.Info("output written", zap.String("path", f.outFile), zap.String("format", f.format))
	}
	return nil
}

func writeReport(w io.Writer, report *engine.Report, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, report.Summary)
		return err
	case "csv":
		return export.CSV(w, report.Rows, export.Options{})
	case "json", "pretty":
		enc := json.NewEncoder(w)
		if format == "pretty" {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(report)
	}
	return fmt.Errorf("unknown output format %q (want json, pretty, text or csv)", format)
}

func flagDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", engine.DisplayLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: %q is not a date", name, s)
}

// ============================================================================
// SERVE MODE
// ============================================================================

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	exportOpts := export.DefaultOptions()
	exportOpts.CSVBOM = cfg.Export.CSVBOM
	exportOpts.Title = cfg.Export.Title
	exportOpts.Style = cfg.ChartStyle()

	h := server.NewHandler(server.NewStore(), server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Concurrency:    runtime.NumCPU(),
		Periods:        cfg.Analysis.Periods,
		Style:          cfg.ChartStyle(),
		Export:         exportOpts,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Routes(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ============================================================================
// HELPERS
// ============================================================================

func fail(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
	return 1
}
