// Package livepulse turns live-stream analytics CSV exports into a report.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/livepulse/engine"
//	    "github.com/spektr-org/livepulse/export"
//	    "github.com/spektr-org/livepulse/ingest"
//	)
//
//	results := ingest.ParseBatch(ctx, []ingest.Source{
//	    ingest.FileSource("engagement.csv"),
//	    ingest.FileSource("revenue.csv"),
//	})
//	report, err := engine.Analyze(ingest.BuildDataset(results),
//	    engine.WithPeriods(2),
//	    engine.WithSort(engine.ColDiamonds, true),
//	)
//	err = export.WriteFile("report.pdf", export.FormatPDF, report, export.DefaultOptions(), log)
//
// Each file is classified from its header row (engagement, revenue,
// activity or viewer), parsed leniently into typed daily records, and
// merged into one Dataset. The engine derives KPIs, insights, trends,
// a performance score and chart series from it; export renders the report
// as CSV, Excel, PDF or JSON. The server package serves the same pipeline
// over HTTP, and cmd/livepulse wraps it as a CLI.
//
// All computation is local. Nothing is persisted beyond the files a caller
// asks to export.
package livepulse
