package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spektr-org/livepulse/engine"
)

// utf8BOM lets spreadsheet apps detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes one header line and one line per merged row, in the fixed
// merged-row column order. Values are raw numbers; durations stay in seconds.
func CSV(w io.Writer, rows []engine.MergedRow, opts Options) error {
	if opts.CSVBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("csv bom: %w", err)
		}
	}

	cols := engine.RowColumns()
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Key
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			if c.Key == engine.ColDate {
				record[i] = r.Date
				continue
			}
			v, _ := r.Value(c.Key)
			record[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv row %s: %w", r.Date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
