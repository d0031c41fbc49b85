package engine

import "fmt"

// ============================================================================
// TABLE BUILDER — Produces TableData from merged rows
// ============================================================================
// Cells are display strings; durations render as "3h 25m". The summary holds
// column totals, except averages which hold the mean.
// ============================================================================

// BuildTable renders merged rows as a table in the fixed column order.
func BuildTable(title string, rows []MergedRow) *TableData {
	columns := RowColumns()
	if len(rows) == 0 {
		return &TableData{
			Title:   title,
			Columns: columns,
			Rows:    [][]string{},
		}
	}

	out := make([][]string, 0, len(rows))
	totals := make(map[string]float64, len(columns))
	for _, r := range rows {
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			if c.Key == ColDate {
				cells = append(cells, r.Date)
				continue
			}
			v, _ := r.Value(c.Key)
			totals[c.Key] += v
			cells = append(cells, FormatCell(c, v))
		}
		out = append(out, cells)
	}

	values := make(map[string]string, len(columns))
	for _, c := range columns {
		if c.Key == ColDate {
			continue
		}
		v := totals[c.Key]
		if isAverageColumn(c.Key) {
			v /= float64(len(rows))
		}
		values[c.Key] = FormatCell(c, v)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%d days)", len(rows)),
			Values: values,
		},
	}
}

// FormatCell renders a numeric value for display in the given column.
func FormatCell(c Column, v float64) string {
	switch c.Type {
	case "duration":
		return FormatHoursMinutes(v)
	case "currency", "number":
		if v == float64(int64(v)) {
			return FormatInt(int64(v))
		}
		return FormatNumber(v, 2)
	}
	return fmt.Sprintf("%v", v)
}

func isAverageColumn(key string) bool {
	switch key {
	case ColAvgViewTime, ColAvgConcurrent, ColMaxConcurrent:
		return true
	}
	return false
}
