// Package export serializes a result set to spreadsheet formats. Export
// always succeeds on a result set containing failed rows; failures are
// marked in the status column, never dropped.
package export

import (
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultHeaders = []string{
	"search_query", "prompt", "mention_found", "position",
	"total_entities", "context", "status", "error", "timestamp",
}

// XLSX renders the result set as an Excel workbook and returns its bytes
func XLSX(rs *model.ResultSet, summary model.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range resultHeaders {
		if err := setCell(f, resultsSheet, col+1, 1, h); err != nil {
			return nil, err
		}
	}

	for i, r := range rs.Results {
		row := i + 2
		values := []interface{}{
			r.Query.SearchQuery,
			r.Query.Prompt,
			r.Found,
			positionCell(r),
			r.TotalEntities,
			r.Context,
			string(r.Status),
			r.Err,
			r.Timestamp.Format(time.RFC3339),
		}
		for col, v := range values {
			if err := setCell(f, resultsSheet, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	if err := writeSummarySheet(f, rs, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders the workbook and writes it to path
func WriteXLSX(path string, rs *model.ResultSet, summary model.Summary) error {
	data, err := XLSX(rs, summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rs *model.ResultSet, summary model.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][2]interface{}{
		{"target", rs.Target},
		{"model", rs.Model},
		{"total_queries", summary.TotalQueries},
		{"scored", summary.Scored},
		{"failed", summary.Failed},
		{"mentioned", summary.Mentioned},
		{"mention_rate", summary.MentionRate},
		{"average_position", floatCell(summary.AveragePosition)},
		{"median_position", floatCell(summary.MedianPosition)},
		{"best_position", intCell(summary.BestPosition)},
		{"worst_position", intCell(summary.WorstPosition)},
	}

	for i, kv := range rows {
		if err := setCell(f, summarySheet, 1, i+1, kv[0]); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, i+1, kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

// positionCell renders a missing position as an empty cell, never zero
func positionCell(r model.PositionResult) interface{} {
	if r.Position == nil {
		return ""
	}
	return *r.Position
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
