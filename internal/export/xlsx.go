// Package export builds XLSX workbooks from parse results, either from
// an in-memory batch summary or from stored runs.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/store"
	"github.com/jonathan/resume-parser/internal/types"
)

const (
	filesSheet  = "Files"
	fieldsSheet = "Fields"
	runsSheet   = "Runs"

	timeLayout = "2006-01-02 15:04:05"
)

// SummaryWorkbook renders a batch summary as a workbook: one Files sheet
// with a row per input file and one Fields sheet with a row per
// extracted field.
func SummaryWorkbook(summary *pipeline.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", filesSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet setup: %w", err)
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet setup: %w", err)
	}

	setHeaders(f, filesSheet, []string{"File", "Status", "Fields Resolved", "Run ID", "Elapsed", "Error"})
	row := 2
	for _, r := range summary.Results {
		write := cellWriter(f, filesSheet, row)
		status := "ok"
		if !r.Succeeded() {
			status = "failed"
		}
		write(1, r.Path)
		write(2, status)
		if r.Data != nil {
			write(3, fmt.Sprintf("%d/%d", resolvedFields(r.Data), len(r.Data.Fields())))
		}
		if r.RunID != uuid.Nil {
			write(4, r.RunID.String())
		}
		write(5, r.Elapsed.Round(time.Millisecond).String())
		write(6, r.Error)
		row++
	}

	setHeaders(f, fieldsSheet, []string{"File", "Field", "Value", "Strategy", "Attempts"})
	row = 2
	for _, r := range summary.Results {
		if r.Data == nil {
			continue
		}
		for _, field := range r.Data.Fields() {
			write := cellWriter(f, fieldsSheet, row)
			value, _ := r.Data.Value(field)
			write(1, r.Path)
			write(2, field.String())
			write(3, valueText(value))
			if winner, ok := r.Data.Winner(field); ok {
				write(4, winner.String())
			}
			write(5, len(r.Data.Trail(field)))
			row++
		}
	}

	widenColumns(f)
	return f, nil
}

// RunsWorkbook renders stored runs as a workbook: one Runs sheet and one
// Fields sheet with every field result, keyed by run ID.
func RunsWorkbook(runs []store.Run, results map[uuid.UUID][]store.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", runsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet setup: %w", err)
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet setup: %w", err)
	}

	setHeaders(f, runsSheet, []string{"Run ID", "Source", "Format", "Chars", "Status", "Created", "Completed"})
	row := 2
	for _, run := range runs {
		write := cellWriter(f, runsSheet, row)
		write(1, run.ID.String())
		write(2, run.Source)
		write(3, run.Format)
		write(4, run.TextChars)
		write(5, run.Status)
		write(6, run.CreatedAt.Format(timeLayout))
		if run.CompletedAt != nil {
			write(7, run.CompletedAt.Format(timeLayout))
		}
		row++
	}

	setHeaders(f, fieldsSheet, []string{"Run ID", "Source", "Field", "Value", "Resolved", "Strategy", "Attempts"})
	row = 2
	for _, run := range runs {
		for _, res := range results[run.ID] {
			write := cellWriter(f, fieldsSheet, row)
			write(1, run.ID.String())
			write(2, run.Source)
			write(3, res.Field.String())
			write(4, storedText(res.Value))
			write(5, res.Resolved)
			write(6, res.Strategy)
			write(7, len(res.Attempts))
			row++
		}
	}

	widenColumns(f)
	return f, nil
}

func setHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func widenColumns(f *excelize.File) {
	for _, sheet := range f.GetSheetList() {
		_ = f.SetColWidth(sheet, "A", "B", 38)
		_ = f.SetColWidth(sheet, "C", "D", 28)
		_ = f.SetColWidth(sheet, "E", "G", 14)
	}
}

// valueText flattens a field value to one cell.
func valueText(v types.FieldValue) string {
	switch {
	case v.Kind() == types.ValueList:
		return strings.Join(v.Items(), "; ")
	case v.IsEmpty():
		return ""
	default:
		return v.Text()
	}
}

// storedText flattens a JSONB-decoded value to one cell. Lists come back
// from the store as []any.
func storedText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func resolvedFields(data *types.ResumeData) int {
	n := 0
	for _, f := range data.Fields() {
		if data.Resolved(f) {
			n++
		}
	}
	return n
}
