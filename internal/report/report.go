// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report builds a spreadsheet view of the result streams.
// Implements: prd006-reporting (R1-R2);
//
//	docs/ARCHITECTURE § Reporting.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/corpus-harvest/internal/sink"
	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// CombinedFile is the workbook filename written under the output directory.
const CombinedFile = "documents_combined.xlsx"

const (
	successSheet = "Success"
	failureSheet = "Failure"
)

// Builder writes XLSX workbooks combining the result streams.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a Builder. A nil logger falls back to slog.Default().
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Build reads both result streams and writes a workbook with one sheet per
// stream to outPath. A missing stream file yields an empty sheet, not an
// error (R1.2): reporting on a run with no failures is routine.
func (b *Builder) Build(successPath, failurePath, outPath string) error {
	start := time.Now()

	successes, err := sink.ReadSuccesses(successPath)
	if err != nil {
		return fmt.Errorf("reading success stream: %w", err)
	}
	failures, err := sink.ReadFailures(failurePath)
	if err != nil {
		return fmt.Errorf("reading failure stream: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", successSheet); err != nil {
		return fmt.Errorf("naming success sheet: %w", err)
	}
	if _, err := f.NewSheet(failureSheet); err != nil {
		return fmt.Errorf("adding failure sheet: %w", err)
	}

	writeSuccessSheet(f, successes)
	writeFailureSheet(f, failures)

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	b.log.Info("report written",
		"path", outPath,
		"success_rows", len(successes),
		"failure_rows", len(failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func writeSuccessSheet(f *excelize.File, recs []types.SuccessRecord) {
	headers := []string{
		"Authors",
		"Title",
		"Abstract",
		"Publication Date",
		"Source Path",
		"Journal",
		"Year",
		"Month Range",
		"Period Start",
		"Period End",
	}
	writeHeader(f, successSheet, headers)

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(successSheet, cell, v)
		}

		write(1, strings.Join(r.Authors, "; "))
		write(2, r.Title)
		abstract := ""
		if r.Abstract != nil {
			abstract = truncate(*r.Abstract, 300)
		}
		write(3, abstract)
		write(4, r.PublicationDate)
		write(5, r.SourcePath)
		write(6, r.Journal)
		write(7, r.Year)
		write(8, r.MonthRange)
		write(9, deref(r.PeriodStart))
		write(10, deref(r.PeriodEnd))

		row++
	}

	_ = f.SetColWidth(successSheet, "A", "A", 36) // authors
	_ = f.SetColWidth(successSheet, "B", "B", 48) // title
	_ = f.SetColWidth(successSheet, "C", "C", 60) // abstract
	_ = f.SetColWidth(successSheet, "D", "D", 16) // date
	_ = f.SetColWidth(successSheet, "E", "E", 60) // path
	_ = f.SetColWidth(successSheet, "F", "F", 28) // journal
	_ = f.SetColWidth(successSheet, "G", "H", 12) // year, month range
	_ = f.SetColWidth(successSheet, "I", "J", 14) // period bounds
}

func writeFailureSheet(f *excelize.File, recs []types.FailureRecord) {
	headers := []string{
		"Source Path",
		"Journal",
		"Year",
		"Month Range",
		"Error Kind",
		"Error Detail",
		"Timestamp",
	}
	writeHeader(f, failureSheet, headers)

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(failureSheet, cell, v)
		}

		write(1, r.SourcePath)
		write(2, r.Journal)
		write(3, r.Year)
		write(4, r.MonthRange)
		write(5, string(r.ErrorKind))
		write(6, truncate(r.ErrorDetail, 200))
		write(7, r.Timestamp)

		row++
	}

	_ = f.SetColWidth(failureSheet, "A", "A", 60) // path
	_ = f.SetColWidth(failureSheet, "B", "B", 28) // journal
	_ = f.SetColWidth(failureSheet, "C", "D", 12) // year, month range
	_ = f.SetColWidth(failureSheet, "E", "E", 22) // kind
	_ = f.SetColWidth(failureSheet, "F", "F", 60) // detail
	_ = f.SetColWidth(failureSheet, "G", "G", 22) // timestamp
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate caps s at n runes for readable cells.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
