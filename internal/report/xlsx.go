package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pubscan/pubscan/internal/model"
)

// Sheet names in the XLSX workbook.
const (
	sheetOverview    = "Overview"
	sheetFindings    = "Findings"
	sheetSuggestions = "Suggestions"
)

// XLSXWriter renders reports as an Excel workbook with one sheet per
// report section. The format exists for review teams that track sites
// in spreadsheets.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
// XLSX is a binary format, so the destination is normally a file.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report as an XLSX workbook.
func (w *XLSXWriter) Write(report *model.SiteReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // close of an in-memory workbook

	if err := w.writeOverview(f, report); err != nil {
		return 0, err
	}
	if err := w.writeFindings(f, report); err != nil {
		return 0, err
	}
	if err := w.writeSuggestions(f, report); err != nil {
		return 0, err
	}

	// Drop the default sheet created by NewFile.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

func (w *XLSXWriter) writeOverview(f *excelize.File, report *model.SiteReport) error {
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return err
	}

	rows := [][]any{
		{"Target", report.Target},
		{"Scan Date", report.ScannedAt.Format("2006-01-02 15:04:05 MST")},
		{"Score", report.Score},
		{"Grade", scoreGrade(report.Score)},
		{"Summary", report.Summary},
		{"Content Pages", report.ContentPageCount},
		{"Policy Violations", report.ViolationCount()},
		{"Duplicate Pages", report.DuplicatePageCount()},
		{"Required Pages Found", joinOrDash(report.RequiredPagesFound)},
		{"Required Pages Missing", joinOrDash(report.RequiredPagesMissing)},
		{"Homepage Issues", joinOrDash(report.HomepageIssues)},
	}
	return writeRows(f, sheetOverview, rows, 1)
}

func (w *XLSXWriter) writeFindings(f *excelize.File, report *model.SiteReport) error {
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return err
	}

	rows := [][]any{{"URL", "Violation", "Confidence", "Excerpt", "Quality Issues"}}
	for _, finding := range report.Findings {
		if len(finding.Violations) == 0 {
			rows = append(rows, []any{finding.URL, "", "", "", joinOrDash(finding.QualityIssues)})
			continue
		}
		for i, v := range finding.Violations {
			quality := ""
			if i == 0 {
				quality = joinOrDash(finding.QualityIssues)
			}
			rows = append(rows, []any{finding.URL, string(v.Kind), v.Confidence, v.Excerpt, quality})
		}
	}
	return writeRows(f, sheetFindings, rows, 1)
}

func (w *XLSXWriter) writeSuggestions(f *excelize.File, report *model.SiteReport) error {
	if _, err := f.NewSheet(sheetSuggestions); err != nil {
		return err
	}

	rows := [][]any{{"#", "Suggestion"}}
	for i, suggestion := range report.Suggestions {
		rows = append(rows, []any{i + 1, suggestion})
	}
	return writeRows(f, sheetSuggestions, rows, 1)
}

// writeRows writes rows starting at the given 1-based row index.
func writeRows(f *excelize.File, sheet string, rows [][]any, startRow int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}
	return nil
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += "; " + v
	}
	return out
}
