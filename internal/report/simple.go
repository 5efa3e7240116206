package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pubscan/pubscan/internal/model"
)

// SimpleWriter renders human-readable text reports for the terminal.
//
// Design decision: Plain text with ASCII formatting rather than ANSI
// colors because it works in all terminals and pipes cleanly to files
// and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose includes evidence excerpts in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes violation evidence excerpts in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as formatted text.
func (w *SimpleWriter) Write(report *model.SiteReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeRequiredPages(&sb, report)
	w.writeFindings(&sb, report)
	w.writeSuggestions(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     SITE COMPLIANCE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:        %s\n", report.Target)
	fmt.Fprintf(sb, "Scan Date:     %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Content Pages: %d\n", report.ContentPageCount)
	fmt.Fprintf(sb, "Score:         %d / 100 (grade %s)\n", report.Score, scoreGrade(report.Score))
	fmt.Fprintf(sb, "Summary:       %s\n", report.Summary)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRequiredPages(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString("Required Legal Pages\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, page := range report.RequiredPagesFound {
		fmt.Fprintf(sb, "  [x] %s\n", page)
	}
	for _, page := range report.RequiredPagesMissing {
		fmt.Fprintf(sb, "  [ ] %s  (MISSING)\n", page)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString("Page Findings\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(report.Findings) == 0 {
		sb.WriteString("  No page-level findings.\n\n")
		return
	}

	for _, finding := range report.Findings {
		fmt.Fprintf(sb, "  %s\n", finding.URL)
		for _, v := range finding.Violations {
			fmt.Fprintf(sb, "    - %s (confidence %.2f)\n", string(v.Kind), v.Confidence)
			if w.verbose && v.Excerpt != "" {
				fmt.Fprintf(sb, "      evidence: %s\n", truncateString(v.Excerpt, 100))
			}
		}
		for _, issue := range finding.QualityIssues {
			fmt.Fprintf(sb, "    - quality: %s\n", issue)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSuggestions(sb *strings.Builder, report *model.SiteReport) {
	sb.WriteString("Suggestions\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(report.Suggestions) == 0 {
		sb.WriteString("  None.\n")
		return
	}
	for i, suggestion := range report.Suggestions {
		fmt.Fprintf(sb, "  %2d. %s\n", i+1, suggestion)
	}
}
