package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/pubscan/pubscan/internal/model"
)

// MarkdownWriter renders reports as GitHub-flavored Markdown for
// documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// generation: type-safe tables and lists, GitHub alert blocks, and
// mermaid chart support.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the full report in Markdown.
func (w *MarkdownWriter) Write(report *model.SiteReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScoreAlert(md, report)
	w.writeRequiredPages(md, report)
	w.writeViolationChart(md, report)
	w.writeFindings(md, report)
	w.writeSuggestions(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SiteReport) {
	md.H1("Site Compliance Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Scan Date", report.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Content Pages", strconv.Itoa(report.ContentPageCount)},
			{"Score", fmt.Sprintf("**%d / 100** (grade %s)", report.Score, scoreGrade(report.Score))},
			{"Summary", report.Summary},
		},
	})
	md.PlainText("")
}

// writeScoreAlert writes a GitHub alert block matched to the score band.
func (w *MarkdownWriter) writeScoreAlert(md *markdown.Markdown, report *model.SiteReport) {
	violations := report.ViolationCount()
	switch {
	case violations > 0 && report.Score < 50:
		md.Cautionf("%d policy violation(s) detected. This site is unlikely to pass a network review in its current state.", violations)
	case violations > 0:
		md.Warningf("%d policy violation(s) detected and should be addressed before applying to ad networks.", violations)
	case report.Score < 90:
		md.Importantf("No policy violations, but the site loses points for structural issues. See the suggestions below.")
	default:
		md.Tip("No policy violations detected. The site looks ready for review.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeRequiredPages(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Required Legal Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(report.RequiredPagesFound)+len(report.RequiredPagesMissing))
	for _, page := range report.RequiredPagesFound {
		rows = append(rows, []string{page, "✅ found"})
	}
	for _, page := range report.RequiredPagesMissing {
		rows = append(rows, []string{page, "❌ missing"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeViolationChart writes a mermaid pie chart of violations by kind.
func (w *MarkdownWriter) writeViolationChart(md *markdown.Markdown, report *model.SiteReport) {
	counts := violationKindCounts(report)
	if len(counts.kinds) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Violations by Kind"),
		piechart.WithShowData(true),
	)
	for _, kind := range counts.kinds {
		chart.LabelAndIntValue(kind, uint64(counts.byKind[kind]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Page Findings")
	md.PlainText("")

	if len(report.Findings) == 0 {
		md.PlainText("No page-level findings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Findings))
	for _, finding := range report.Findings {
		rows = append(rows, []string{
			truncateString(finding.URL, 60),
			violationSummary(finding),
			strings.Join(finding.QualityIssues, "; "),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Violations", "Quality Issues"},
		Rows:   rows,
	})
	md.PlainText("")

	// Evidence excerpts go in collapsible blocks so the table stays
	// scannable.
	for _, finding := range report.Findings {
		for _, v := range finding.Violations {
			if v.Excerpt == "" {
				continue
			}
			md.Details(fmt.Sprintf("%s — %s", truncateString(finding.URL, 60), string(v.Kind)), v.Excerpt)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSuggestions(md *markdown.Markdown, report *model.SiteReport) {
	md.H2("Suggestions")
	md.PlainText("")

	if len(report.Suggestions) == 0 {
		md.PlainText("No suggestions.")
		md.PlainText("")
		return
	}
	md.BulletList(report.Suggestions...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by pubscan*")
}

// violationSummary formats a finding's violations as "Kind (0.95)" pairs.
func violationSummary(finding model.PageFinding) string {
	if len(finding.Violations) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(finding.Violations))
	for _, v := range finding.Violations {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", string(v.Kind), v.Confidence))
	}
	return strings.Join(parts, ", ")
}

// kindCounts is an ordered count of violations by kind.
type kindCounts struct {
	kinds  []string
	byKind map[string]int
}

func violationKindCounts(report *model.SiteReport) kindCounts {
	counts := kindCounts{byKind: make(map[string]int)}
	for _, finding := range report.Findings {
		for _, v := range finding.Violations {
			kind := string(v.Kind)
			if _, seen := counts.byKind[kind]; !seen {
				counts.kinds = append(counts.kinds, kind)
			}
			counts.byKind[kind]++
		}
	}
	return counts
}
