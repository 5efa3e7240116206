package report

import (
	"io"

	"github.com/pubscan/pubscan/internal/model"
)

// Writer renders one finished scan report to its destination.
//
// Design decision: We use an interface to allow different output formats
// and destinations with the same API. Writers return bytes written so
// callers can distinguish partial writes when composing them.
type Writer interface {
	// Write renders the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SiteReport) (int, error)
}

// MultiWriter renders a report through several Writers in sequence.
// Useful for terminal output plus a file copy in one pass.
//
// Design decision: A separate type rather than io.MultiWriter because
// our Writer renders reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through every writer, stopping at the first
// error. Returns the total bytes written across all writers.
func (m *MultiWriter) Write(report *model.SiteReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// scoreGrade maps a compliance score to the letter grade shown in
// human-facing formats.
func scoreGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
