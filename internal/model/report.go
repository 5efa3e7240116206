package model

import (
	"encoding/json"
	"time"
)

// QualitySignal holds the structural quality measurements of one page.
// It is produced by the content quality analyzer and is deterministic:
// the same markup always yields the same signal.
type QualitySignal struct {
	// WordCount is the whitespace-tokenized word count of the page's
	// main content container (falling back to the full body).
	WordCount int `json:"word_count"`

	// HasHeadingHierarchy is true when the page has at least one
	// top-level heading and at least one second- or third-level heading.
	HasHeadingHierarchy bool `json:"has_heading_hierarchy"`

	// Issues are human-readable quality problems, in detection order.
	Issues []string `json:"issues,omitempty"`
}

// PageFinding collects everything noteworthy about a single content page.
// Pages with no violations, suggestions, or quality issues produce no
// finding at all; the report only carries pages worth reading about.
type PageFinding struct {
	// URL is the analyzed page.
	URL string `json:"url"`

	// Violations are the confidence-filtered policy violations.
	Violations []Violation `json:"violations,omitempty"`

	// QualityIssues are structural quality problems on the page.
	QualityIssues []string `json:"quality_issues,omitempty"`

	// Suggestions are remediation hints for this page.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Empty reports whether the finding carries no information and should
// be dropped rather than added to the report.
func (f *PageFinding) Empty() bool {
	return len(f.Violations) == 0 && len(f.QualityIssues) == 0 && len(f.Suggestions) == 0
}

// DuplicateOnly reports whether the finding's only violation is
// duplicate content. Duplicate-only pages are scored more leniently
// than pages with policy violations.
func (f *PageFinding) DuplicateOnly() bool {
	if len(f.Violations) == 0 {
		return false
	}
	for _, v := range f.Violations {
		if v.Kind != KindDuplicateContent {
			return false
		}
	}
	return true
}

// MaxSuggestions caps the aggregated suggestion list on a report.
// Beyond this point more advice stops being actionable.
const MaxSuggestions = 20

// SiteReport is the complete, aggregated output of one scan of one site.
// It is created once per scan invocation and is immutable after the
// scoring engine finishes with it. The core never persists reports;
// persistence belongs to external collaborators.
type SiteReport struct {
	// Target is the validated URL that was scanned.
	Target string `json:"target"`

	// RequiredPagesFound lists the required legal-page keywords whose
	// presence was confirmed among discovered links.
	RequiredPagesFound []string `json:"required_pages_found"`

	// RequiredPagesMissing lists the required legal-page keywords that
	// were not found.
	RequiredPagesMissing []string `json:"required_pages_missing"`

	// ContentPageCount is the number of URLs classified as content.
	ContentPageCount int `json:"content_page_count"`

	// HomepageIssues are the homepage's structural quality issues.
	HomepageIssues []string `json:"homepage_issues,omitempty"`

	// Findings holds one entry per content page with something to
	// report. Order matches analysis completion order, not discovery
	// order.
	Findings []PageFinding `json:"findings"`

	// Suggestions is the aggregated, capped suggestion list.
	Suggestions []string `json:"suggestions"`

	// Score is the normalized compliance score in [0, 100].
	Score int `json:"score"`

	// Summary is a one-line description of the overall result.
	Summary string `json:"summary"`

	// ScannedAt is the timestamp of the scan invocation.
	ScannedAt time.Time `json:"scanned_at"`

	// Duration is the wall-clock time the scan took. Serialized as
	// whole milliseconds; see MarshalJSON.
	Duration time.Duration `json:"duration_ms"`
}

// MarshalJSON emits the duration as whole milliseconds so the
// duration_ms field name matches its unit on the wire.
func (r SiteReport) MarshalJSON() ([]byte, error) {
	type alias SiteReport
	return json.Marshal(struct {
		alias
		Duration int64 `json:"duration_ms"`
	}{alias(r), r.Duration.Milliseconds()})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *SiteReport) UnmarshalJSON(data []byte) error {
	type alias SiteReport
	aux := struct {
		*alias
		Duration int64 `json:"duration_ms"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = time.Duration(aux.Duration) * time.Millisecond
	return nil
}

// NewSiteReport creates an empty report for the given target with the
// timestamp set to now.
func NewSiteReport(target string) *SiteReport {
	return &SiteReport{
		Target:               target,
		RequiredPagesFound:   make([]string, 0),
		RequiredPagesMissing: make([]string, 0),
		Findings:             make([]PageFinding, 0),
		Suggestions:          make([]string, 0),
		ScannedAt:            time.Now(),
	}
}

// AddFinding appends a finding unless it is empty.
func (r *SiteReport) AddFinding(f PageFinding) {
	if f.Empty() {
		return
	}
	r.Findings = append(r.Findings, f)
}

// ViolationCount returns the total number of non-duplicate violations
// across all findings.
func (r *SiteReport) ViolationCount() int {
	count := 0
	for _, f := range r.Findings {
		for _, v := range f.Violations {
			if v.Kind != KindDuplicateContent {
				count++
			}
		}
	}
	return count
}

// DuplicatePageCount returns the number of pages flagged purely as
// duplicate content.
func (r *SiteReport) DuplicatePageCount() int {
	count := 0
	for _, f := range r.Findings {
		if f.DuplicateOnly() {
			count++
		}
	}
	return count
}
