package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestPageFindingEmpty tests the sparse-representation rule: findings
// with nothing to say are not retained.
func TestPageFindingEmpty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		finding PageFinding
		empty   bool
	}{
		{"nothing", PageFinding{URL: "https://example.com/a"}, true},
		{
			"violation only",
			PageFinding{Violations: []Violation{NewViolation(KindCopyright, "x", 0.9)}},
			false,
		},
		{"quality issue only", PageFinding{QualityIssues: []string{"thin content"}}, false},
		{"suggestion only", PageFinding{Suggestions: []string{"add disclosure"}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if tc.finding.Empty() != tc.empty {
				t.Errorf("Empty() = %v, expected %v", tc.finding.Empty(), tc.empty)
			}
		})
	}
}

// TestSiteReportAddFindingSkipsEmpty tests that empty findings never
// reach the report.
func TestSiteReportAddFindingSkipsEmpty(t *testing.T) {
	t.Parallel()

	report := NewSiteReport("https://example.com")
	report.AddFinding(PageFinding{URL: "https://example.com/empty"})
	report.AddFinding(PageFinding{
		URL:        "https://example.com/bad",
		Violations: []Violation{NewViolation(KindGambling, "casino bonus", 0.95)},
	})

	if len(report.Findings) != 1 {
		t.Fatalf("got %d findings, expected 1", len(report.Findings))
	}
	if report.Findings[0].URL != "https://example.com/bad" {
		t.Errorf("unexpected finding URL %q", report.Findings[0].URL)
	}
}

// TestSiteReportCounts tests violation and duplicate-page counting.
func TestSiteReportCounts(t *testing.T) {
	t.Parallel()

	report := NewSiteReport("https://example.com")
	report.AddFinding(PageFinding{
		URL: "https://example.com/a",
		Violations: []Violation{
			NewViolation(KindCopyright, "x", 0.95),
			NewViolation(KindExcessiveAds, "y", 0.8),
		},
	})
	report.AddFinding(PageFinding{
		URL:        "https://example.com/b",
		Violations: []Violation{NewViolation(KindDuplicateContent, "z", 0.9)},
	})
	report.AddFinding(PageFinding{
		URL: "https://example.com/c",
		Violations: []Violation{
			NewViolation(KindDuplicateContent, "z", 0.9),
			NewViolation(KindScam, "get rich quick", 0.9),
		},
	})

	if got := report.ViolationCount(); got != 3 {
		t.Errorf("ViolationCount() = %d, expected 3 (duplicates excluded)", got)
	}
	if got := report.DuplicatePageCount(); got != 1 {
		t.Errorf("DuplicatePageCount() = %d, expected 1", got)
	}
}

// TestSiteReportDurationJSON tests that the duration crosses the wire
// in the unit its field name promises.
func TestSiteReportDurationJSON(t *testing.T) {
	t.Parallel()

	report := NewSiteReport("https://example.com")
	report.Duration = 1500 * time.Millisecond

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"duration_ms":1500`) {
		t.Errorf("JSON = %s, want duration_ms in milliseconds", data)
	}

	var decoded SiteReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if decoded.Duration != report.Duration {
		t.Errorf("Duration = %v, want %v after round trip", decoded.Duration, report.Duration)
	}
}

// TestPageRecordAvailable tests the empty-means-unavailable contract.
func TestPageRecordAvailable(t *testing.T) {
	t.Parallel()

	unavailable := PageRecord{URL: "https://example.com/gone"}
	if unavailable.Available() {
		t.Error("empty markup should mean unavailable")
	}

	fetched := PageRecord{URL: "https://example.com/ok", RawMarkup: "<html></html>"}
	if !fetched.Available() {
		t.Error("non-empty markup should mean available")
	}
}
