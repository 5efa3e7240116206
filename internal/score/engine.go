package score

import (
	"fmt"

	"github.com/pubscan/pubscan/internal/model"
)

// Penalty weights. The weights encode policy severity: a policy
// violation outweighs a duplicate page five to one, and missing legal
// pages cost as much as violations because ad networks reject sites
// without them outright.
const (
	startScore             = 100
	violationPenalty       = 5
	duplicatePagePenalty   = 1
	missingRequiredPenalty = 5
	homepageIssuePenalty   = 2

	lowVolumePenalty = 10
	midVolumePenalty = 5
	lowVolumeFloor   = 20
	midVolumeFloor   = 40
)

// Finalize computes the score, aggregated suggestions, and summary for
// a fully-populated report. It is the last stage of a scan; after it
// returns the report is immutable.
//
// The subtraction order is fixed for testability, though the arithmetic
// is order-independent. The score is clamped to [0, 100]; a site with
// many violations bottoms out at 0 rather than going negative.
func Finalize(report *model.SiteReport) {
	score := startScore

	score -= violationPenalty * report.ViolationCount()
	score -= duplicatePagePenalty * report.DuplicatePageCount()
	score -= missingRequiredPenalty * len(report.RequiredPagesMissing)
	score -= homepageIssuePenalty * len(report.HomepageIssues)

	switch {
	case report.ContentPageCount < lowVolumeFloor:
		score -= lowVolumePenalty
	case report.ContentPageCount < midVolumeFloor:
		score -= midVolumePenalty
	}

	if score < 0 {
		score = 0
	}
	if score > startScore {
		score = startScore
	}

	report.Score = score
	report.Suggestions = aggregateSuggestions(report)
	report.Summary = summarize(report)
}

// aggregateSuggestions builds the report-level suggestion list: every
// per-page suggestion in finding order, then missing-required-page
// reminders, then homepage quality issues. Order is preserved and
// nothing is deduplicated beyond what the sources already did; the list
// is capped because advice past a point stops being actionable.
func aggregateSuggestions(report *model.SiteReport) []string {
	suggestions := make([]string, 0, model.MaxSuggestions)

	add := func(s string) {
		if len(suggestions) < model.MaxSuggestions {
			suggestions = append(suggestions, s)
		}
	}

	for _, finding := range report.Findings {
		for _, s := range finding.Suggestions {
			add(s)
		}
	}
	for _, page := range report.RequiredPagesMissing {
		add(fmt.Sprintf("Add a %s page; ad networks require it", page))
	}
	for _, issue := range report.HomepageIssues {
		add(fmt.Sprintf("Homepage: %s", issue))
	}
	return suggestions
}

// summarize selects the one-line report summary: violations dominate,
// then low content volume, then the compliant message.
func summarize(report *model.SiteReport) string {
	violations := report.ViolationCount()
	duplicates := report.DuplicatePageCount()

	switch {
	case violations > 0 || duplicates > 0:
		return fmt.Sprintf("Found %d policy violation(s) and %d duplicate-content page(s) across %d content pages.",
			violations, duplicates, report.ContentPageCount)
	case report.ContentPageCount < midVolumeFloor:
		return fmt.Sprintf("No policy violations found, but only %d content pages were discovered; thin sites score lower.",
			report.ContentPageCount)
	default:
		return fmt.Sprintf("No policy violations found across %d content pages; the site looks compliant.",
			report.ContentPageCount)
	}
}
