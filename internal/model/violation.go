package model

import "strings"

// ViolationKind identifies the category of a policy violation.
//
// Design decision: We use a string type rather than an iota enum because
// the semantic classifier supplies kinds from its own vocabulary; an
// open string type lets those pass through the same schema without a
// lossy mapping step.
type ViolationKind string

// Known violation kinds. The semantic classifier is instructed to use
// this vocabulary, but adapters must tolerate values outside of it.
const (
	KindCopyright           ViolationKind = "Copyright"
	KindIllicitDownloads    ViolationKind = "IllicitDownloads"
	KindAffiliateDisclosure ViolationKind = "AffiliateDisclosure"
	KindDuplicateContent    ViolationKind = "DuplicateContent"
	KindExcessiveAds        ViolationKind = "ExcessiveAds"
	KindAdultContent        ViolationKind = "AdultContent"
	KindGambling            ViolationKind = "Gambling"
	KindScam                ViolationKind = "Scam"
)

// MinConfidence is the confidence floor for violations. Findings below
// this value never survive into a SiteReport. The floor is enforced at
// the boundary with each detector, not deferred to aggregation.
const MinConfidence = 0.8

// MaxExcerptLen bounds the evidence excerpt carried by a violation.
// Excerpts exist to show a human reviewer where the finding came from,
// not to reproduce the page.
const MaxExcerptLen = 200

// Violation is a single confidence-scored policy-risk finding on a page.
type Violation struct {
	// Kind is the violation category.
	Kind ViolationKind `json:"type"`

	// Excerpt is a bounded-length evidence string from the page.
	Excerpt string `json:"excerpt"`

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// NewViolation constructs a Violation with a clamped confidence and a
// bounded excerpt.
func NewViolation(kind ViolationKind, excerpt string, confidence float64) Violation {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Violation{
		Kind:       kind,
		Excerpt:    TruncateExcerpt(excerpt),
		Confidence: confidence,
	}
}

// TruncateExcerpt bounds an evidence string to MaxExcerptLen characters,
// collapsing surrounding whitespace first.
func TruncateExcerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > MaxExcerptLen {
		s = s[:MaxExcerptLen]
	}
	return s
}

// FilterConfident drops violations whose confidence is below MinConfidence.
// The input slice is not modified.
func FilterConfident(violations []Violation) []Violation {
	kept := make([]Violation, 0, len(violations))
	for _, v := range violations {
		if v.Confidence >= MinConfidence {
			kept = append(kept, v)
		}
	}
	return kept
}
