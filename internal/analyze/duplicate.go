package analyze

import (
	"strings"
	"sync"
)

// Duplicate detection bounds.
const (
	// minDuplicateLength is the normalized-length floor below which no
	// comparison happens. Short pages (error stubs, empty templates)
	// would otherwise all look like duplicates of each other.
	minDuplicateLength = 100

	// sampleTarget is the approximate number of character positions
	// sampled per comparison.
	sampleTarget = 100

	// duplicateThreshold is the sampled-match ratio above which two
	// bodies are declared duplicates.
	duplicateThreshold = 0.85
)

// Detector flags near-duplicate page bodies within one scan.
//
// The algorithm is a position-aligned character fingerprint: both bodies
// are normalized (lowercased, whitespace collapsed), positions are
// sampled at a fixed stride across the shorter body, and the ratio of
// matching characters at those positions decides. This is intentionally
// cheap and approximate: it can over-match partially-overlapping pages
// and under-match reordered ones. It is a template-clone detector, not
// a content-similarity metric, and scoring treats it accordingly
// (duplicate-only pages cost 1 point, not 5).
//
// Results are order-sensitive: each page is compared against exactly
// the bodies registered before it. Under the concurrent batch design
// completion order varies between runs, so borderline-similarity pages
// can flag differently across runs. This is a documented property of
// the scan, not a bug; reports are best-effort by contract.
type Detector struct {
	// mu guards bodies. Registration happens from concurrent analysis
	// workers; the accumulator is the one piece of shared mutable state
	// in a scan.
	mu sync.Mutex

	// bodies holds the normalized bodies accepted so far.
	bodies []string
}

// NewDetector creates an empty Detector. One Detector serves exactly one
// scan; duplicates are a within-site concept.
func NewDetector() *Detector {
	return &Detector{bodies: make([]string, 0)}
}

// CheckAndRegister reports whether bodyText near-duplicates any body
// registered before it, and registers the body if it does not. Bodies
// under the length floor are neither compared nor registered.
func (d *Detector) CheckAndRegister(bodyText string) bool {
	normalized := normalizeBody(bodyText)
	if len(normalized) < minDuplicateLength {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, prior := range d.bodies {
		if sampledSimilarity(normalized, prior) > duplicateThreshold {
			return true
		}
	}

	d.bodies = append(d.bodies, normalized)
	return false
}

// Size returns the number of registered bodies.
func (d *Detector) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bodies)
}

// normalizeBody lowercases and collapses all whitespace runs.
func normalizeBody(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// sampledSimilarity samples character positions at a fixed stride
// across the shorter string and returns the match ratio. Both inputs
// must already be normalized. Strings under the length floor never
// reach this function.
func sampledSimilarity(a, b string) float64 {
	if len(a) < minDuplicateLength || len(b) < minDuplicateLength {
		return 0
	}

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	stride := minLen / sampleTarget
	if stride < 1 {
		stride = 1
	}

	sampled := 0
	matches := 0
	for i := 0; i < minLen; i += stride {
		sampled++
		if a[i] == b[i] {
			matches++
		}
	}

	if sampled == 0 {
		return 0
	}
	return float64(matches) / float64(sampled)
}
