package analyze

import (
	"fmt"
	"strings"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/model"
)

// Quality issue messages. These strings reach the final report, so they
// are written for site owners, not for log readers.
const (
	issueMissingHierarchy = "missing heading hierarchy: add one main heading (h1) and section headings (h2/h3)"
)

// AnalyzeQuality computes the structural quality signal for a page:
// word count of the main content container and heading-hierarchy
// presence. Deterministic, no I/O.
//
// A hierarchy is "proper" iff the page has at least one top-level
// heading and at least one second- or third-level heading. A lone h1
// (or a page of nothing but h3s) reads as unstructured to both readers
// and review tools.
func AnalyzeQuality(doc *Document) model.QualitySignal {
	words := len(strings.Fields(doc.ContentText()))

	h1 := doc.Headings("h1")
	sub := doc.Headings("h2", "h3")
	hasHierarchy := len(h1) > 0 && len(sub) > 0

	signal := model.QualitySignal{
		WordCount:           words,
		HasHeadingHierarchy: hasHierarchy,
		Issues:              make([]string, 0, 2),
	}

	if words < config.ThinContentWords {
		signal.Issues = append(signal.Issues,
			fmt.Sprintf("thin content: %d words (minimum %d recommended)", words, config.ThinContentWords))
	}
	if !hasHierarchy {
		signal.Issues = append(signal.Issues, issueMissingHierarchy)
	}

	return signal
}
