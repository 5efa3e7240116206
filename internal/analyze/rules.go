package analyze

import (
	"fmt"
	"strings"

	"github.com/pubscan/pubscan/internal/model"
)

// Rule confidences. The three lexical checks are pattern matches, not
// judgments, so each carries a fixed confidence reflecting how often the
// pattern appears on legitimate pages.
const (
	phraseConfidence    = 0.95
	downloadConfidence  = 0.90
	affiliateConfidence = 0.85
	adDensityConfidence = 0.80
	maxAdContainerCount = 10
)

// violationPhrases pairs high-confidence policy-violation phrases with
// the violation kind they imply. Matching is substring over the
// lowercased body, so every phrase must be lowercase and specific
// enough not to fire on ordinary prose. Kept as an ordered slice so
// detector output is deterministic for a given page.
var violationPhrases = []struct {
	phrase string
	kind   model.ViolationKind
}{
	{"download cracked", model.KindIllicitDownloads},
	{"free full version crack", model.KindIllicitDownloads},
	{"keygen download", model.KindIllicitDownloads},
	{"serial key generator", model.KindIllicitDownloads},
	{"watch movies free online", model.KindCopyright},
	{"free movie download", model.KindCopyright},
	{"pirated", model.KindCopyright},
	{"online casino bonus", model.KindGambling},
	{"betting odds today", model.KindGambling},
	{"xxx videos", model.KindAdultContent},
	{"adult content free", model.KindAdultContent},
	{"guaranteed income", model.KindScam},
	{"double your money", model.KindScam},
	{"get rich quick", model.KindScam},
}

// piracyTerms and deliveryTerms drive the illicit-download anchor check:
// an anchor fires only when a term from each set co-occurs in its href
// or visible text.
var piracyTerms = []string{"torrent", "crack", "keygen", "warez", "nulled"}

var deliveryTerms = []string{"download", "software", "movie", "film", "app"}

// affiliatePatterns are URL substrings of common affiliate networks.
var affiliatePatterns = []string{
	"amzn.to/",
	"tag=",
	"clickbank.net",
	"shareasale.com",
	"go.redirectingat.com",
	"anrdoezrs.net",
	"linksynergy.com",
	"/ref=",
	"affiliate_id=",
	"aff_id=",
}

// disclosureTerms are the words whose presence anywhere in the body
// counts as affiliate disclosure.
var disclosureTerms = []string{"affiliate", "sponsored", "disclosure"}

// adContainerSelectors are the iframe and container shapes ad networks
// inject. The density check counts matches across all of them.
var adContainerSelectors = []string{
	"ins.adsbygoogle",
	"iframe[src*='doubleclick']",
	"iframe[src*='googlesyndication']",
	"iframe[src*='adsystem']",
	"div[id^='div-gpt-ad']",
	"div[class*='ad-container']",
	"div[class*='ad-wrapper']",
	"div[class*='advertisement']",
	"[data-ad-slot]",
}

// DetectViolations runs the rule-based checks against one parsed page.
// The checks are independent and additive; a page can trigger all of
// them. Pure over the parsed document, no I/O.
func DetectViolations(doc *Document) []model.Violation {
	var violations []model.Violation
	body := strings.ToLower(doc.BodyText())

	violations = append(violations, matchPhrases(body)...)
	violations = append(violations, matchDownloadAnchors(doc)...)
	violations = append(violations, matchUndisclosedAffiliates(doc, body)...)
	if v, ok := matchAdDensity(doc); ok {
		violations = append(violations, v)
	}
	return violations
}

// matchPhrases emits one violation per matched phrase.
func matchPhrases(body string) []model.Violation {
	var found []model.Violation
	for _, entry := range violationPhrases {
		if strings.Contains(body, entry.phrase) {
			found = append(found, model.NewViolation(entry.kind, excerptAround(body, entry.phrase), phraseConfidence))
		}
	}
	return found
}

// matchDownloadAnchors flags anchors pairing a piracy term with a
// delivery term in the href or visible text.
func matchDownloadAnchors(doc *Document) []model.Violation {
	var found []model.Violation
	doc.Anchors(func(href, text string) {
		combined := strings.ToLower(href + " " + text)
		if !containsAny(combined, piracyTerms) || !containsAny(combined, deliveryTerms) {
			return
		}
		excerpt := strings.TrimSpace(text)
		if excerpt == "" {
			excerpt = href
		}
		found = append(found, model.NewViolation(model.KindIllicitDownloads, excerpt, downloadConfidence))
	})
	return found
}

// matchUndisclosedAffiliates flags affiliate-network anchors on pages
// whose body carries no disclosure language. Disclosure anywhere on the
// page clears every anchor, so the body check happens once up front.
func matchUndisclosedAffiliates(doc *Document, body string) []model.Violation {
	if containsAny(body, disclosureTerms) {
		return nil
	}
	var found []model.Violation
	doc.Anchors(func(href, _ string) {
		if containsAny(strings.ToLower(href), affiliatePatterns) {
			found = append(found, model.NewViolation(model.KindAffiliateDisclosure, href, affiliateConfidence))
		}
	})
	return found
}

// matchAdDensity counts ad iframes and containers across the known
// selector shapes and flags the page when the total exceeds the bound.
func matchAdDensity(doc *Document) (model.Violation, bool) {
	total := 0
	for _, selector := range adContainerSelectors {
		total += doc.Count(selector)
	}
	if total <= maxAdContainerCount {
		return model.Violation{}, false
	}
	excerpt := fmt.Sprintf("%d ad containers detected (maximum %d)", total, maxAdContainerCount)
	return model.NewViolation(model.KindExcessiveAds, excerpt, adDensityConfidence), true
}

// excerptAround returns a window of body text surrounding the first
// occurrence of phrase, for use as evidence.
func excerptAround(body, phrase string) string {
	idx := strings.Index(body, phrase)
	if idx < 0 {
		return phrase
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(phrase) + 40
	if end > len(body) {
		end = len(body)
	}
	return body[start:end]
}

// containsAny reports whether s contains any of the terms.
func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
