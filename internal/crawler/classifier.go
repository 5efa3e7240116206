package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pubscan/pubscan/internal/config"
)

// Verdict is the outcome of classifying a URL.
type Verdict int

const (
	// VerdictStructural marks navigational, utility, or boilerplate
	// URLs that are excluded from deep analysis.
	VerdictStructural Verdict = iota

	// VerdictContent marks URLs worth deep analysis.
	VerdictContent
)

// String returns a human-readable representation of the verdict.
func (v Verdict) String() string {
	if v == VerdictContent {
		return "content"
	}
	return "structural"
}

// toolKeywords are download/tool-intent path fragments. Pages matching
// these are always analyzed: they are exactly where policy violations
// concentrate, so they must win over every structural exclusion. A
// "/download/" path is analyzed even though download pages would
// otherwise look like utility pages.
var toolKeywords = []string{
	"cracked-software", "crack", "torrent", "keygen", "warez", "nulled",
	"serial-key", "activation-key", "downloader", "download",
}

// structuralKeywords are path segments that mark navigational or
// boilerplate pages: search, taxonomy, pagination, auth, commerce, and
// the required legal pages.
var structuralKeywords = map[string]bool{
	"search": true, "category": true, "categories": true, "tag": true,
	"tags": true, "author": true, "archive": true, "archives": true,
	"page": true, "feed": true, "rss": true, "sitemap": true,
	"wp-admin": true, "wp-login": true, "wp-content": true,
	"login": true, "logout": true, "signin": true, "signup": true,
	"register": true, "admin": true, "account": true, "profile": true,
	"cart": true, "checkout": true, "shop": true, "store": true,
	"product-category": true, "wishlist": true, "comments": true,
	"about": true, "about-us": true, "contact": true, "contact-us": true,
	"privacy": true, "privacy-policy": true, "terms": true,
	"terms-of-service": true, "terms-and-conditions": true,
	"disclaimer": true, "disclosure": true, "cookie-policy": true,
}

// obviousCategories are single-segment paths that name a section of the
// site rather than a piece of content.
var obviousCategories = map[string]bool{
	"blog": true, "news": true, "articles": true, "posts": true,
	"videos": true, "products": true, "services": true, "resources": true,
	"home": true, "index": true, "reviews": true, "topics": true,
}

// datedPostPattern matches /YYYY/MM/slug paths, the classic permalink
// shape of a dated post. An optional extension on the slug is allowed.
var datedPostPattern = regexp.MustCompile(`^/\d{4}/\d{2}/[^/]+/?$`)

// pureNumberPattern matches segments that are only digits.
var pureNumberPattern = regexp.MustCompile(`^\d+$`)

// Rule is one named classification predicate. Rules are evaluated in
// documented precedence order; the first rule that claims a URL decides
// its verdict.
//
// Design decision: An explicit ordered rule list instead of one keyword
// if/else chain, so each rule is independently unit-testable and the
// precedence (tool keywords before structural exclusion) is visible in
// data rather than buried in control flow.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Apply inspects the URL and returns a verdict. The boolean is
	// false when the rule does not claim this URL.
	Apply func(u *url.URL) (Verdict, bool)
}

// Rules returns the classification rules in precedence order.
func Rules() []Rule {
	return []Rule{
		{Name: "ToolKeyword", Apply: ruleToolKeyword},
		{Name: "StructuralPattern", Apply: ruleStructuralPattern},
		{Name: "DatedPostPattern", Apply: ruleDatedPostPattern},
		{Name: "DescriptiveSlug", Apply: ruleDescriptiveSlug},
		{Name: "SingleSegmentFallback", Apply: ruleSingleSegmentFallback},
	}
}

// Classify applies the rules in order and returns the verdict together
// with the name of the deciding rule. Malformed URLs fail closed to
// structural. This is a pure function of the URL; no network access.
func Classify(rawURL string) (Verdict, string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return VerdictStructural, "MalformedURL"
	}

	for _, rule := range Rules() {
		if verdict, ok := rule.Apply(u); ok {
			return verdict, rule.Name
		}
	}
	return VerdictStructural, "DefaultStructural"
}

// IsLikelyContentURL reports whether the URL should receive deep analysis.
func IsLikelyContentURL(rawURL string) bool {
	verdict, _ := Classify(rawURL)
	return verdict == VerdictContent
}

// PathHasToolKeyword reports whether the URL path contains a
// download/tool-intent keyword. Such pages are never pre-filtered out
// of semantic classification, whatever their text looks like.
func PathHasToolKeyword(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	verdict, ok := ruleToolKeyword(u)
	return ok && verdict == VerdictContent
}

// ruleToolKeyword claims URLs whose path contains a download/tool-intent
// keyword. These are always content: high policy risk trumps every other
// signal.
func ruleToolKeyword(u *url.URL) (Verdict, bool) {
	pathLower := strings.ToLower(u.Path)
	for _, kw := range toolKeywords {
		if strings.Contains(pathLower, kw) {
			return VerdictContent, true
		}
	}
	return VerdictStructural, false
}

// ruleStructuralPattern claims URLs whose path contains a known
// structural segment or a pagination shape.
func ruleStructuralPattern(u *url.URL) (Verdict, bool) {
	for _, segment := range pathSegments(u) {
		// Pagination like /page/3 is caught by the "page" keyword here.
		// Bare date segments (/2024/01/...) must NOT match, so numeric
		// segments are left for the dated-post rule to judge.
		if structuralKeywords[segment] {
			return VerdictStructural, true
		}
	}
	return VerdictStructural, false
}

// ruleDatedPostPattern claims /YYYY/MM/slug paths as content.
func ruleDatedPostPattern(u *url.URL) (Verdict, bool) {
	if datedPostPattern.MatchString(u.Path) {
		return VerdictContent, true
	}
	return VerdictStructural, false
}

// ruleDescriptiveSlug claims multi-segment paths ending in a descriptive
// slug: longer than 4 characters, not purely numeric, not a structural
// keyword, and free of embedded query/fragment characters.
func ruleDescriptiveSlug(u *url.URL) (Verdict, bool) {
	segments := pathSegments(u)
	if len(segments) < 2 {
		return VerdictStructural, false
	}

	last := segments[len(segments)-1]
	if isDescriptiveSlug(last) {
		return VerdictContent, true
	}
	return VerdictStructural, false
}

// ruleSingleSegmentFallback claims single-segment paths that are neither
// a required legal page nor an obvious category name.
func ruleSingleSegmentFallback(u *url.URL) (Verdict, bool) {
	segments := pathSegments(u)
	if len(segments) != 1 {
		return VerdictStructural, false
	}

	segment := segments[0]
	for _, legal := range config.RequiredPages {
		if strings.Contains(segment, legal) {
			return VerdictStructural, true
		}
	}
	if obviousCategories[segment] {
		return VerdictStructural, true
	}
	return VerdictContent, true
}

// isDescriptiveSlug reports whether a path segment looks like a
// human-readable post slug.
func isDescriptiveSlug(segment string) bool {
	if len(segment) <= 4 {
		return false
	}
	if pureNumberPattern.MatchString(segment) {
		return false
	}
	if structuralKeywords[segment] {
		return false
	}
	if strings.ContainsAny(segment, "?=&#") {
		return false
	}
	return true
}

// pathSegments splits a URL path into lowercased non-empty segments,
// with any trailing extension kept attached to its segment.
func pathSegments(u *url.URL) []string {
	parts := strings.Split(strings.ToLower(strings.Trim(u.Path, "/")), "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
