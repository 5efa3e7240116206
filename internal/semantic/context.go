package semantic

import (
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/pubscan/pubscan/internal/analyze"
	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/crawler"
)

// dangerKeywords are text fragments whose presence forces a page past
// the pre-filter. They mark content where policy violations concentrate.
var dangerKeywords = []string{
	"download", "crack", "torrent", "keygen", "serial", "warez",
	"casino", "betting", "gambling", "jackpot",
	"xxx", "porn", "adult",
	"get rich", "guaranteed income", "double your money",
	"free movie", "watch online", "pirated",
}

// safeKeywords mark clearly benign editorial content. A page matching
// only these skips the external call entirely.
var safeKeywords = []string{
	"recipe", "tutorial", "how to", "review", "guide",
	"interview", "opinion", "analysis", "travel", "health",
	"education", "parenting", "gardening", "photography",
}

// PageContext is the bundle of extracted page text sent to the external
// classifier, bounded by the character budget.
type PageContext struct {
	// URL is the page's normalized URL.
	URL string

	// Role is the page role as a display string.
	Role string

	// Title is the page title.
	Title string

	// MetaDescription is the meta description, if any.
	MetaDescription string

	// Headings are the page's heading texts, in document order.
	Headings []string

	// Body is the main readable text of the page, truncated to fit the
	// overall budget.
	Body string
}

// BuildContext extracts the classification context from a parsed page.
// The body comes from readability extraction over the raw markup, which
// strips navigation, ads, and boilerplate far better than a container
// heuristic; when extraction fails the analyzer's container text is the
// fallback. The combined text is truncated to the character budget with
// the body absorbing the cut.
func BuildContext(doc *analyze.Document, rawMarkup, role string) PageContext {
	pc := PageContext{
		URL:             doc.URL,
		Role:            role,
		Title:           doc.Title(),
		MetaDescription: doc.MetaDescription(),
		Headings:        doc.Headings("h1", "h2", "h3"),
	}

	body := readableText(doc.URL, rawMarkup)
	if body == "" {
		body = doc.ContentText()
	}

	fixed := len(pc.URL) + len(pc.Role) + len(pc.Title) + len(pc.MetaDescription)
	for _, h := range pc.Headings {
		fixed += len(h)
	}
	budget := config.SemanticContextBudget - fixed
	if budget < 0 {
		budget = 0
	}
	if len(body) > budget {
		// Never split a multi-byte rune at the cut point.
		cut := budget
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	pc.Body = body
	return pc
}

// readableText runs readability extraction and returns the collapsed
// main text, or empty on any failure.
func readableText(pageURL, rawMarkup string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(rawMarkup), u)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(article.TextContent), " ")
}

// Text returns the full combined text of the context, used by the
// pre-filter and as the classifier prompt payload.
func (pc PageContext) Text() string {
	parts := []string{pc.Title, pc.MetaDescription}
	parts = append(parts, pc.Headings...)
	parts = append(parts, pc.Body)
	return strings.Join(parts, "\n")
}

// ShouldClassify is the pre-filter deciding whether a page is worth an
// external call:
//
//  1. A tool/download keyword in the URL path always classifies. These
//     pages are exactly the high-risk ones; no text signal overrides.
//  2. A danger keyword anywhere in the text classifies.
//  3. Safe keywords with no danger keywords skip the call.
//  4. Nothing recognizable classifies; the model decides.
func ShouldClassify(pc PageContext) bool {
	if crawler.PathHasToolKeyword(pc.URL) {
		return true
	}

	text := strings.ToLower(pc.Text())
	if containsAnyKeyword(text, dangerKeywords) {
		return true
	}
	if containsAnyKeyword(text, safeKeywords) {
		return false
	}
	return true
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
