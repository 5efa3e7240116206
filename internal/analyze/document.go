package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentContainers are CSS selectors tried in order to locate a page's
// main content. The first selector with non-empty text wins; the full
// body is the fallback. Ordering goes from most to least specific so a
// themed site's article wrapper beats its page chrome.
var contentContainers = []string{
	"article",
	"main",
	"[role=main]",
	".post-content",
	".entry-content",
	".article-body",
	"#content",
	".content",
}

// Document is a parsed page shared by the analyzers. Parsing happens
// once at construction; all accessors are cheap and deterministic.
type Document struct {
	// URL is the page's normalized URL.
	URL string

	// doc is the parsed goquery document.
	doc *goquery.Document
}

// NewDocument parses markup into a Document.
func NewDocument(pageURL, markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return &Document{URL: pageURL, doc: doc}, nil
}

// Title returns the page title, trimmed.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// MetaDescription returns the meta description content, if any.
func (d *Document) MetaDescription() string {
	desc, _ := d.doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(desc)
}

// BodyText returns the whitespace-collapsed text of the full body.
func (d *Document) BodyText() string {
	return collapseWhitespace(d.doc.Find("body").Text())
}

// ContentText returns the text of the most specific matching content
// container, falling back to the full body when no container matches.
func (d *Document) ContentText() string {
	for _, selector := range contentContainers {
		if text := collapseWhitespace(d.doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return d.BodyText()
}

// Headings returns the trimmed text of all headings at the given levels,
// in document order. Levels are tag names such as "h1", "h2".
func (d *Document) Headings(levels ...string) []string {
	headings := make([]string, 0)
	d.doc.Find(strings.Join(levels, ", ")).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			headings = append(headings, text)
		}
	})
	return headings
}

// Anchors visits every anchor on the page with its resolved href and
// visible text.
func (d *Document) Anchors(visit func(href, text string)) {
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		visit(strings.TrimSpace(href), strings.TrimSpace(s.Text()))
	})
}

// Count returns the number of elements matching the selector.
func (d *Document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// collapseWhitespace trims and folds all whitespace runs to single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
