package crawler

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// assetExtensions are file extensions that never carry editorial content.
// Links to these are dropped during extraction.
var assetExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".json": true, ".xml": true, ".rss": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".webm": true,
	".wmv": true, ".flac": true, ".wav": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".exe": true, ".dmg": true, ".apk": true, ".iso": true,
}

// replyCommentParam is a query parameter used by comment systems to
// generate a reply-form permutation of the same page for every comment.
// Following these links inflates the frontier with near-identical URLs.
const replyCommentParam = "replytocom"

// Extractor yields the set of same-host, non-asset hyperlinks reachable
// from a page.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because it correctly handles the malformed HTML common on the web and
// gives a proper DOM walk for free.
type Extractor struct {
	// base is the page URL used for resolving relative references.
	base *url.URL
}

// NewExtractor creates an Extractor resolving against the given base URL.
func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{base: u}, nil
}

// ExtractLinks parses markup and returns the deduplicated set of
// same-host links, each in normalized absolute form. Order is sorted for
// determinism; callers must not rely on any document ordering.
func (e *Extractor) ExtractLinks(markup string) []string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse almost never fails (it repairs as it goes), but a
		// page we cannot parse simply yields no links.
		return nil
	}

	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if link, ok := e.resolveLink(href); ok {
					seen[link] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// resolveLink resolves one href against the base URL and applies the
// extraction filters. The boolean is false when the link is discarded.
func (e *Extractor) resolveLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := e.base.ResolveReference(ref)

	// Same-page anchors resolve to the base URL itself with only a
	// fragment; normalization strips the fragment, so check before.
	if resolved.Fragment != "" && resolved.Path == e.base.Path && resolved.RawQuery == e.base.RawQuery {
		return "", false
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, e.base.Host) {
		return "", false
	}
	if assetExtensions[strings.ToLower(path.Ext(resolved.Path))] {
		return "", false
	}
	if resolved.Query().Has(replyCommentParam) {
		return "", false
	}

	return NormalizeURL(resolved.String()), true
}

// NormalizeURL normalizes a URL for deduplication: fragment stripped,
// scheme and host lowercased, empty path folded to "/".
//
// Design decision: Fragment stripping is load-bearing, not cosmetic.
// The crawl-set invariant ("deduplicated by normalized absolute form,
// fragment stripped") and the 500-page cap are both defined over this
// form.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
