package model

// PageRole classifies the function of a crawled URL within the site.
// A role is decided exactly once, when the URL classifier first sees the
// URL, and never changes afterwards.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons. The String() method provides
// human-readable output for logs and reports.
type PageRole int

const (
	// RoleStructural marks navigational or boilerplate pages such as
	// category listings, tag archives, pagination, and legal pages.
	// Structural pages are not deep-analyzed.
	RoleStructural PageRole = iota

	// RoleContent marks pages carrying substantive editorial content
	// (articles, posts). Content pages flow through the full analysis
	// pipeline.
	RoleContent

	// RoleHomepage marks the root page of the target site. The homepage
	// is always analyzed and its quality issues are scored separately.
	RoleHomepage
)

// String returns a human-readable representation of the page role.
func (r PageRole) String() string {
	switch r {
	case RoleStructural:
		return "structural"
	case RoleContent:
		return "content"
	case RoleHomepage:
		return "homepage"
	default:
		return "unknown"
	}
}

// PageRecord holds a fetched page during a scan. Records are transient:
// they exist only while the page moves through the analysis pipeline and
// are discarded afterwards. Nothing in the core persists them.
type PageRecord struct {
	// URL is the normalized absolute URL of the page.
	URL string

	// RawMarkup is the page markup as returned by the fetcher.
	// Empty means the page was unavailable, not that it was blank.
	RawMarkup string

	// Links are the same-host hyperlinks extracted from the page.
	Links []string

	// Role is the page's classification, assigned exactly once.
	Role PageRole
}

// Available reports whether the page was actually fetched.
// The fetcher collapses every transport failure to empty markup, so an
// empty record means "unavailable" and must not be analyzed.
func (p *PageRecord) Available() bool {
	return p.RawMarkup != ""
}
