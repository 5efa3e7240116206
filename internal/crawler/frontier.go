package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/errgroup"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/fetch"
	"github.com/pubscan/pubscan/internal/model"
)

// ErrHomepageUnreachable is returned when the target homepage yields no
// markup. This is the only fatal fetch failure in a scan: without a
// homepage there is no link set, no required-page check, and nothing to
// score, so no partial report is produced.
var ErrHomepageUnreachable = errors.New("homepage unreachable or empty")

// Frontier drives URL discovery for one scan. It proceeds through a
// fixed sequence: homepage fetch, link extraction, required-page check,
// bounded one-hop expansion, and classification of the unique URL set.
//
// Design decision: Expansion is exactly one hop. A compliance scan needs
// a representative sample of content pages, not exhaustive coverage; one
// hop from the homepage reaches the pages the site itself promotes, and
// the page cap bounds the rest.
type Frontier struct {
	// fetcher performs all page fetches.
	fetcher *fetch.Fetcher

	// seedCap bounds how many homepage links seed the unique set.
	seedCap int

	// fanout bounds how many seed URLs are fetched during expansion.
	fanout int

	// pageCap is the hard ceiling on the unique URL set.
	pageCap int

	// respectRobots enables best-effort robots.txt checking.
	respectRobots bool

	// ignorePatterns are URL path substrings excluded from the crawl.
	ignorePatterns []string

	// logger receives discovery progress and skipped-fetch warnings.
	logger *slog.Logger
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithPageCap overrides the unique-set ceiling. Used by tests.
func WithPageCap(n int) FrontierOption {
	return func(f *Frontier) {
		if n > 0 {
			f.pageCap = n
		}
	}
}

// WithSeedCap overrides the homepage seed bound. Used by tests.
func WithSeedCap(n int) FrontierOption {
	return func(f *Frontier) {
		if n > 0 {
			f.seedCap = n
		}
	}
}

// WithFanout overrides the expansion fan-out bound. Used by tests.
func WithFanout(n int) FrontierOption {
	return func(f *Frontier) {
		if n > 0 {
			f.fanout = n
		}
	}
}

// WithRespectRobots toggles robots.txt checking during expansion.
func WithRespectRobots(enabled bool) FrontierOption {
	return func(f *Frontier) {
		f.respectRobots = enabled
	}
}

// WithIgnorePatterns sets URL path substrings to exclude from discovery.
func WithIgnorePatterns(patterns []string) FrontierOption {
	return func(f *Frontier) {
		f.ignorePatterns = patterns
	}
}

// WithFrontierLogger sets the logger.
func WithFrontierLogger(logger *slog.Logger) FrontierOption {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// NewFrontier creates a Frontier using the given fetcher.
func NewFrontier(fetcher *fetch.Fetcher, opts ...FrontierOption) *Frontier {
	f := &Frontier{
		fetcher:       fetcher,
		seedCap:       config.HomepageSeedCap,
		fanout:        config.ExpansionFanout,
		pageCap:       config.PageCap,
		respectRobots: true,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// DiscoveryResult holds the output of frontier discovery.
type DiscoveryResult struct {
	// Homepage is the fetched homepage record (role homepage).
	Homepage model.PageRecord

	// RequiredFound lists required legal-page keywords with a matching
	// discovered link.
	RequiredFound []string

	// RequiredMissing lists required legal-page keywords without one.
	RequiredMissing []string

	// UniqueURLs is the capped, deduplicated discovered URL set,
	// normalized and same-host by construction.
	UniqueURLs []string

	// ContentURLs is the subset of UniqueURLs classified as content.
	ContentURLs []string
}

// Discover runs the full discovery sequence against the target.
// Individual fetch failures during expansion are logged and skipped;
// only a homepage failure aborts discovery.
func (f *Frontier) Discover(ctx context.Context, target model.CrawlTarget) (*DiscoveryResult, error) {
	homepageURL := NormalizeURL(target.Homepage())

	markup := f.fetcher.Fetch(ctx, homepageURL)
	if markup == "" {
		return nil, ErrHomepageUnreachable
	}

	extractor, err := NewExtractor(homepageURL)
	if err != nil {
		return nil, ErrHomepageUnreachable
	}
	homepageLinks := extractor.ExtractLinks(markup)

	result := &DiscoveryResult{
		Homepage: model.PageRecord{
			URL:       homepageURL,
			RawMarkup: markup,
			Links:     homepageLinks,
			Role:      model.RoleHomepage,
		},
	}
	result.RequiredFound, result.RequiredMissing = f.checkRequiredPages(homepageLinks)

	f.logger.Debug("homepage discovered",
		"url", homepageURL,
		"links", len(homepageLinks),
		"required_missing", len(result.RequiredMissing),
	)

	unique := f.seed(homepageURL, homepageLinks)
	f.expand(ctx, unique, homepageLinks)

	result.UniqueURLs = unique.snapshot()
	for _, u := range result.UniqueURLs {
		if IsLikelyContentURL(u) {
			result.ContentURLs = append(result.ContentURLs, u)
		}
	}

	f.logger.Info("frontier discovery complete",
		"unique_urls", len(result.UniqueURLs),
		"content_urls", len(result.ContentURLs),
	)

	return result, nil
}

// checkRequiredPages checks each required legal-page keyword against the
// discovered links by substring match on the lowercased URL.
func (f *Frontier) checkRequiredPages(links []string) (found, missing []string) {
	found = make([]string, 0, len(config.RequiredPages))
	missing = make([]string, 0)

	for _, keyword := range config.RequiredPages {
		present := false
		for _, link := range links {
			if strings.Contains(strings.ToLower(link), keyword) {
				present = true
				break
			}
		}
		if present {
			found = append(found, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}
	return found, missing
}

// seed builds the initial unique set: the homepage plus the first
// seedCap homepage links.
func (f *Frontier) seed(homepageURL string, links []string) *urlSet {
	unique := newURLSet(f.pageCap)
	unique.add(homepageURL)

	for i, link := range links {
		if i >= f.seedCap {
			break
		}
		if f.ignored(link) {
			continue
		}
		unique.add(link)
	}
	return unique
}

// expand performs the bounded one-hop expansion: the first fanout seed
// URLs are fetched concurrently and their links merged into the set.
// Once the cap is reached, in-flight fetches still complete but their
// results are dropped by the set itself.
func (f *Frontier) expand(ctx context.Context, unique *urlSet, seedLinks []string) {
	robots := f.loadRobots(ctx, seedLinks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.fanout)

	expanded := 0
	for _, link := range seedLinks {
		if expanded >= f.fanout {
			break
		}
		if f.ignored(link) || !robotsAllowed(robots, link) {
			continue
		}
		expanded++

		g.Go(func() error {
			if unique.full() {
				return nil
			}

			markup := f.fetcher.Fetch(ctx, link)
			if markup == "" {
				// Logged by the fetcher; a dead seed page never aborts
				// the scan.
				return nil
			}

			extractor, err := NewExtractor(link)
			if err != nil {
				return nil
			}
			for _, discovered := range extractor.ExtractLinks(markup) {
				if f.ignored(discovered) {
					continue
				}
				if !unique.add(discovered) && unique.full() {
					break
				}
			}
			return nil
		})
	}

	// The only errors a worker can return come from context
	// cancellation, which the caller observes separately.
	_ = g.Wait() //nolint:errcheck
}

// loadRobots fetches and parses robots.txt once, best effort. Any
// failure yields nil, which robotsAllowed treats as allow-all.
func (f *Frontier) loadRobots(ctx context.Context, seedLinks []string) *robotstxt.RobotsData {
	if !f.respectRobots || len(seedLinks) == 0 {
		return nil
	}

	base, err := NewExtractor(seedLinks[0])
	if err != nil {
		return nil
	}
	robotsURL := *base.base
	robotsURL.Path = "/robots.txt"
	robotsURL.RawQuery = ""

	body := f.fetcher.Fetch(ctx, robotsURL.String())
	if body == "" {
		return nil
	}

	data, err := robotstxt.FromString(body)
	if err != nil {
		f.logger.Debug("robots.txt unparseable, treating as allow-all", "error", err)
		return nil
	}
	return data
}

// robotsAllowed checks a URL path against the parsed robots data.
func robotsAllowed(robots *robotstxt.RobotsData, link string) bool {
	if robots == nil {
		return true
	}
	extractor, err := NewExtractor(link)
	if err != nil {
		return true
	}
	return robots.TestAgent(extractor.base.Path, "*")
}

// ignored checks a URL against the configured ignore patterns.
func (f *Frontier) ignored(link string) bool {
	for _, pattern := range f.ignorePatterns {
		if pattern != "" && strings.Contains(link, pattern) {
			return true
		}
	}
	return false
}

// urlSet is a capped set of normalized URLs. All mutation goes through
// a single mutex: expansion workers add concurrently, and the cap
// invariant (never more than max entries) must hold at every instant,
// not just after the join barrier.
type urlSet struct {
	mu   sync.Mutex
	urls map[string]bool
	max  int
}

// newURLSet creates a urlSet with the given capacity ceiling.
func newURLSet(max int) *urlSet {
	return &urlSet{
		urls: make(map[string]bool),
		max:  max,
	}
}

// add inserts a normalized URL. It returns false when the URL was
// already present or the set is full.
func (s *urlSet) add(raw string) bool {
	normalized := NormalizeURL(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.urls[normalized] {
		return false
	}
	if len(s.urls) >= s.max {
		return false
	}
	s.urls[normalized] = true
	return true
}

// full reports whether the set reached its cap.
func (s *urlSet) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls) >= s.max
}

// snapshot returns the set's members in sorted order.
func (s *urlSet) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, len(s.urls))
	for u := range s.urls {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
