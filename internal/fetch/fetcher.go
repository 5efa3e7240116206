package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pubscan/pubscan/internal/config"
)

// Fetcher issues single HTTP GET requests against target sites.
//
// Design decision: TLS certificate verification is disabled. Publisher
// sites under review frequently run with expired or mis-chained
// certificates, and a compliance scan of page content is not the place
// to enforce transport hygiene; a broken certificate must not hide a
// policy violation. Nothing sensitive is ever sent to the target.
type Fetcher struct {
	// client is the HTTP client shared by all fetches.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// headers are extra headers applied to every request.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// logger receives fetch warnings.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithMaxRedirects bounds redirect following per request.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= n {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets a Cookie header applied to every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithMaxBodySize limits the response body bytes read per fetch.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithLogger sets the logger for fetch warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with the fixed browser-like profile.
func New(opts ...Option) *Fetcher {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Scanning sites with broken certs is in scope
		},
		MaxIdleConnsPerHost: config.AnalysisConcurrency,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   config.DefaultFetchTimeout,
			Transport: transport,
		},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	WithMaxRedirects(config.DefaultMaxRedirects)(f)

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a single GET and returns the page markup, or an empty
// string on any failure. It never returns an error: the caller's only
// decision is "do I have markup or not".
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		f.logger.Warn("invalid fetch URL", "url", pageURL, "error", err)
		return ""
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing useful to do with a close error

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("fetch returned non-2xx status",
			"url", pageURL,
			"status", resp.StatusCode,
		)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Warn("fetch body read failed", "url", pageURL, "error", err)
		return ""
	}

	markup := string(body)
	if strings.TrimSpace(markup) == "" {
		f.logger.Warn("fetch returned empty body", "url", pageURL)
		return ""
	}

	return markup
}
