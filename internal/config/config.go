package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where a constant implements a documented pipeline bound (page caps,
// concurrency, confidence floor) the value is fixed by the scoring
// contract and changing it changes what a score means.
const (
	// DefaultFetchTimeout is the per-request timeout for target-site
	// fetches. 20 seconds tolerates slow shared hosting while keeping a
	// single stuck page from stalling a batch for long. It is the only
	// cancellation mechanism in the pipeline: there is no scan-wide
	// deadline and no retry.
	DefaultFetchTimeout = 20 * time.Second

	// DefaultMaxRedirects bounds redirect following per fetch.
	DefaultMaxRedirects = 5

	// DefaultUserAgent is a browser-like User-Agent. Publisher sites
	// frequently serve reduced markup (or a block page) to obvious bots,
	// which would skew every downstream signal.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMaxBodySize limits the response body size read per fetch.
	// 5MB covers any real article page while bounding memory per batch.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// HomepageSeedCap is how many homepage links seed the unique-page set.
	HomepageSeedCap = 100

	// ExpansionFanout is how many seed URLs are fetched during the
	// one-hop frontier expansion.
	ExpansionFanout = 20

	// PageCap is the hard ceiling on the unique crawl set. The scan is
	// best-effort by contract; the cap keeps large sites bounded in both
	// time and memory.
	PageCap = 500

	// AnalysisConcurrency is the number of simultaneous in-flight
	// fetch-and-classify operations per batch. The next batch does not
	// start until the previous batch has fully settled.
	AnalysisConcurrency = 12

	// ThinContentWords is the word-count floor below which a page is
	// flagged as thin content.
	ThinContentWords = 300

	// MinAnalyzableChars is the body-text floor below which a page is
	// skipped entirely: no finding, no duplicate registration.
	MinAnalyzableChars = 200

	// SemanticContextBudget bounds the characters of page context sent
	// to the semantic classifier per page.
	SemanticContextBudget = 16000

	// DefaultClassifierTimeout is the timeout for one semantic
	// classification call.
	DefaultClassifierTimeout = 60 * time.Second

	// DefaultClassifierModel is the model requested from the semantic
	// classifier endpoint.
	DefaultClassifierModel = "gpt-4o-mini"

	// DefaultListenAddr is the HTTP API listen address for serve mode.
	DefaultListenAddr = ":8080"

	// ClassifierAPIKeyEnv is the environment variable consulted for the
	// semantic classifier credential when no flag is given.
	ClassifierAPIKeyEnv = "PUBSCAN_CLASSIFIER_API_KEY"

	// AppName is the application name used for XDG directory paths.
	AppName = "pubscan"
)

// RequiredPages are the legal-page keywords every publisher site is
// expected to expose. Their absence is scored against the site.
var RequiredPages = []string{"about", "contact", "privacy", "terms", "disclaimer"}

// Config holds all configuration for pubscan. It is populated from CLI
// flags (and optionally a config file) once at startup and passed through
// the application by value reference; nothing mutates it after Validate.
//
// Design decision: A single flat struct instead of nested sub-configs.
// The option count is manageable, and nesting would add indirection
// without benefit.
type Config struct {
	// FetchTimeout is the per-request timeout for target-site fetches.
	FetchTimeout time.Duration

	// MaxRedirects bounds redirect following per fetch.
	MaxRedirects int

	// UserAgent is the User-Agent header sent to target sites.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// RespectRobots enables best-effort robots.txt checking during
	// frontier expansion. Fetch or parse failures are treated as
	// allow-all so an unreachable robots.txt never blocks a scan.
	RespectRobots bool

	// ClassifierEndpoint is the base URL of the semantic classifier
	// service (an OpenAI-compatible chat completions API).
	ClassifierEndpoint string

	// ClassifierModel is the model name sent with classification requests.
	ClassifierModel string

	// ClassifierAPIKey authenticates classifier requests. Empty disables
	// semantic classification; the pipeline degrades to rule-based
	// detection only.
	ClassifierAPIKey string

	// ClassifierTimeout is the timeout for one classification call.
	ClassifierTimeout time.Duration

	// ListenAddr is the HTTP API listen address for serve mode.
	ListenAddr string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport, MarkdownReport, and XLSXReport select the CLI report
	// format. At most one may be set; the default is the plain text
	// report.
	JSONReport     bool
	MarkdownReport bool
	XLSXReport     bool

	// ReportFile is the output file path for the report. Empty writes
	// to stdout; XLSX is binary and defaults into the XDG data
	// directory instead.
	ReportFile string

	// Targets is the list of site URLs to scan in CLI mode.
	Targets []string

	// BatchSize is the number of concurrent site scans in CLI mode.
	BatchSize int

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config with all defaults applied.
//
// Design decision: A constructor instead of zero values because most
// defaults are non-zero, and the constructor doubles as documentation
// of what the defaults are.
func NewConfig() *Config {
	return &Config{
		FetchTimeout:      DefaultFetchTimeout,
		MaxRedirects:      DefaultMaxRedirects,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		RespectRobots:     true,
		ClassifierModel:   DefaultClassifierModel,
		ClassifierTimeout: DefaultClassifierTimeout,
		ClassifierAPIKey:  os.Getenv(ClassifierAPIKeyEnv),
		ListenAddr:        DefaultListenAddr,
		BatchSize:         1,
	}
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any scanning begins.
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRedirects < 0 {
		return ErrInvalidRedirects
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.XLSXReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}
	return nil
}

// SiteConfig returns the per-site overrides for the given host, or the
// zero value when no config file was loaded.
func (c *Config) SiteConfig(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}

// ClassifierConfigured reports whether semantic classification can run.
func (c *Config) ClassifierConfigured() bool {
	return c.ClassifierAPIKey != ""
}

// XDGDataDir returns the XDG data directory for pubscan. Reports written
// without an explicit path land here.
// On Linux: ~/.local/share/pubscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pubscan.
// On Linux: ~/.config/pubscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
