package pipeline

import (
	"log/slog"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/crawler"
	"github.com/pubscan/pubscan/internal/fetch"
	"github.com/pubscan/pubscan/internal/model"
	"github.com/pubscan/pubscan/internal/semantic"
)

// NewScanPipeline builds the standard scan pipeline for one target:
// discovery, homepage analysis, content-page analysis, scoring. The
// fetcher picks up the target host's per-site overrides (cookie,
// headers, ignore patterns) from the configuration file, when present.
func NewScanPipeline(cfg *config.Config, target model.CrawlTarget, classifier *semantic.Classifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	site := cfg.SiteConfig(target.Host())

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxRedirects(cfg.MaxRedirects),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(site.Headers),
		fetch.WithCookie(site.Cookie),
		fetch.WithLogger(logger),
	)

	frontier := crawler.NewFrontier(fetcher,
		crawler.WithRespectRobots(cfg.RespectRobots),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFrontierLogger(logger),
	)

	p := New(WithLogger(logger))
	p.AddSteps(
		NewDiscoverStep(frontier),
		NewHomepageStep(classifier, logger),
		NewAnalyzeStep(fetcher, classifier, WithAnalyzeLogger(logger)),
		NewScoreStep(),
	)
	return p
}
