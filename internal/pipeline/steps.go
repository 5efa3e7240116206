package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pubscan/pubscan/internal/analyze"
	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/crawler"
	"github.com/pubscan/pubscan/internal/fetch"
	"github.com/pubscan/pubscan/internal/model"
	"github.com/pubscan/pubscan/internal/score"
	"github.com/pubscan/pubscan/internal/semantic"
)

// DiscoverStep runs frontier discovery and records the URL inventory on
// the report. It is the only step whose failure aborts a scan: with no
// homepage there is nothing to analyze and nothing to score.
type DiscoverStep struct {
	frontier *crawler.Frontier
}

// NewDiscoverStep creates the discovery step.
func NewDiscoverStep(frontier *crawler.Frontier) *DiscoverStep {
	return &DiscoverStep{frontier: frontier}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do runs discovery and fills the report's URL inventory.
func (s *DiscoverStep) Do(ctx context.Context, scan *Scan) error {
	discovery, err := s.frontier.Discover(ctx, scan.Target)
	if err != nil {
		return err
	}

	scan.Discovery = discovery
	scan.Report.RequiredPagesFound = discovery.RequiredFound
	scan.Report.RequiredPagesMissing = discovery.RequiredMissing
	scan.Report.ContentPageCount = len(discovery.ContentURLs)
	return nil
}

// HomepageStep analyzes the homepage from the markup discovery already
// fetched: quality issues land on the report's homepage slot, policy
// violations become an ordinary finding, and the homepage body seeds
// the duplicate detector so template clones of the front page flag.
type HomepageStep struct {
	analyzer *pageAnalyzer
}

// NewHomepageStep creates the homepage analysis step.
func NewHomepageStep(classifier *semantic.Classifier, logger *slog.Logger) *HomepageStep {
	return &HomepageStep{analyzer: newPageAnalyzer(classifier, logger)}
}

// Name returns the step name.
func (s *HomepageStep) Name() string {
	return "homepage"
}

// Do analyzes the already-fetched homepage.
func (s *HomepageStep) Do(ctx context.Context, scan *Scan) error {
	page := scan.Discovery.Homepage

	finding, signal, ok := s.analyzer.analyze(ctx, scan, page)
	if !ok {
		// An unparseable or near-empty homepage is a quality problem,
		// not a fatal one: discovery already proved it reachable.
		scan.Report.HomepageIssues = []string{"homepage has no analyzable content"}
		return nil
	}

	scan.Report.HomepageIssues = signal.Issues
	// Quality issues are scored via the homepage slot; carrying them on
	// the finding too would double-count them.
	finding.QualityIssues = nil
	scan.Report.AddFinding(finding)
	return nil
}

// AnalyzeStep fetches and analyzes every discovered content URL with
// bounded concurrency. Findings land on the report in completion order,
// which means duplicate flags can differ between runs for borderline
// pages; the report is best-effort by contract.
type AnalyzeStep struct {
	fetcher     *fetch.Fetcher
	analyzer    *pageAnalyzer
	concurrency int
	logger      *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalysisConcurrency overrides the concurrent page-analysis bound.
func WithAnalysisConcurrency(n int) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithAnalyzeLogger sets the step logger.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates the content-page analysis step.
func NewAnalyzeStep(fetcher *fetch.Fetcher, classifier *semantic.Classifier, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		fetcher:     fetcher,
		concurrency: config.AnalysisConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.analyzer = newPageAnalyzer(classifier, s.logger)
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do fetches and analyzes the content URLs. Individual page failures
// are skipped; the step itself only fails on cancellation.
func (s *AnalyzeStep) Do(ctx context.Context, scan *Scan) error {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, pageURL := range scan.Discovery.ContentURLs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			markup := s.fetcher.Fetch(ctx, pageURL)
			if markup == "" {
				s.logger.Debug("content page unavailable", slog.String("url", pageURL))
				return nil
			}

			page := model.PageRecord{URL: pageURL, RawMarkup: markup, Role: model.RoleContent}
			finding, signal, ok := s.analyzer.analyze(ctx, scan, page)
			if !ok {
				return nil
			}
			finding.QualityIssues = signal.Issues

			mu.Lock()
			scan.Report.AddFinding(finding)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// ScoreStep finalizes the report: score, aggregated suggestions,
// summary, and scan duration.
type ScoreStep struct{}

// NewScoreStep creates the scoring step.
func NewScoreStep() *ScoreStep {
	return &ScoreStep{}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do computes the final score and summary.
func (s *ScoreStep) Do(_ context.Context, scan *Scan) error {
	score.Finalize(scan.Report)
	scan.Report.Duration = time.Since(scan.Report.ScannedAt)
	return nil
}

// pageAnalyzer runs the shared per-page analysis sequence used for the
// homepage and every content page: parse, length gate, duplicate check,
// quality, rule-based detection, semantic classification.
type pageAnalyzer struct {
	classifier *semantic.Classifier
	logger     *slog.Logger
}

func newPageAnalyzer(classifier *semantic.Classifier, logger *slog.Logger) *pageAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &pageAnalyzer{classifier: classifier, logger: logger}
}

// analyze runs the sequence against one fetched page. ok is false when
// the page was skipped: unparseable markup or a body under the
// analyzable floor. Skipped pages produce no finding and register
// nothing with the duplicate detector.
func (a *pageAnalyzer) analyze(ctx context.Context, scan *Scan, page model.PageRecord) (model.PageFinding, model.QualitySignal, bool) {
	doc, err := analyze.NewDocument(page.URL, page.RawMarkup)
	if err != nil {
		a.logger.Warn("unparseable page skipped",
			slog.String("url", page.URL),
			slog.String("error", err.Error()))
		return model.PageFinding{}, model.QualitySignal{}, false
	}

	body := doc.BodyText()
	if len(body) < config.MinAnalyzableChars {
		a.logger.Debug("near-empty page skipped", slog.String("url", page.URL))
		return model.PageFinding{}, model.QualitySignal{}, false
	}

	finding := model.PageFinding{URL: page.URL}

	if scan.Duplicates.CheckAndRegister(body) {
		finding.Violations = append(finding.Violations,
			model.NewViolation(model.KindDuplicateContent, model.TruncateExcerpt(body), 1))
	}

	signal := analyze.AnalyzeQuality(doc)
	finding.Violations = append(finding.Violations, analyze.DetectViolations(doc)...)

	if a.classifier != nil {
		pc := semantic.BuildContext(doc, page.RawMarkup, page.Role.String())
		result := a.classifier.Classify(ctx, pc)
		finding.Violations = append(finding.Violations, result.Violations...)
		finding.Suggestions = append(finding.Suggestions, result.Suggestions...)
	}

	finding.Violations = model.FilterConfident(finding.Violations)
	return finding, signal, true
}
