package pipeline

import (
	"context"
	"log/slog"

	"github.com/pubscan/pubscan/internal/analyze"
	"github.com/pubscan/pubscan/internal/crawler"
	"github.com/pubscan/pubscan/internal/model"
)

// Scan is the mutable state threaded through one scan's steps. Each
// step reads what earlier steps produced and writes its own results.
// A Scan belongs to exactly one pipeline execution and is never shared.
type Scan struct {
	// Target is the validated scan target.
	Target model.CrawlTarget

	// Report accumulates the scan output. It starts empty and is
	// complete once the scoring step has run.
	Report *model.SiteReport

	// Discovery holds the frontier result: the fetched homepage, the
	// unique URL set, and the content URL subset. Populated by the
	// discovery step.
	Discovery *crawler.DiscoveryResult

	// Duplicates is the scan-scoped duplicate detector shared by the
	// homepage and content analysis steps.
	Duplicates *analyze.Detector
}

// NewScan creates the empty scan state for a target.
func NewScan(target model.CrawlTarget) *Scan {
	return &Scan{
		Target:     target,
		Report:     model.NewSiteReport(target.String()),
		Duplicates: analyze.NewDetector(),
	}
}

// Step is one stage of a scan. Steps execute in sequence; each receives
// the accumulated scan state.
//
// Design decision: An interface rather than function types because
// steps carry configuration state and a Name() for logging, and the
// interface leaves room for per-step policy later.
type Step interface {
	// Do executes the step. An error is fatal to the scan; recoverable
	// problems (one page failing to fetch) belong in the report, not
	// the error return.
	Do(ctx context.Context, scan *Scan) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes an ordered list of steps against one scan.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline. Steps are added with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs the steps in order, stopping at the first error.
// Cancellation is checked between steps; steps handle their own
// timeouts internally.
func (p *Pipeline) Execute(ctx context.Context, scan *Scan) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("scan cancelled",
				slog.String("step", step.Name()),
				slog.String("target", scan.Target.String()))
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			slog.String("step", step.Name()),
			slog.String("target", scan.Target.String()))

		if err := step.Do(ctx, scan); err != nil {
			p.logger.Error("step failed",
				slog.String("step", step.Name()),
				slog.String("target", scan.Target.String()),
				slog.String("error", err.Error()))
			return err
		}

		p.logger.Debug("step completed",
			slog.String("step", step.Name()),
			slog.String("target", scan.Target.String()))
	}
	return nil
}
