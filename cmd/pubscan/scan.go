package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/log"
	"github.com/pubscan/pubscan/internal/model"
	"github.com/pubscan/pubscan/internal/pipeline"
	"github.com/pubscan/pubscan/internal/report"
	"github.com/pubscan/pubscan/internal/semantic"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [site-url]",
		Short: "Scan a publisher website for policy compliance",
		Long: `Scan crawls a publisher website and audits it for ad-network policy
compliance.

It discovers pages from the homepage, classifies each URL, analyzes
content pages for:
- Policy violations (gambling, piracy, adult content, scams)
- Undisclosed affiliate links and excessive ad density
- Thin and duplicate content
- Missing required pages (about, contact, privacy, terms, disclaimer)

and produces a 0-100 compliance score with remediation suggestions.

Examples:
  # Scan a single site
  pubscan scan https://example.com

  # Scan multiple sites concurrently
  pubscan scan -b 4 https://site1.com https://site2.com

  # Output JSON report to a file
  pubscan scan --json -o report.json https://example.com

  # Use a custom configuration file
  pubscan scan -c myconfig.yaml https://example.com

Configuration file (.pubscan) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      ignorePatterns:
        - "/wp-admin/"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each page fetch")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent to target sites")
	cmd.Flags().Bool("no-robots", false,
		"Skip robots.txt checking during crawling")

	// Semantic classifier flags
	cmd.Flags().String("classifier-endpoint", "",
		"Base URL of an OpenAI-compatible classifier endpoint (default: api.openai.com)")
	cmd.Flags().String("classifier-model", config.DefaultClassifierModel,
		"Model requested from the classifier endpoint")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", 1,
		"Number of concurrent site scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pubscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().BoolP("xlsx", "x", false,
		"Output Excel report (defaults to a file in the XDG data directory)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobots = !noRobots

	endpoint, err := cmd.Flags().GetString("classifier-endpoint")
	if err != nil {
		return nil, err
	}
	if endpoint != "" {
		cfg.ClassifierEndpoint = endpoint
	}

	cfg.ClassifierModel, err = cmd.Flags().GetString("classifier-model")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.XLSXReport, err = cmd.Flags().GetBool("xlsx")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (site URLs)
	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler masks credential-bearing attributes such as API
// keys and cookies before they reach the log output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return config.ErrNoTarget
	}

	// Validate and normalize all target URLs before any network work.
	targets := make([]model.CrawlTarget, 0, len(cfg.Targets))
	for _, raw := range cfg.Targets {
		target, err := model.NewCrawlTarget(raw)
		if err != nil {
			return fmt.Errorf("invalid site URL %q: %w", raw, err)
		}
		targets = append(targets, target)
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"classifier", cfg.ClassifierConfigured(),
	)

	// Semantic classification is optional; without an API key the
	// pipeline degrades to rule-based detection only.
	var classifier *semantic.Classifier
	if cfg.ClassifierConfigured() {
		classifier = semantic.NewClassifier(cfg, logger)
	} else {
		logger.Info("no classifier API key configured, using rule-based detection only")
	}

	// Use batch processor for parallel scanning if multiple targets
	if len(targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, targets, classifier, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, targets, classifier, logger)
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, targets []model.CrawlTarget, classifier *semantic.Classifier, logger *slog.Logger) error {
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := pipeline.NewScanPipeline(cfg, target, classifier, logger)
		scan := pipeline.NewScan(target)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, scan); err != nil {
			logger.Error("scan failed", "target", target.String(), "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, scan.Report); err != nil {
			logger.Error("report failed", "target", target.String(), "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, targets []model.CrawlTarget, classifier *semantic.Classifier, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(targets), cfg.BatchSize)

	startTime := time.Now()

	// The factory receives the target, so per-site overrides (cookies,
	// headers, ignore patterns) apply in batch mode too.
	bp := pipeline.NewBatchProcessor(
		func(target model.CrawlTarget) *pipeline.Pipeline {
			return pipeline.NewScanPipeline(cfg, target, classifier, logger)
		},
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	results := bp.ProcessBatch(ctx, targets)

	failed := 0
	for i, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[%d/%d] Scan error for %s: %v\n",
				i+1, len(results), result.Target, result.Err)
			continue
		}

		fmt.Printf("[%d/%d] Scan completed: %s\n", i+1, len(results), result.Target)

		if err := outputReport(cfg, result.Report); err != nil {
			logger.Error("report failed", "target", result.Target.String(), "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s (%d succeeded, %d failed)\n",
		elapsed.Round(time.Millisecond), len(results)-failed, failed)

	if failed == len(results) {
		return errors.New("all scans failed")
	}
	return nil
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, siteReport *model.SiteReport) error {
	// XLSX is binary; without an explicit path, write it into the XDG
	// data directory instead of the terminal.
	reportFile := cfg.ReportFile
	if cfg.XLSXReport && reportFile == "" {
		reportFile = filepath.Join(config.XDGDataDir(),
			fmt.Sprintf("pubscan-%s.xlsx", time.Now().Format("20060102-150405")))
		fmt.Printf("Writing XLSX report to %s\n", reportFile)
	}

	// Determine output destination
	var output *os.File
	if reportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may contain excerpts from authenticated pages.
		f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.XLSXReport:
		w = report.NewXLSXWriter(output)
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output)
	}

	if _, err := w.Write(siteReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
