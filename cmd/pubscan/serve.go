package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/semantic"
	"github.com/pubscan/pubscan/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown; in-flight scans longer than
// this are abandoned.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pubscan HTTP API server",
		Long: `Serve starts an HTTP server exposing the scan pipeline as a JSON API.

Endpoints:
  POST /api/scan    {"url": "...", "action": "scan-site"}      full site scan
  POST /api/scan    {"url": "...", "action": "verify-script"}  verify snippet install
  GET  /api/health  server and classifier status

Examples:
  # Listen on the default address
  pubscan serve

  # Listen on a custom address
  pubscan serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultListenAddr,
		"Listen address for the HTTP API")
	cmd.Flags().String("classifier-endpoint", "",
		"Base URL of an OpenAI-compatible classifier endpoint (default: api.openai.com)")
	cmd.Flags().String("classifier-model", config.DefaultClassifierModel,
		"Model requested from the classifier endpoint")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ListenAddr, err = cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	endpoint, err := cmd.Flags().GetString("classifier-endpoint")
	if err != nil {
		return err
	}
	if endpoint != "" {
		cfg.ClassifierEndpoint = endpoint
	}

	cfg.ClassifierModel, err = cmd.Flags().GetString("classifier-model")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	var classifier *semantic.Classifier
	if cfg.ClassifierConfigured() {
		classifier = semantic.NewClassifier(cfg, logger)
	} else {
		logger.Info("no classifier API key configured, using rule-based detection only")
	}

	srv := server.New(cfg, classifier, logger)

	// Shut down gracefully on interrupt so in-flight scans can finish.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP API server", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("received shutdown signal, stopping server...", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
