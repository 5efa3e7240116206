package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/crawler"
	"github.com/pubscan/pubscan/internal/fetch"
	"github.com/pubscan/pubscan/internal/model"
	"github.com/pubscan/pubscan/internal/pipeline"
	"github.com/pubscan/pubscan/internal/semantic"
)

// snippetMarker is the attribute the installable verification snippet
// carries in a site's markup. verify-script reports whether the target
// page contains it.
const snippetMarker = `data-pubscan-verify`

// Scan actions accepted by the scan endpoint.
const (
	actionScanSite     = "scan-site"
	actionVerifyScript = "verify-script"
)

// Server is the HTTP API around the scan pipeline. It is constructed
// once at startup from the immutable configuration and serves any
// number of concurrent scans.
type Server struct {
	cfg        *config.Config
	classifier *semantic.Classifier
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a Server listening on the configured address.
func New(cfg *config.Config, classifier *semantic.Classifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		classifier: classifier,
		logger:     logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the API routes. Exposed separately so tests can mount
// them on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// ListenAndServe blocks serving the API until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// scanRequest is the body of the scan endpoint.
type scanRequest struct {
	URL    string `json:"url"`
	Action string `json:"action"`
}

// errorResponse is the uniform error shape for every non-2xx answer.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// verifyResponse answers a verify-script request.
type verifyResponse struct {
	Found bool   `json:"found"`
	URL   string `json:"url"`
}

// healthResponse answers the health check.
type healthResponse struct {
	Status               string `json:"status"`
	ClassifierConfigured bool   `json:"classifier_configured"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a url field")
		return
	}

	target, err := model.NewCrawlTarget(req.URL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_url", "url must be an absolute http(s) URL")
		return
	}

	switch req.Action {
	case actionVerifyScript:
		s.verifyScript(r.Context(), w, target)
	case actionScanSite, "":
		s.scanSite(r.Context(), w, target)
	default:
		s.writeError(w, http.StatusBadRequest, "invalid_action", "action must be scan-site or verify-script")
	}
}

// scanSite runs the full pipeline and answers with the finished report.
func (s *Server) scanSite(ctx context.Context, w http.ResponseWriter, target model.CrawlTarget) {
	scan := pipeline.NewScan(target)
	p := pipeline.NewScanPipeline(s.cfg, target, s.classifier, s.logger)

	if err := p.Execute(ctx, scan); err != nil {
		if errors.Is(err, crawler.ErrHomepageUnreachable) {
			s.writeError(w, http.StatusInternalServerError, "homepage_unreachable", "the site's homepage could not be fetched")
			return
		}
		s.logger.Error("scan failed",
			slog.String("target", target.String()),
			slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "scan_failed", "the scan could not be completed")
		return
	}

	s.writeJSON(w, http.StatusOK, scan.Report)
}

// verifyScript fetches the page once and checks for the installation
// snippet marker. An unreachable page is simply "not found"; the caller
// is asking a yes/no question.
func (s *Server) verifyScript(ctx context.Context, w http.ResponseWriter, target model.CrawlTarget) {
	fetcher := fetch.New(
		fetch.WithTimeout(s.cfg.FetchTimeout),
		fetch.WithMaxRedirects(s.cfg.MaxRedirects),
		fetch.WithUserAgent(s.cfg.UserAgent),
		fetch.WithMaxBodySize(s.cfg.MaxBodySize),
		fetch.WithLogger(s.logger),
	)
	markup := fetcher.Fetch(ctx, target.String())

	s.writeJSON(w, http.StatusOK, verifyResponse{
		Found: strings.Contains(markup, snippetMarker),
		URL:   target.String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	configured := s.classifier != nil && s.classifier.Configured()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:               "ok",
		ClassifierConfigured: configured,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: code, Message: message})
}
