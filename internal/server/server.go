// Package server provides the HTTP API of the HR assistant.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/jonathan/hr-assistant/internal/fetch"
	"github.com/jonathan/hr-assistant/internal/parsing"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/prompts"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/server/middleware"
	"github.com/jonathan/hr-assistant/internal/server/ratelimit"
	"github.com/jonathan/hr-assistant/internal/types"
	"github.com/jonathan/hr-assistant/internal/workflow"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 4 << 20

// StreamSettings configures the progress streams of the SSE endpoints.
type StreamSettings struct {
	MaxLifetime time.Duration
	Pace        time.Duration
	Buffer      int
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	orchestrator *workflow.Orchestrator
	resumes      resume.Source
	sink         progress.Sink
	rateLimiter  *ratelimit.Limiter
	logger       *slog.Logger

	stream           StreamSettings
	batchConcurrency int
	weightTolerance  float64
	fetchOpts        *fetch.Options
	corsOrigins      []string
}

// Config holds server configuration
type Config struct {
	Port         int
	Orchestrator *workflow.Orchestrator
	// Resumes serves resumeKey lookups; nil disables them.
	Resumes resume.Source
	// Sink mirrors stream events; nil disables mirroring.
	Sink             progress.Sink
	Stream           StreamSettings
	BatchConcurrency int
	WeightTolerance  float64
	Fetch            *fetch.Options
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
	// RateLimit defaults to ratelimit.DefaultConfig().
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("server requires an orchestrator")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = ratelimit.DefaultConfig()
	}
	tolerance := cfg.WeightTolerance
	if tolerance <= 0 {
		tolerance = types.WeightTolerance
	}
	fetchOpts := cfg.Fetch
	if fetchOpts == nil {
		fetchOpts = fetch.DefaultOptions()
	}

	s := &Server{
		orchestrator:     cfg.Orchestrator,
		resumes:          cfg.Resumes,
		sink:             cfg.Sink,
		rateLimiter:      ratelimit.NewLimiter(rateCfg),
		logger:           logger,
		stream:           cfg.Stream,
		batchConcurrency: cfg.BatchConcurrency,
		weightTolerance:  tolerance,
		fetchOpts:        fetchOpts,
		corsOrigins:      cfg.CORSOrigins,
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// Streams may stay open for their whole lifetime.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /prompts", s.handlePrompts)

	// Job description stages
	mux.HandleFunc("POST /jd/generate", s.handleGenerateJD)
	mux.HandleFunc("POST /jd/focus-points", s.handleFocusPoints)
	mux.HandleFunc("POST /jd/requirements", s.handleRequirements)
	mux.HandleFunc("POST /jd/polish", s.handlePolishJD)
	mux.HandleFunc("POST /jd/extract", s.handleExtractJD)

	// Resume grading
	mux.HandleFunc("POST /resume/grade", s.handleGradeResume)
	mux.HandleFunc("POST /resume/grade/batch", s.handleGradeBatch)
	mux.HandleFunc("POST /resume/grade/stream", s.handleGradeStream)

	// Full workflow
	mux.HandleFunc("POST /workflow/run", s.handleRun)
	mux.HandleFunc("POST /workflow/run/stream", s.handleRunStream)

	// Rejected requests still get logged and carry CORS headers.
	return middleware.RequestID(s.withLogging(s.withCORS(s.withRateLimit(mux))))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.corsOrigins) == 0 || slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, r, info)
			return
		}

		// Set rate limit headers for successful requests
		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
			"request_id", middleware.RequestIDFromContext(r.Context()))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PromptInfo describes one registered template.
type PromptInfo struct {
	Key          string   `json:"key"`
	Placeholders []string `json:"placeholders"`
}

// handlePrompts lists the registered templates and their placeholders.
func (s *Server) handlePrompts(w http.ResponseWriter, _ *http.Request) {
	registry := s.orchestrator.Prompts()
	keys := registry.Keys()
	infos := make([]PromptInfo, 0, len(keys))
	for _, key := range keys {
		tmpl := registry.MustGet(key)
		infos = append(infos, PromptInfo{Key: key, Placeholders: prompts.Placeholders(tmpl)})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"prompts": infos})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes the classified error payload of err.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.errorResponseWith(w, r, err, nil)
}

// errorResponseWith writes the error payload of err plus extra top-level
// fields, such as the partial result of a failed workflow run.
func (s *Server) errorResponseWith(w http.ResponseWriter, r *http.Request, err error, extra map[string]any) {
	status := HTTPStatus(err)
	body := newErrorBody(err, middleware.RequestIDFromContext(r.Context()))

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "kind", body.Kind, "error", err, "request_id", body.RequestID)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "kind", body.Kind, "error", err, "request_id", body.RequestID)
	}

	payload := map[string]any{"error": body}
	for k, v := range extra {
		payload[k] = v
	}
	s.jsonResponse(w, status, payload)
}

// decodeJSON reads a JSON request body into v. Malformed or oversized
// bodies are reported as validation errors.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &parsing.ValidationError{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", maxErr.Limit)}
		case errors.Is(err, io.EOF):
			return &parsing.ValidationError{Field: "body", Message: "is empty"}
		default:
			return &parsing.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
		}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error": map[string]any{
			"kind":      "rate_limit",
			"message":   "Rate limit exceeded. Please try again later.",
			"requestId": middleware.RequestIDFromContext(r.Context()),
		},
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"client", s.extractClientID(r),
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// hasText reports whether s has non-space content.
func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
