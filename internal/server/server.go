package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/classifier"
	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/history"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/override"
)

const (
	// DefaultVersion is reported by the root endpoint.
	DefaultVersion = "1.0.0"

	// maxRequestBody bounds JSON request bodies.
	maxRequestBody = 1 << 20

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second

	checkPrefix = "/api/check/"
)

// Engine is the subset of *engine.Engine the handlers use.
type Engine interface {
	Analyze(ctx context.Context, rawURL, analysisContext string) (*engine.Verdict, error)
	QuickCheck(rawURL string) lexical.QuickResult
	AddOverride(ctx context.Context, kind override.Kind, token, origin string) (engine.OverrideResult, error)
	ListOverrides(kind override.Kind) ([]string, error)
	Stats() history.Stats
	History(limit int) []history.Record
	ModelInfo() classifier.ModelInfo
}

// Server serves the HTTP API.
type Server struct {
	engine     Engine
	logger     *slog.Logger
	version    string
	corsOrigin string
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by the root endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithCORSOrigin sets the allowed CORS origin. "*" allows any origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

// WithClock overrides the clock used for health timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server backed by eng.
func New(eng Engine, opts ...Option) *Server {
	s := &Server{
		engine:     eng,
		version:    DefaultVersion,
		corsOrigin: "*",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/report", s.handleReport)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/model", s.handleModel)
	mux.HandleFunc("POST /api/blacklist/add", s.handleAddOverride(override.Blacklist))
	mux.HandleFunc("POST /api/whitelist/add", s.handleAddOverride(override.Whitelist))
	mux.HandleFunc("GET /api/blacklist", s.handleListOverrides(override.Blacklist))
	mux.HandleFunc("GET /api/whitelist", s.handleListOverrides(override.Whitelist))

	var h http.Handler = withCheckRoute(s.handleCheck, mux)
	h = withRecover(s.logger, h)
	h = withLogging(s.logger, h)
	h = withCORS(s.corsOrigin, h)
	h = withRequestID(s.logger, h)
	return h
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
