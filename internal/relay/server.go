// Package relay is a small CORS-relay server for development: it
// resubmits read-only requests on behalf of a caller whose origin cannot
// reach the mail-dispatch service directly. Mutating methods are refused
// outright; credential-bearing submissions must never transit a relay.
package relay

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jobreach/coldreach/internal/metrics"
)

// Config holds relay server settings.
type Config struct {
	ListenAddr   string
	AllowedHosts []string      // target hosts the relay will fetch; empty = any
	FetchTimeout time.Duration // upstream fetch timeout
}

// Server is the relay HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        Config
	client     *http.Client
	logger     *slog.Logger
}

// NewServer creates a relay server.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8787"
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		logger: logger.With("component", "relay"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/raw", s.handleRaw)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("starting relay server", "addr", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down relay server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy","service":"coldreach-relay"}`))
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		s.count("bad_target")
		http.Error(w, "missing or invalid url parameter", http.StatusBadRequest)
		return
	}
	if !s.hostAllowed(u.Host) {
		s.count("forbidden_host")
		http.Error(w, "target host is not allowed", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		s.count("bad_target")
		http.Error(w, "invalid target url", http.StatusBadRequest)
		return
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.count("upstream_error")
		s.logger.Warn("upstream fetch failed", "target", u.Host, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	s.count("ok")
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("copy upstream body", "error", err)
	}
}

// handleMethodNotAllowed refuses non-GET verbs explicitly; a relay must
// only ever carry read-only traffic.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.count("method_refused")
	http.Error(w, "relay accepts read-only requests only", http.StatusMethodNotAllowed)
}

func (s *Server) hostAllowed(host string) bool {
	if len(s.cfg.AllowedHosts) == 0 {
		return true
	}
	for _, h := range s.cfg.AllowedHosts {
		if h == host {
			return true
		}
	}
	return false
}

func (s *Server) count(outcome string) {
	if m := metrics.Get(); m != nil {
		m.RelayRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}
