// Package web serves the read-only admin listing of the geo dataset.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/geoentities/internal/config"
	"github.com/JonMunkholm/geoentities/internal/core"
	mw "github.com/JonMunkholm/geoentities/internal/web/middleware"
)

// Store is what the admin listing reads from.
type Store interface {
	core.Catalog
	Ping(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	PageSize       int
	RequestTimeout time.Duration
	TrustedProxies []string
	APIKeys        []string     // required on /api routes when non-empty
	Metrics        http.Handler // served on /metrics when set
}

// Server is the admin HTTP server.
type Server struct {
	store    Store
	opts     Options
	router   *chi.Mux
	pageSize int

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// NewServer creates a Server with its middleware and routes in place.
func NewServer(store Store, opts Options) *Server {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	s := &Server{
		store:    store,
		opts:     opts,
		router:   chi.NewRouter(),
		pageSize: pageSize,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.opts.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, core.ErrNotFound, http.StatusNotFound)
	})

	s.router.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	// Pages; each also answers JSON on Accept: application/json.
	s.router.Get("/", s.handleDashboard)
	s.mountListings(s.router)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.opts.APIKeys))
		r.Get("/counts", s.handleCounts)
		s.mountListings(r)
	})
}

func (s *Server) mountListings(r chi.Router) {
	r.Get("/regions", s.handleRegions)
	r.Get("/subregions", s.handleSubRegions)
	r.Get("/countries", s.handleCountries)
	r.Get("/states", s.handleStates)
	r.Get("/cities", s.handleCities)
}

// Start listens on cfg.Addr until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown, including one that happened before Start.
func (s *Server) Start(cfg config.ServerConfig) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	s.server = srv
	s.mu.Unlock()

	slog.Info("starting admin server", "addr", cfg.Addr())
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP makes the Server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// Pages carry an inline stylesheet and no scripts.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; form-action 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON. Encoding errors are only logged since the
// status line has been sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "json encode error", "error", err)
	}
}
