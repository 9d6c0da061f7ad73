// Package server exposes the engine's only outward API surface: read-only
// diagnostics plus structured alert ingestion and a manual trigger.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/alert"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/cache"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/engine"
	"github.com/0xPrimordia/lynx-balancer-agent-sub000/internal/recorder"
)

// Config holds server dependencies. SnapshotMaxAge bounds how stale a served
// snapshot may be before the handler refreshes it.
type Config struct {
	Port           int
	Log            zerolog.Logger
	Cache          *cache.BalanceCache
	Lane           *engine.Lane
	Gate           *alert.Gate
	Recorder       recorder.Recorder
	SnapshotMaxAge time.Duration
}

// Server is the diagnostics HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cache          *cache.BalanceCache
	lane           *engine.Lane
	gate           *alert.Gate
	recorder       recorder.Recorder
	snapshotMaxAge time.Duration
}

// New creates the HTTP server.
func New(cfg Config) *Server {
	if cfg.SnapshotMaxAge <= 0 {
		cfg.SnapshotMaxAge = time.Minute
	}
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cache:          cfg.Cache,
		lane:           cfg.Lane,
		gate:           cfg.Gate,
		recorder:       cfg.Recorder,
		snapshotMaxAge: cfg.SnapshotMaxAge,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/report", s.handleReport)
		r.Post("/rebalance", s.handleRebalance)
		r.Post("/alerts", s.handleAlert)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Handler exposes the router, mainly for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving. Blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("diagnostics server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
