// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mindvault/mindvault/internal/ai"
	"github.com/mindvault/mindvault/internal/analytics"
	"github.com/mindvault/mindvault/internal/platform/config"
	"github.com/mindvault/mindvault/internal/platform/constants"
	"github.com/mindvault/mindvault/internal/platform/middleware"
	"github.com/mindvault/mindvault/internal/users/account"
	"github.com/mindvault/mindvault/internal/users/auth"
	"github.com/mindvault/mindvault/internal/vault/chat"
	"github.com/mindvault/mindvault/internal/vault/file"
	"github.com/mindvault/mindvault/internal/vault/memory"
	"github.com/mindvault/mindvault/internal/vault/task"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics is the Prometheus registry exposed on /metrics.
	Metrics *prometheus.Registry

	// Auth handles authentication routes (register, login, refresh, logout).
	Auth *auth.Handler

	// Account handles profile management and user administration.
	Account *account.Handler

	// Memory handles knowledge capture and search.
	Memory *memory.Handler

	// Task handles personal task tracking.
	Task *task.Handler

	// Chat handles persisted AI conversations.
	Chat *chat.Handler

	// AI handles direct one-shot inference.
	AI *ai.Handler

	// File handles object storage records and presigned URLs.
	File *file.Handler

	// Analytics handles the usage dashboard.
	Analytics *analytics.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(h.Metrics, promhttp.HandlerOpts{}))

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/memories", h.Memory.Routes())
		api.Mount("/tasks", h.Task.Routes())
		api.Mount("/chats", h.Chat.Routes())
		api.Mount("/ai", h.AI.Routes())
		api.Mount("/files", h.File.Routes())
		api.Mount("/analytics", h.Analytics.Routes())
		api.Mount("/", h.Account.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
