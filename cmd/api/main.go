// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// Command api is the entry point for the MindVault HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to MinIO and ensure the bucket.
//  6. Run database migrations (idempotent).
//  7. Wire domain services and HTTP handlers.
//  8. Start the session janitor and the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mindvault/mindvault/internal/ai"
	"github.com/mindvault/mindvault/internal/analytics"
	"github.com/mindvault/mindvault/internal/api"
	"github.com/mindvault/mindvault/internal/platform/config"
	"github.com/mindvault/mindvault/internal/platform/constants"
	"github.com/mindvault/mindvault/internal/platform/metrics"
	"github.com/mindvault/mindvault/internal/platform/migration"
	"github.com/mindvault/mindvault/internal/platform/objstore"
	pgstore "github.com/mindvault/mindvault/internal/platform/postgres"
	redisstore "github.com/mindvault/mindvault/internal/platform/redis"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/internal/users/account"
	"github.com/mindvault/mindvault/internal/users/auth"
	"github.com/mindvault/mindvault/internal/vault/chat"
	"github.com/mindvault/mindvault/internal/vault/file"
	"github.com/mindvault/mindvault/internal/vault/memory"
	"github.com/mindvault/mindvault/internal/vault/task"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "mindvault"))
	slog.SetDefault(log)

	log.Info("[MindVault] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "mindvault"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(registry)

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 6. MinIO ──────────────────────────────────────────────────────────
	store, err := objstore.New(objstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	must(log, err, "connect to minio")

	// ── 7. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 8. Token Service ──────────────────────────────────────────────────
	// Malformed TTL strings fall back to the default; that is worth a log
	// line and a metric because it silently shortens sessions.
	accessTTL, ok := cfg.AccessTokenTTL()
	if !ok {
		log.Warn("ttl_fallback_applied",
			slog.String("variable", "JWT_ACCESS_TTL"),
			slog.String("raw", cfg.JWTAccessTTL),
			slog.Duration("fallback", accessTTL),
		)
		metrics.TTLFallbacks.WithLabelValues("JWT_ACCESS_TTL").Inc()
	}
	refreshTTL, ok := cfg.RefreshTokenTTL()
	if !ok {
		log.Warn("ttl_fallback_applied",
			slog.String("variable", "JWT_REFRESH_TTL"),
			slog.String("raw", cfg.JWTRefreshTTL),
			slog.Duration("fallback", refreshTTL),
		)
		metrics.TTLFallbacks.WithLabelValues("JWT_REFRESH_TTL").Inc()
	}

	jwtSvc, err := sec.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, constants.AuthIssuer, accessTTL, refreshTTL)
	must(log, err, "initialize jwt service")

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckObjectStore: func() error {
			return store.Healthy(context.Background())
		},
	}, log)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	verificationTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, resetTokenRepository, verificationTokenRepository, jwtSvc, log)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	accountService := account.NewService(accountRepository, sessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	memoryRepository := memory.NewPostgresRepository(pool)
	memoryService := memory.NewService(memoryRepository, log)
	memoryHandler := memory.NewHandler(memoryService)

	taskRepository := task.NewPostgresRepository(pool)
	taskService := task.NewService(taskRepository, log)
	taskHandler := task.NewHandler(taskService)

	aiEngine := ai.NewEngine(log)
	aiHandler := ai.NewHandler(aiEngine)

	chatRepository := chat.NewPostgresRepository(pool)
	chatService := chat.NewService(chatRepository, aiEngine, ai.NewContextStore(rdb), log)
	chatHandler := chat.NewHandler(chatService)

	fileRepository := file.NewPostgresRepository(pool)
	fileService := file.NewService(fileRepository, store, cfg.MaxFileSize, cfg.PresignedURLTTL, log)
	fileHandler := file.NewHandler(fileService)

	analyticsService := analytics.NewService(memoryService, taskService, chatService, fileService, log)
	analyticsHandler := analytics.NewHandler(analyticsService)

	// ── 11. Session Janitor ───────────────────────────────────────────────
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go sweepSessions(janitorCtx, authService, log)

	// ── 12. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   registry,
		Auth:      authHandler,
		Account:   accountHandler,
		Memory:    memoryHandler,
		Task:      taskHandler,
		Chat:      chatHandler,
		AI:        aiHandler,
		File:      fileHandler,
		Analytics: analyticsHandler,
	}

	server := api.NewServer(janitorCtx, cfg, log, authService, handlers)

	// ── 13. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// sweepSessions periodically deletes expired refresh sessions. Sessions are
// already rejected at use time once expired; the sweep just keeps the table
// from accumulating dead rows.
func sweepSessions(ctx context.Context, authService *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(constants.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := authService.SweepExpiredSessions(ctx)
			if err != nil {
				log.Error("session_sweep_failed", slog.Any("error", err))
				continue
			}
			if swept > 0 {
				metrics.SessionsSwept.Add(float64(swept))
				log.Info("sessions_swept", slog.Int64("count", swept))
			}
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
