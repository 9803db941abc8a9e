// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Verbum HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire scripture, translation and pipeline services.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/verbum/internal/api"
	"github.com/taibuivan/verbum/internal/core/devotion"
	"github.com/taibuivan/verbum/internal/core/pipeline"
	"github.com/taibuivan/verbum/internal/core/scripture"
	"github.com/taibuivan/verbum/internal/platform/config"
	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/migration"
	pgstore "github.com/taibuivan/verbum/internal/platform/postgres"
	redisstore "github.com/taibuivan/verbum/internal/platform/redis"
	"github.com/taibuivan/verbum/internal/platform/sec"
	"github.com/taibuivan/verbum/internal/platform/translate"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log, cfg.Debug), "run migrations")

	// ── 6. Operator tokens ────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token service")

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────

	// Lives until shutdown; background runs and the rate limiter hang off it.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	scriptureStore := scripture.NewPostgresStore(pool)
	scriptureService := scripture.NewService(scriptureStore, scriptureStore)

	translator := translate.NewCachedTranslator(
		translate.NewClient(cfg.Translator.URL,
			translate.WithAPIKey(cfg.Translator.APIKey),
			translate.WithRateLimit(cfg.Translator.RPS),
			translate.WithTimeout(cfg.Translator.Timeout),
		),
		translate.NewRedisCache(rdb),
		cfg.Translator.CacheTTL,
		log,
	)

	orchestrator := pipeline.NewOrchestrator(
		devotion.NewPostgresRepository(pool),
		scriptureService,
		translator,
		pipeline.Config{
			BatchSize:       cfg.Pipeline.BatchSize,
			BatchPause:      cfg.Pipeline.BatchPause,
			TitlePauseEvery: cfg.Pipeline.TitlePauseEach,
			TitlePause:      cfg.Pipeline.TitlePause,
			RecordPause:     cfg.Pipeline.RecordPause,
		},
		log,
	)

	runStore := pipeline.NewRedisRunStore(rdb, cfg.Pipeline.SnapshotTTL)
	launcher := pipeline.NewLauncher(serverCtx, orchestrator, runStore, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Scripture:  scripture.NewHandler(scriptureService),
		Migrations: pipeline.NewHandler(launcher, runStore),
	}

	server := api.NewServer(serverCtx, cfg, log, tokens, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
	}

	// Running migrations observe the cancelled context and settle as failed.
	serverCancel()
	launcher.Wait()

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Limited to startup wiring. After startup, all errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
