// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Kinora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Register Prometheus collectors.
//  4. Initialize the token service.
//  5. Open the snapshot store (memory, PostgreSQL + migrations, or Redis).
//  6. Connect to NATS for change events.
//  7. Build the catalog: load the stored snapshot or seed it.
//  8. Wire HTTP handlers.
//  9. Start HTTP server with graceful shutdown and a final flush.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/kinora/internal/admin"
	"github.com/taibuivan/kinora/internal/api"
	"github.com/taibuivan/kinora/internal/core/movie"
	"github.com/taibuivan/kinora/internal/platform/config"
	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/event"
	"github.com/taibuivan/kinora/internal/platform/metrics"
	"github.com/taibuivan/kinora/internal/platform/migration"
	pgstore "github.com/taibuivan/kinora/internal/platform/postgres"
	redisstore "github.com/taibuivan/kinora/internal/platform/redis"
	"github.com/taibuivan/kinora/internal/platform/sanity"
	"github.com/taibuivan/kinora/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Kinora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("persistence", cfg.Persistence),
		slog.String("seed_source", cfg.SeedSource),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// ── 4. Token Service ──────────────────────────────────────────────────
	var tokens *sec.TokenService
	if cfg.JWTPrivKeyPath != "" {
		tokens, err = sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	} else {
		log.Warn("jwt_ephemeral_keys", slog.String("reason", "JWT_PRIVATE_KEY_PATH is not set; tokens do not survive a restart"))
		tokens, err = sec.NewEphemeralTokenService(constants.AuthIssuer)
	}
	must(log, err, "initialize jwt service")

	// ── 5. Snapshot Store ─────────────────────────────────────────────────
	var checks []api.HealthCheck
	repository := movie.NewMemoryRepository()

	switch cfg.Persistence {
	case config.PersistencePostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		repository = movie.NewPostgresRepository(pool)
		checks = append(checks, api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}})

	case config.PersistenceRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		repository = movie.NewRedisRepository(rdb, cfg.RedisSnapshotKey)
		checks = append(checks, api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}})
	}

	persister := movie.NewPersister(repository, log, appMetrics)

	// ── 6. Change Events ──────────────────────────────────────────────────
	publisher := event.NewPublisher(cfg.NatsURL, log)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			log.Error("nats_close_failed", slog.Any("error", cerr))
		}
	}()
	if cfg.NatsURL != "" {
		checks = append(checks, api.HealthCheck{Name: "nats", Check: publisher.Ping})
	}

	// ── 7. Catalog ────────────────────────────────────────────────────────
	catalog := movie.NewCatalog()

	catalog.Subscribe(func(change movie.Change) {
		appMetrics.ObserveChange(string(change.Kind), len(change.Snapshot))
	})
	if cfg.PersistOnMutation {
		catalog.Subscribe(persister.OnChange)
	}
	catalog.Subscribe(movie.NewChangePublisher(publisher, log, appMetrics).OnChange)

	var hosted movie.HostedSource
	if cfg.SeedSource == config.SeedHosted {
		hosted = sanity.NewClient(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			UseCDN:     cfg.SanityUseCDN,
			Token:      cfg.SanityToken,
		})
	}

	// A saved snapshot wins, even an empty one; the seed only fills a store
	// that has never been written.
	records, restored, err := movie.RestoreOrSeed(startupCtx, repository, func(ctx context.Context) ([]movie.Movie, error) {
		return movie.LoadSeed(ctx, cfg.SeedSource, hosted)
	})
	must(log, err, "load catalog")
	log.Info("catalog_source", slog.Bool("restored", restored), slog.Int("records", len(records)))

	for _, rejection := range catalog.Seed(records) {
		log.Warn("seed_record_rejected",
			slog.Int("index", rejection.Index),
			slog.String("movie_id", rejection.ID),
			slog.String("title", rejection.Title),
			slog.Any("fields", rejection.Fields),
		)
	}
	log.Info("catalog_ready", slog.Int("movies", catalog.Len()))

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(checks, log)

	movieService := movie.NewService(catalog, persister, log, appMetrics)
	adminService := admin.NewService(admin.Account{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}, tokens, cfg.AccessTokenTTL, log)
	if cfg.AdminPasswordHash == "" {
		log.Warn("admin_login_disabled", slog.String("reason", "ADMIN_PASSWORD_HASH is not set"))
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Observer:  appMetrics,
		Admin:     admin.NewHandler(adminService),
		Movie:     movie.NewHandler(movieService),
	})

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	shutdownErr := server.Shutdown(shutdownTimeout)
	if shutdownErr != nil {
		log.Error("shutdown_failed", slog.Any("error", shutdownErr))
	}

	// Final flush so a non-persisting configuration still keeps its state.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), constants.CollaboratorTimeout)
	if _, err := movieService.Flush(flushCtx); err != nil {
		log.Error("final_flush_failed", slog.Any("error", err))
	}
	flushCancel()

	if shutdownErr != nil {
		os.Exit(1)
	}
	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
