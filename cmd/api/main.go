// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Courtside admin gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (session slot).
//  4. Connect to PostgreSQL and run migrations when a journal database is configured.
//  5. Build the upstream gateways (primary API, identity service).
//  6. Wire HTTP handlers.
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

	"github.com/taibuivan/courtside/internal/api"
	"github.com/taibuivan/courtside/internal/auth"
	"github.com/taibuivan/courtside/internal/gateway"
	"github.com/taibuivan/courtside/internal/guard"
	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/config"
	"github.com/taibuivan/courtside/internal/platform/constants"
	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/migration"
	pgstore "github.com/taibuivan/courtside/internal/platform/postgres"
	redisstore "github.com/taibuivan/courtside/internal/platform/redis"
	"github.com/taibuivan/courtside/internal/prefs"
	"github.com/taibuivan/courtside/internal/reconcile"
	"github.com/taibuivan/courtside/internal/roster"
	"github.com/taibuivan/courtside/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)
	log.Info("[Courtside] service_initializing")

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
		slog.String("primary_api", cfg.PrimaryAPIURL),
		slog.String("identity_api", cfg.IdentityAPIURL),
		slog.Bool("journal", cfg.JournalEnabled()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	m := metrics.New()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	health := api.HealthDependencies{
		CheckCache: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}

	// ── 4. Reconciliation journal ────────────────────────────────────────
	var journal reconcile.Journal = reconcile.NewMemoryJournal()
	if cfg.JournalEnabled() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		journal = reconcile.NewPostgresJournal(pool)
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	} else {
		log.Warn("journal_in_memory", slog.String("hint", "set DATABASE_URL to persist reconciliation sagas"))
	}

	// ── 5. Upstream gateways ──────────────────────────────────────────────
	primary := gateway.New(gateway.Config{
		Service:       "primary",
		BaseURL:       cfg.PrimaryAPIURL,
		Timeout:       cfg.UpstreamTimeout,
		AuthScheme:    "Bearer",
		SendRole:      true,
		TrailingSlash: true,
		Metrics:       m,
	})

	directory := identity.New(identity.Config{
		BaseURL:         cfg.IdentityAPIURL,
		Timeout:         cfg.UpstreamTimeout,
		ServiceEmail:    cfg.IdentityServiceEmail,
		ServicePassword: cfg.IdentityServicePassword,
		Metrics:         m,
	})

	// ── 6. Domain wiring ──────────────────────────────────────────────────
	slot := session.NewRedisSlot(rdb, cfg.SessionTTL)
	sessions := session.NewManager(slot, session.ManagerConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.IsProduction(),
	}, m)

	reconciler := reconcile.NewService(directory, reconcile.NewPrimaryProfiles(primary), journal, m)
	enricher := roster.NewEnricher(directory, roster.EnricherConfig{
		CacheSize: cfg.PersonCacheSize,
		CacheTTL:  cfg.PersonCacheTTL,
	}, m)

	liveness, readiness := api.NewHealthHandlers(health, log)
	guardOptions := guard.Options{LoginPath: cfg.LoginPath, LandingPath: cfg.LandingPath}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   m,
		Sessions:  sessions,
		Auth:      auth.NewHandler(auth.NewService(directory), sessions),
		Roster:    roster.NewHandler(roster.NewCatalog(primary), enricher, reconciler, guardOptions),
		Reconcile: reconcile.NewHandler(reconciler),
		Prefs:     prefs.NewHandler(prefs.NewStore(slot)),
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "courtside"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
