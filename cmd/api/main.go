package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/carvalue/internal/cache"
	"github.com/geocoder89/carvalue/internal/config"
	"github.com/geocoder89/carvalue/internal/db"
	httpx "github.com/geocoder89/carvalue/internal/http"
	"github.com/geocoder89/carvalue/internal/http/middlewares"
	"github.com/geocoder89/carvalue/internal/observability"
	"github.com/geocoder89/carvalue/internal/redisclient"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/geocoder89/carvalue/internal/repo/memory"
	"github.com/geocoder89/carvalue/internal/repo/postgres"
	"github.com/geocoder89/carvalue/internal/repo/sqlite"
	"github.com/geocoder89/carvalue/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Warn("tracer shutdown failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	users, reports, closeStore, err := openStores(startCtx, cfg, prom)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.EstimateCacheTTL > 0 {
		reports = cache.NewEstimateCache(reports, cfg.EstimateCacheTTL)
	}

	if err := db.EnsureAdminUser(startCtx, users, cfg); err != nil {
		return err
	}

	limiter, closeLimiter := newAuthLimiter(startCtx, cfg, log)
	defer closeLimiter()

	router, err := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Users:    users,
		Reports:  reports,
		Sessions: session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge, cfg.Env == "prod"),
		Limiter:  limiter,
		Prom:     prom,
		Gatherer: reg,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "db_driver", cfg.DBDriver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")

	return nil
}

// openStores connects the configured backend and makes sure its schema exists.
func openStores(ctx context.Context, cfg config.Config, obs repo.Observer) (repo.UserStore, repo.ReportStore, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return postgres.NewUsersRepo(pool, obs), postgres.NewReportsRepo(pool, obs), pool.Close, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.EnsureSQLiteSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewUsersRepo(conn, obs), sqlite.NewReportsRepo(conn, obs), func() { conn.Close() }, nil

	default:
		return memory.NewUsersRepo(), memory.NewReportsRepo(), func() {}, nil
	}
}

// newAuthLimiter prefers redis so limits hold across instances, and falls
// back to the in-process limiter when redis is absent or unreachable.
func newAuthLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (middlewares.Limiter, func()) {
	memoryLimiter := middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	if cfg.RedisAddr == "" {
		return memoryLimiter, func() {}
	}

	client := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx); err != nil {
		log.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return memoryLimiter, func() {}
	}

	return middlewares.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow), func() { _ = client.Close() }
}
