package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"huntboard/internal/admin"
	"huntboard/internal/admintoken"
	"huntboard/internal/directory/export"
	"huntboard/internal/directory/loader"
	"huntboard/internal/directory/service"
	"huntboard/internal/directory/store/memory"
	"huntboard/internal/directory/store/postgres"
	"huntboard/internal/notify"
	"huntboard/internal/platform/config"
	"huntboard/internal/platform/database"
	"huntboard/internal/platform/health"
	"huntboard/internal/platform/httpserver"
	"huntboard/internal/platform/logger"
	"huntboard/internal/platform/metrics"
	"huntboard/internal/platform/middleware"
)

const version = "1.0.0"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New()

	log.Info("initializing huntboard",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"auto_refresh", cfg.AutoRefreshEnabled,
	)

	m := metrics.New()
	notifier := notify.NewLogNotifier(log, 20)

	// Data source: Postgres when configured, otherwise the seeded in-memory
	// demo dataset.
	var source loader.Source
	var pool *database.Pool
	if cfg.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		pool, err = database.New(dbCfg)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		source = postgres.New(pool.DB())
		log.Info("using postgres data source")
	} else {
		source = memory.NewSeeded(time.Now())
		log.Info("no database configured, using seeded in-memory data source")
	}

	ld := loader.New(source,
		loader.WithLogger(log),
		loader.WithMaxAttempts(cfg.LoadMaxAttempts),
		loader.WithBackoffBase(cfg.LoadBackoffBase),
		loader.WithTimeout(cfg.LoadTimeout),
	)

	directory := service.New(ld, service.Config{
		RefreshDebounce:     cfg.RefreshDebounce,
		AutoRefreshEnabled:  cfg.AutoRefreshEnabled,
		AutoRefreshInterval: cfg.AutoRefreshInterval,
	},
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithNotifier(notifier),
	)
	defer directory.Close()

	// Populate the snapshot before serving. A failed initial load is
	// recorded in the refresh state rather than aborting startup.
	if err := directory.Refresh(context.Background(), true); err != nil {
		log.Warn("initial data load failed", "error", err)
	}
	directory.StartAutoRefresh()

	if cfg.AdminPasswordHash == "" {
		log.Warn("no admin password hash configured, admin login is disabled",
			"hint", "set HUNTBOARD_ADMIN_PASSWORD_HASH to a bcrypt hash",
		)
	}

	tokens := admintoken.New(cfg.AdminJWTSigningKey, cfg.AdminTokenTTL)
	adminHandler := admin.New(directory, export.New(version, cfg.Environment), tokens,
		cfg.AdminEmail, cfg.AdminPasswordHash, log,
		admin.WithMetrics(m),
		admin.WithNotifier(notifier),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterInfo("refresh", func() any {
		return directory.RefreshState()
	})
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		adminHandler.RegisterPublic(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdmin(tokens, log))
		adminHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	if err := httpserver.Shutdown(srv, 10*time.Second); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
