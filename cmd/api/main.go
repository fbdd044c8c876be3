package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/gearmarket-backend/api/controllers"
	"github.com/angelmondragon/gearmarket-backend/api/routes"
	"github.com/angelmondragon/gearmarket-backend/internal/backends"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/env"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	logg := logger.New(logger.Options{ServiceName: "gearmarket-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gearmarket-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := backends.Open(ctx, cfg, logg, backends.Options{})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap backends", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logg.Error(context.Background(), "error closing backends", err)
		}
	}()

	notificationsService, err := notifications.NewService(stores.Notifications, stores.Watcher, logg)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	preferencesService, err := preferences.NewService(stores.Preferences)
	if err != nil {
		logg.Error(ctx, "failed to create preferences service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pingers := map[string]controllers.Pinger{}
	for name, fn := range stores.Pingers() {
		pingers[name] = pingFunc(fn)
	}

	addr := ":" + env.Port(cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": cfg.Store.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			Notifications: notificationsService,
			Preferences:   preferencesService,
			Pingers:       pingers,
			Gatherer:      registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}
}
