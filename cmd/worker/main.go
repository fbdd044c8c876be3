package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/gearmarket-backend/internal/backends"
	"github.com/angelmondragon/gearmarket-backend/internal/delivery"
	"github.com/angelmondragon/gearmarket-backend/internal/email"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/internal/triggers"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/events"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/metrics"
	"github.com/angelmondragon/gearmarket-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gearmarket-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gearmarket-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "store": cfg.Store.Backend})

	stores, err := backends.Open(ctx, cfg, logg, backends.Options{RequireRedis: true})
	requireResource(ctx, logg, "backends", err)
	defer func() {
		if err := stores.Close(); err != nil {
			logg.Error(context.Background(), "error closing backends", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	records, err := notifications.NewService(stores.Notifications, stores.Watcher, logg)
	requireResource(ctx, logg, "notifications service", err)

	deliveryMetrics := metrics.NewDeliveryMetrics(prometheus.DefaultRegisterer)
	renderer := email.NewRenderer(email.NewStore(), cfg.App.PublicBaseURL())

	chain, err := delivery.NewChain(delivery.ChainParams{
		Config:     cfg.Email,
		Renderer:   renderer,
		Transports: delivery.TransportsFor(cfg.Email, stores.Firestore(), logg),
		Resolver:   stores.Resolver,
		Metrics:    deliveryMetrics,
		Logger:     logg,
	})
	requireResource(ctx, logg, "email provider chain", err)
	logg.Info(logg.WithField(ctx, "provider", string(chain.Provider())), "email provider selected")

	triggerService, err := triggers.NewService(triggers.ServiceParams{
		Records:  records,
		Gate:     preferences.NewGate(stores.Preferences, logg),
		Sender:   chain,
		Renderer: renderer,
		Items:    stores.Items,
		Metrics:  deliveryMetrics,
		Logger:   logg,
	})
	requireResource(ctx, logg, "trigger service", err)

	dedupe, err := events.NewDedupe(stores.Redis, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "event dedupe", err)

	consumer, err := triggers.NewConsumer(triggerService, pubsubClient.DomainSubscription(), dedupe, logg)
	requireResource(ctx, logg, "trigger consumer", err)

	svc, err := NewService(ServiceParams{
		Logger:   logg,
		Pingers:  stores.Pingers(),
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	requireResource(ctx, logg, "worker service", err)

	logg.Info(ctx, "starting worker")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
