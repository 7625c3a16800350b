package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maldonadorepuestos/storefront/internal/notifications"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/email"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/idempotency"
	"github.com/maldonadorepuestos/storefront/pkg/outbox/registry"
	"github.com/maldonadorepuestos/storefront/pkg/pubsub"
	"github.com/maldonadorepuestos/storefront/pkg/redis"
)

const serviceName = "notification-worker"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName
	logg := logger.ForService(serviceName, cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "serviceKind": serviceName})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notification worker stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "notification worker shut down")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return fmt.Errorf("bootstrap pubsub: %w", err)
	}
	defer pubsubClient.Close()
	if err := pubsubClient.EnsureSubscriptions(ctx); err != nil {
		return fmt.Errorf("verify subscriptions: %w", err)
	}

	consumer, err := buildConsumer(ctx, cfg, logg, redisClient, pubsubClient)
	if err != nil {
		return err
	}
	svc, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		NotificationConsumer: consumer,
	})
	if err != nil {
		return err
	}

	metrics.Serve(ctx, cfg.Metrics.Addr, prometheus.DefaultGatherer, logg)
	logg.Info(ctx, "notification worker started")
	return svc.Run(ctx)
}

func buildConsumer(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, pubsubClient *pubsub.Client) (*notifications.Consumer, error) {
	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return nil, fmt.Errorf("event registry: %w", err)
	}
	idem, err := idempotency.NewManager(redisClient, cfg.Outbox.ProcessedTTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency manager: %w", err)
	}
	if cfg.Sendgrid.APIKey == "" {
		logg.Warn(ctx, "sendgrid api key missing, quote emails will only be logged")
	}
	return notifications.NewConsumer(notifications.ConsumerParams{
		Subscription: pubsubClient.QuoteSubscription(),
		Registry:     eventRegistry,
		Idempotency:  idem,
		Sender:       email.NewSender(cfg.Sendgrid, logg),
		AdminEmail:   cfg.Notifications.AdminEmail,
		Metrics:      metrics.NewConsumerMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
	})
}
