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

	"github.com/maldonadorepuestos/storefront/internal/cart"
	"github.com/maldonadorepuestos/storefront/internal/cron"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"github.com/maldonadorepuestos/storefront/pkg/migrate"
	"github.com/maldonadorepuestos/storefront/pkg/outbox"
	"github.com/maldonadorepuestos/storefront/pkg/redis"
)

const (
	serviceName   = "cron-worker"
	lockKeyFormat = "maldonado:cron-worker:lock:%s"
)

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
		logg.Error(ctx, "housekeeping worker stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "housekeeping worker shut down")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer redisClient.Close()

	svc, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}
	metrics.Serve(ctx, cfg.Metrics.Addr, prometheus.DefaultGatherer, logg)
	logg.Info(ctx, "housekeeping worker started")
	return svc.Run(ctx)
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	outboxJob, err := cron.NewOutboxRetentionJob(cron.RetentionJobParams{
		Logger:  logg,
		DB:      dbClient,
		Purger:  cron.PurgerFunc(outbox.NewRepository(dbClient.DB()).DeletePublishedBefore),
		Window:  cfg.Housekeeping.OutboxRetention,
		Metrics: jobMetrics,
	})
	if err != nil {
		return nil, err
	}
	cartJob, err := cron.NewCartRetentionJob(cron.RetentionJobParams{
		Logger:  logg,
		DB:      dbClient,
		Purger:  cart.NewRepository(dbClient.DB()),
		Window:  cfg.Housekeeping.CartRetention,
		Metrics: jobMetrics,
	})
	if err != nil {
		return nil, err
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Housekeeping.LockTTL)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(outboxJob, cartJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Housekeeping.Interval,
	})
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
