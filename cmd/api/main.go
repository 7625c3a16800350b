package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/maldonadorepuestos/storefront/api/routes"
	"github.com/maldonadorepuestos/storefront/internal/auth"
	"github.com/maldonadorepuestos/storefront/internal/banners"
	"github.com/maldonadorepuestos/storefront/internal/cart"
	"github.com/maldonadorepuestos/storefront/internal/categories"
	"github.com/maldonadorepuestos/storefront/internal/orders"
	product "github.com/maldonadorepuestos/storefront/internal/products"
	"github.com/maldonadorepuestos/storefront/internal/quotes"
	"github.com/maldonadorepuestos/storefront/internal/users"
	"github.com/maldonadorepuestos/storefront/pkg/auth/session"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/metrics"
	"github.com/maldonadorepuestos/storefront/pkg/migrate"
	"github.com/maldonadorepuestos/storefront/pkg/outbox"
	"github.com/maldonadorepuestos/storefront/pkg/redis"
)

const (
	serviceName     = "api"
	shutdownTimeout = 15 * time.Second
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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT.AccessTTL())
	if err != nil {
		return err
	}

	services, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		return err
	}

	obs := routes.Observability{
		HTTP:     metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, obs, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"db_driver":    cfg.DB.Driver,
		"quote_notify": cfg.FeatureFlags.QuoteNotification,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	conn := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	categoryService, err := categories.NewService(categories.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	productService, err := product.NewService(product.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	bannerService, err := banners.NewService(banners.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cart.NewService(cart.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		Repo:   quotes.NewRepository(conn),
		Tx:     dbClient,
		Outbox: outbox.NewService(outbox.NewRepository(conn), logg),
		Notify: cfg.FeatureFlags.QuoteNotification,
		Logger: logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(conn),
		Cart:   cart.NewRepository(conn),
		Tx:     dbClient,
		Logger: logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:       authService,
		Categories: categoryService,
		Products:   productService,
		Banners:    bannerService,
		Cart:       cartService,
		Quotes:     quoteService,
		Orders:     orderService,
	}, nil
}
