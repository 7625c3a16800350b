package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/quote"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/search"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "quotecart",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeFn, err := newApp(ctx, *cfg, logg)
	if err != nil {
		logg.Error(ctx, "quotecart init failed", err)
		os.Exit(1)
	}
	code := a.run(ctx, os.Args[1:])
	if err := closeFn(); err != nil {
		logg.WarnErr(ctx, "closing storage", err)
	}
	os.Exit(code)
}

func newApp(ctx context.Context, cfg config.ClientConfig, logg *logger.Logger) (*app, func() error, error) {
	store, closeFn, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}

	opts := gateway.OptionsFromConfig(cfg)
	opts.Logger = logg
	client, err := gateway.New(opts)
	if err != nil {
		return nil, closeFn, err
	}

	localCart := cart.NewLocalStore(store, logg)
	if err := localCart.Load(ctx); err != nil {
		logg.WarnErr(ctx, "cart load failed, starting empty", err)
	}
	recent := search.NewRecentSearches(store, logg)
	if err := recent.Load(ctx); err != nil {
		logg.WarnErr(ctx, "recent searches load failed", err)
	}

	composer := quote.NewComposer(client, quote.ComposerOptions{
		WhatsAppNumber: cfg.WhatsAppNumber,
		Launcher:       quote.WriterLauncher{W: os.Stdout},
		Logger:         logg,
	})

	return &app{
		catalog:  client,
		cart:     localCart,
		recent:   recent,
		composer: composer,
		delay:    cfg.ConfirmationDelay,
		debounce: cfg.SearchDebounce,
		out:      os.Stdout,
		errOut:   os.Stderr,
		logg:     logg,
	}, closeFn, nil
}
