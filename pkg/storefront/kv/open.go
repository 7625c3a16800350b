package kv

import (
	"context"
	"fmt"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	pkgredis "github.com/maldonadorepuestos/storefront/pkg/redis"
)

// Open builds the store selected by cfg.Storage. The returned close func is
// never nil.
func Open(ctx context.Context, cfg config.ClientConfig) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage {
	case config.ClientStorageMemory:
		return NewMemoryStore(), noop, nil
	case config.ClientStorageRedis:
		client, err := pkgredis.NewFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("kv: redis: %w", err)
		}
		return NewRedisStore(client), client.Close, nil
	case config.ClientStorageFile, "":
		store, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("kv: unsupported storage %q", cfg.Storage)
	}
}
