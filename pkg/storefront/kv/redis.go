package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisScope = "kv"

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StorefrontKey(scope, key string) string
}

// RedisStore shares local SDK state across processes through Redis. Keys
// never expire.
type RedisStore struct {
	backend redisBackend
}

func NewRedisStore(backend redisBackend) *RedisStore {
	return &RedisStore{backend: backend}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.backend.Get(ctx, s.backend.StorefrontKey(redisScope, key))
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.backend.Set(ctx, s.backend.StorefrontKey(redisScope, key), value, 0)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.backend.Del(ctx, s.backend.StorefrontKey(redisScope, key))
}
