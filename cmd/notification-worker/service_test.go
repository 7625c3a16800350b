package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
)

type fakeDependency struct{ err error }

func (f fakeDependency) Ping(context.Context) error { return f.err }

type fakeRunner struct {
	err    error
	called bool
}

func (f *fakeRunner) Run(context.Context) error {
	f.called = true
	return f.err
}

func newTestService(t *testing.T, redisErr error, consumer *fakeRunner) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:               &config.Config{},
		Logger:               logger.Nop(),
		Redis:                fakeDependency{err: redisErr},
		PubSub:               fakeDependency{},
		NotificationConsumer: consumer,
	})
	require.NoError(t, err)
	return svc
}

func TestRunStopsWhenDependencyUnavailable(t *testing.T) {
	consumer := &fakeRunner{}
	svc := newTestService(t, errors.New("connection refused"), consumer)

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
	assert.False(t, consumer.called)
}

func TestRunReturnsConsumerError(t *testing.T) {
	consumer := &fakeRunner{err: errors.New("subscription deleted")}
	svc := newTestService(t, nil, consumer)

	err := svc.Run(context.Background())
	require.EqualError(t, err, "subscription deleted")
	assert.True(t, consumer.called)
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	_, err := NewService(ServiceParams{
		Config: &config.Config{},
		Logger: logger.Nop(),
		Redis:  fakeDependency{},
		PubSub: fakeDependency{},
	})
	require.EqualError(t, err, "notification consumer is required")
}
