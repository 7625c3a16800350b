// Package idempotency lets Pub/Sub consumers skip redelivered events.
//
// Each (consumer, event id) pair gets one Redis marker,
// mr:idempotency:evt:processed:<consumer>:<event_id>, written with SETNX and
// kept for the configured TTL. The TTL must outlive the subscription's
// redelivery window or late duplicates get through.
package idempotency

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/redis"
)

const processedScope = "evt:processed:"

var (
	ErrConsumerRequired = errors.New("idempotency: consumer name is required")
	ErrEventIDRequired  = errors.New("idempotency: event id is required")
)

type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	now   func() time.Time
}

// NewManager accepts a zero ttl, which keeps markers forever.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency: store is required")
	case ttl < 0:
		return nil, errors.New("idempotency: ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// CheckAndMarkProcessed claims eventID for consumer. It reports true when an
// earlier delivery already holds the claim. The marker stores the claim
// time, which helps when tracing duplicates by hand.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	k, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	claimed, err := m.store.SetNX(ctx, k, strconv.FormatInt(m.now().Unix(), 10), m.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete drops the claim so the next redelivery runs the handler again.
func (m *Manager) Delete(ctx context.Context, consumer, eventID string) error {
	k, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, k)
}

func (m *Manager) key(consumer, eventID string) (string, error) {
	if consumer == "" {
		return "", ErrConsumerRequired
	}
	if eventID == "" {
		return "", ErrEventIDRequired
	}
	return m.store.IdempotencyKey(processedScope+consumer, eventID), nil
}
