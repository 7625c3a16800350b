package session

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type sessionStore interface {
	StoreAccessSession(ctx context.Context, accessID, userID string, ttl time.Duration) error
	HasAccessSession(ctx context.Context, accessID string) (bool, error)
	RevokeAccessSession(ctx context.Context, accessID string) error
}

// Manager tracks live access tokens by jti so logout can revoke them before
// they expire.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager. ttl should match the access token lifetime.
func NewManager(store sessionStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Start records a freshly minted access token.
func (m *Manager) Start(ctx context.Context, accessID string, userID int64) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.StoreAccessSession(ctx, accessID, fmt.Sprint(userID), m.ttl)
}

// HasSession reports whether accessID is still live.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	return m.store.HasAccessSession(ctx, accessID)
}

// Revoke ends the session. Revoking an unknown id is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	return m.store.RevokeAccessSession(ctx, accessID)
}
