package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
)

const (
	// RecentStorageKey is where recent searches live in the kv store.
	RecentStorageKey = "recentSearches"
	MaxRecent        = 5
)

// RecentSearches is a most-recent-first list of at most MaxRecent distinct
// queries. Persist failures are logged and memory stays authoritative.
type RecentSearches struct {
	mu    sync.Mutex
	items []string
	store kv.Store
	logg  *logger.Logger
}

func NewRecentSearches(store kv.Store, logg *logger.Logger) *RecentSearches {
	if store == nil {
		store = kv.NewMemoryStore()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RecentSearches{items: []string{}, store: store, logg: logg}
}

// Load restores the persisted list. Missing or corrupt data yields an empty
// list.
func (r *RecentSearches) Load(ctx context.Context) error {
	raw, err := r.store.Get(ctx, RecentStorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logg.WarnErr(ctx, "search: ignoring corrupt recent searches", err)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = []string{}
	for i := len(items) - 1; i >= 0; i-- {
		r.items = insertRecent(r.items, items[i])
	}
	return nil
}

// Add moves query to the front. Blank queries are ignored.
func (r *RecentSearches) Add(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = insertRecent(r.items, query)
	r.persist(ctx)
}

func (r *RecentSearches) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

func (r *RecentSearches) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = []string{}
	if err := r.store.Delete(ctx, RecentStorageKey); err != nil {
		r.logg.WarnErr(ctx, "search: clear recent searches", err)
	}
}

func (r *RecentSearches) persist(ctx context.Context) {
	raw, err := json.Marshal(r.items)
	if err == nil {
		err = r.store.Set(ctx, RecentStorageKey, raw)
	}
	if err != nil {
		r.logg.WarnErr(ctx, "search: persist recent searches", err)
	}
}

func insertRecent(items []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	out := make([]string, 0, MaxRecent)
	out = append(out, query)
	for _, q := range items {
		if q == query {
			continue
		}
		if len(out) == MaxRecent {
			break
		}
		out = append(out, q)
	}
	return out
}
