package gateway

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Resource groups cached responses that share a TTL.
type Resource string

const (
	ResourceCategories Resource = "categories"
	ResourceBanners    Resource = "banners"
	ResourceProduct    Resource = "product"
	ResourceProducts   Resource = "products"
	ResourceSearch     Resource = "search"
	ResourceDefault    Resource = "default"
)

// DefaultTTLs are the per-resource freshness windows.
var DefaultTTLs = map[Resource]time.Duration{
	ResourceCategories: 5 * time.Minute,
	ResourceBanners:    2 * time.Minute,
	ResourceProduct:    time.Minute,
	ResourceProducts:   30 * time.Second,
	ResourceSearch:     15 * time.Second,
	ResourceDefault:    30 * time.Second,
}

// responseCache stores raw "data" payloads so every hit decodes into a fresh
// value and callers never share mutable results.
type responseCache struct {
	byResource map[Resource]*expirable.LRU[string, []byte]
}

func newResponseCache(size int, ttls map[Resource]time.Duration) *responseCache {
	if size <= 0 {
		return nil
	}
	c := &responseCache{byResource: make(map[Resource]*expirable.LRU[string, []byte], len(DefaultTTLs))}
	for res, ttl := range DefaultTTLs {
		if override, ok := ttls[res]; ok {
			ttl = override
		}
		c.byResource[res] = expirable.NewLRU[string, []byte](size, nil, ttl)
	}
	return c
}

func (c *responseCache) lru(res Resource) *expirable.LRU[string, []byte] {
	if l, ok := c.byResource[res]; ok {
		return l
	}
	return c.byResource[ResourceDefault]
}

func (c *responseCache) get(res Resource, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru(res).Get(key)
}

func (c *responseCache) put(res Resource, key string, raw []byte) {
	if c == nil {
		return
	}
	c.lru(res).Add(key, raw)
}

// invalidate drops every key containing pattern. An empty pattern purges all.
func (c *responseCache) invalidate(pattern string) int {
	if c == nil {
		return 0
	}
	removed := 0
	for _, l := range c.byResource {
		if pattern == "" {
			removed += l.Len()
			l.Purge()
			continue
		}
		for _, key := range l.Keys() {
			if strings.Contains(key, pattern) && l.Remove(key) {
				removed++
			}
		}
	}
	return removed
}
