package catalog

import (
	"context"
	"sync"
	"time"
)

// Cache is the time-bounded snapshot of the product catalog. One Cache exists
// per store connection; everything that reads products reads through it, and
// every write path calls Invalidate so the next read is guaranteed fresh.
type Cache struct {
	repo Repository
	ttl  time.Duration

	mu         sync.RWMutex
	snapshot   []Product
	capturedAt time.Time
}

// NewCache wraps a repository with a TTL-bounded snapshot.
func NewCache(repo Repository, ttl time.Duration) *Cache {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &Cache{repo: repo, ttl: ttl}
}

// TTL reports the configured snapshot lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Products returns a copy of all known products. The snapshot is served when
// it is younger than the TTL and forceRefresh is false; otherwise the catalog
// is re-read from the store and the snapshot replaced atomically. Callers
// always receive their own copy — mutating it cannot poison the cache.
func (c *Cache) Products(ctx context.Context, forceRefresh bool) ([]Product, error) {
	if !forceRefresh {
		c.mu.RLock()
		if c.snapshot != nil && time.Since(c.capturedAt) <= c.ttl {
			out := append([]Product(nil), c.snapshot...)
			c.mu.RUnlock()
			return out, nil
		}
		c.mu.RUnlock()
	}

	products, err := c.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = append([]Product(nil), products...)
	c.capturedAt = time.Now()
	c.mu.Unlock()

	return products, nil
}

// Invalidate drops the snapshot unconditionally.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.capturedAt = time.Time{}
	c.mu.Unlock()
}
