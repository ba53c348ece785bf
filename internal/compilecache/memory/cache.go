// Package memory implements an in-process compile cache, the analogue
// of the teacher's metaCache/metaEntry pattern: a map guarded by a
// mutex, each entry expiring on its own TTL rather than a global sweep.
package memory

import (
	"context"
	"sync"
	"time"

	"simjudge/internal/compilecache"
)

type entry struct {
	path      string
	expiresAt time.Time
}

// Cache is a process-local compile cache with per-key TTL expiry and
// single-flight de-duplication of concurrent misses on the same key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	inFlight map[string]*sync.WaitGroup

	hits, misses int64
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		inFlight: make(map[string]*sync.WaitGroup),
	}
}

// GetOrInsert implements compilecache.Cache.
func (c *Cache) GetOrInsert(ctx context.Context, key string, ttl time.Duration, compile compilecache.CompileFunc) (string, error) {
	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && (e.expiresAt.IsZero() || time.Now().Before(e.expiresAt)) {
			c.hits++
			c.mu.Unlock()
			return e.path, nil
		}
		if wg, building := c.inFlight[key]; building {
			c.mu.Unlock()
			wg.Wait()
			continue
		}

		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inFlight[key] = wg
		c.misses++
		c.mu.Unlock()

		path, err := compile(ctx)

		c.mu.Lock()
		delete(c.inFlight, key)
		if err == nil {
			expiresAt := time.Time{}
			if ttl > 0 {
				expiresAt = time.Now().Add(ttl)
			}
			c.entries[key] = entry{path: path, expiresAt: expiresAt}
		}
		c.mu.Unlock()
		wg.Done()

		return path, err
	}
}

// Stats implements compilecache.Cache.
func (c *Cache) Stats() compilecache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return compilecache.Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// Invalidate drops key from the cache regardless of TTL.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
