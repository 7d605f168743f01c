// Package parsecache memoizes WKT parse results per feature. Entries are
// keyed by feature identity and carry a hash of the raw WKT they were parsed
// from; a lookup with a different raw string misses instead of serving a
// stale geometry. The cache is an explicit object with a constructor so
// tests can build and discard instances freely.
package parsecache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/keys"
	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
	"github.com/linnea-strand/wkt-spatial-tools/internal/observability"
)

type entry struct {
	sum  uint64
	geom *model.Geometry
}

type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, entry]
}

func New(size int) *Cache {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, entry](size)
	return &Cache{lru: c}
}

// Lookup returns the memoized geometry for (table, id) if it was parsed from
// exactly this raw string.
func (c *Cache) Lookup(table, id, raw string) (*model.Geometry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(keys.FeatureKey(table, id))
	if !ok {
		observability.IncParseCache("miss")
		return nil, false
	}
	if e.sum != xxhash.Sum64String(raw) {
		observability.IncParseCache("stale")
		return nil, false
	}
	observability.IncParseCache("hit")
	return e.geom, true
}

// Store memoizes a parse result. Callers must not mutate g afterwards.
func (c *Cache) Store(table, id, raw string, g *model.Geometry) {
	if g == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(keys.FeatureKey(table, id), entry{sum: xxhash.Sum64String(raw), geom: g})
}

// Invalidate drops the entry for one feature, if present.
func (c *Cache) Invalidate(table, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(keys.FeatureKey(table, id))
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
