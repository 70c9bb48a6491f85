// ============================================================================
// Path Cache - memoized planner results with LRU eviction
// ============================================================================
//
// Package: internal/cache
// Purpose: Memoizes planning results keyed by the full PlanRequest plus the
//          environment version the result was computed against.
//
// Correctness property: a hit is indistinguishable in content from a fresh
// computation for the same request and version. Entries therefore store the
// version at computation time, and any entry whose version no longer matches
// the live environment is treated as stale: it is dropped and recomputed
// transparently, never surfaced to the caller.
//
// Bounded: over capacity, the least-recently-used entry is evicted.
//
// ============================================================================

package cache

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// PlanFunc computes a fresh result on a cache miss.
type PlanFunc func(env *environment.Environment, req types.PlanRequest) (*types.Path, error)

// Observer receives cache events, for metrics export.
type Observer interface {
	RecordCacheLookup(hit bool)
	RecordEviction()
	RecordStaleDrop()
}

// Stats are the cache's observability counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	StaleDrops uint64
}

type entry struct {
	key     types.PlanRequest
	version uint64
	path    *types.Path
}

// Cache is a bounded LRU of planner results.
type Cache struct {
	mu       sync.Mutex
	capacity int
	plan     PlanFunc
	order    *list.List // front = most recently used
	items    map[types.PlanRequest]*list.Element
	stats    Stats
	observer Observer
	logger   *slog.Logger
}

// New creates a cache of the given capacity backed by plan. Capacity below 1
// is clamped to 1.
func New(capacity int, plan PlanFunc) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		plan:     plan,
		order:    list.New(),
		items:    make(map[types.PlanRequest]*list.Element),
		logger:   slog.With("component", "cache"),
	}
}

// SetObserver attaches a metrics sink. Call before the cache is shared.
func (c *Cache) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Get returns the path for the request, from cache when a fresh entry exists
// for the environment's current version, otherwise by recomputation. Planning
// failures are returned as-is and never cached. The returned path is a copy;
// callers cannot corrupt the cached value.
func (c *Cache) Get(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
	version := env.Version()

	c.mu.Lock()
	if elem, ok := c.items[req]; ok {
		ent := elem.Value.(*entry)
		if ent.version == version {
			c.order.MoveToFront(elem)
			c.stats.Hits++
			if c.observer != nil {
				c.observer.RecordCacheLookup(true)
			}
			path := ent.path.Clone()
			c.mu.Unlock()
			return path, nil
		}
		// Stale: computed against an older schedule. Drop and recompute.
		c.order.Remove(elem)
		delete(c.items, req)
		c.stats.StaleDrops++
		if c.observer != nil {
			c.observer.RecordStaleDrop()
		}
	}
	c.stats.Misses++
	if c.observer != nil {
		c.observer.RecordCacheLookup(false)
	}
	c.mu.Unlock()

	path, err := c.plan(env, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[req]; ok {
		// A concurrent caller stored the same request first; keep theirs.
		c.order.MoveToFront(elem)
		return path, nil
	}
	elem := c.order.PushFront(&entry{key: req, version: version, path: path.Clone()})
	c.items[req] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
			c.stats.Evictions++
			if c.observer != nil {
				c.observer.RecordEviction()
			}
		}
	}
	return path, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Snapshot returns a copy of the counters.
func (c *Cache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
