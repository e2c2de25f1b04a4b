package cache

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// EvictReason says why an entry left the cache.
type EvictReason int

const (
	// EvictCapacity means the entry was removed to make room for a new key.
	EvictCapacity EvictReason = iota
	// EvictExpired means the entry was found expired on access.
	EvictExpired
	// EvictInvalidated means the entry was removed by Invalidate.
	EvictInvalidated
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	case EvictInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Entry is a cached value and its absolute expiry. Entries are replaced
// wholesale, never updated in place.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Expirations   uint64
	Invalidations uint64
	Size          int
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	onEvict func(Key, EvictReason)
}

// WithClock overrides the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEvictHook registers fn to be called, outside the cache lock, for every
// entry removed by capacity eviction, lazy expiry or invalidation.
func WithEvictHook(fn func(Key, EvictReason)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// Cache is an in-memory result cache bounded by Policy.MaxEntries.
//
// Contract:
// - Concurrency: safe for concurrent use; no reader observes more than
// MaxEntries entries or a partially written entry.
// - Errors: operations never fail; a miss is a normal outcome.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[Key]Entry[V]
	policy  Policy
	limit   RateLimit
	limited bool

	now     func() time.Time
	onEvict func(Key, EvictReason)

	hits          atomic.Uint64
	misses        atomic.Uint64
	evictions     atomic.Uint64
	expirations   atomic.Uint64
	invalidations atomic.Uint64
}

// New creates a cache with the given policy.
func New[V any](policy Policy, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	policy.MaxEntries = policy.maxEntries()

	return &Cache[V]{
		entries: make(map[Key]Entry[V], policy.MaxEntries),
		policy:  policy,
		now:     o.now,
		onEvict: o.onEvict,
	}
}

// Policy returns the effective policy.
func (c *Cache[V]) Policy() Policy {
	return c.policy
}

// Get returns the value for key if present and not yet expired. An expired
// entry is removed as a side effect.
func (c *Cache[V]) Get(_ context.Context, key Key) (V, bool) {
	var zero V
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	if !now.Before(entry.ExpiresAt) {
		// Another writer may have replaced the entry since the read lock was released.
		c.mu.Lock()
		e, exists := c.entries[key]
		expired := exists && !now.Before(e.ExpiresAt)
		if expired {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		if expired {
			c.expirations.Add(1)
			c.notify([]Key{key}, EvictExpired)
		}
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return entry.Value, true
}

// Put inserts or replaces the entry for key. Inserting a new key into a full
// cache first evicts the 20% of entries closest to expiry (at least one); the
// incoming entry is not a candidate. A value that is already expired is not
// stored and removes any existing entry.
func (c *Cache[V]) Put(_ context.Context, key Key, value V, expiresAt time.Time) {
	now := c.now()

	c.mu.Lock()
	if !now.Before(expiresAt) {
		delete(c.entries, key)
		c.mu.Unlock()
		return
	}

	var evicted []Key
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.policy.MaxEntries {
		evicted = c.evictLocked()
	}
	c.entries[key] = Entry[V]{Value: value, ExpiresAt: expiresAt}
	c.mu.Unlock()

	c.evictions.Add(uint64(len(evicted)))
	c.notify(evicted, EvictCapacity)
}

// Set stores value with a TTL resolved through Policy.EffectiveTTL. A
// non-positive effective TTL means the value is not cached.
func (c *Cache[V]) Set(ctx context.Context, key Key, value V, ttl time.Duration) {
	ttl = c.policy.EffectiveTTL(ttl)
	if ttl <= 0 {
		return
	}
	c.Put(ctx, key, value, c.now().Add(ttl))
}

// evictLocked removes the entries with the earliest expiry. Ties are broken by
// key so eviction is deterministic. Caller must hold c.mu.
func (c *Cache[V]) evictLocked() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if byExpiry := c.entries[a].ExpiresAt.Compare(c.entries[b].ExpiresAt); byExpiry != 0 {
			return byExpiry
		}
		return cmp.Compare(a.String(), b.String())
	})

	victims := keys[:evictionBatch(len(keys))]
	for _, k := range victims {
		delete(c.entries, k)
	}
	return victims
}

// Delete removes the entry for key. Idempotent - no error on miss.
func (c *Cache[V]) Delete(_ context.Context, key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Invalidate removes every entry for which match returns true, expired or
// not, and returns the number removed. match runs under the cache lock and
// must not call back into the cache.
func (c *Cache[V]) Invalidate(_ context.Context, match func(Key, V) bool) int {
	if match == nil {
		return 0
	}

	var removed []Key
	c.mu.Lock()
	for k, e := range c.entries {
		if match(k, e.Value) {
			delete(c.entries, k)
			removed = append(removed, k)
		}
	}
	c.mu.Unlock()

	c.invalidations.Add(uint64(len(removed)))
	c.notify(removed, EvictInvalidated)
	return len(removed)
}

// InvalidateDescriptor removes every variant cached for descriptor.
func (c *Cache[V]) InvalidateDescriptor(ctx context.Context, descriptor string) int {
	return c.Invalidate(ctx, func(k Key, _ V) bool {
		return k.Descriptor == descriptor
	})
}

// Len returns the number of stored entries, including expired entries not yet
// accessed.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries. The rate-limit snapshot is kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]Entry[V], c.policy.MaxEntries)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		Expirations:   c.expirations.Load(),
		Invalidations: c.invalidations.Load(),
		Size:          c.Len(),
	}
}

func (c *Cache[V]) notify(keys []Key, reason EvictReason) {
	if c.onEvict == nil {
		return
	}
	for _, k := range keys {
		c.onEvict(k, reason)
	}
}
