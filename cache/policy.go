package cache

import "time"

// DefaultMaxEntries is the entry bound used when Policy.MaxEntries is not positive.
const DefaultMaxEntries = 256

// evictPercent is the share of entries removed by one capacity eviction.
const evictPercent = 20

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, results without an explicit expiry are not cached.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the number of live entries.
	// Default: DefaultMaxEntries
	MaxEntries int
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 5 minutes, MaxTTL: 1 hour, MaxEntries: 256
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     1 * time.Hour,
		MaxEntries: DefaultMaxEntries,
	}
}

// ShouldCache returns true if results without an explicit expiry are cached.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}

func (p Policy) maxEntries() int {
	if p.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return p.MaxEntries
}

// evictionBatch returns how many entries a capacity eviction removes from a
// cache holding size entries: 20% rounded down, at least one.
func evictionBatch(size int) int {
	n := size * evictPercent / 100
	if n < 1 {
		n = 1
	}
	return n
}
