package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Response is what a remote call returns on success.
type Response[V any] struct {
	// Value is the remote result, stored verbatim.
	Value V

	// ExpiresAt is the absolute expiry reported by the remote side. Zero means
	// the cache policy's default TTL applies.
	ExpiresAt time.Time

	// RateLimit is the budget snapshot from the response, if any.
	RateLimit *RateLimit
}

// FetchFunc performs the remote call for a cache miss. It may return a
// Response carrying a RateLimit alongside a non-nil error (e.g. on HTTP 429);
// the snapshot is recorded but nothing is cached.
type FetchFunc[V any] func(ctx context.Context) (Response[V], error)

// Loader consults a Cache before calling a remote endpoint.
//
// Contract:
//   - Concurrency: concurrent misses for the same key share one fetch; the
//     fetch runs with the context of the caller that started it.
//   - Errors: fetch errors are returned unchanged and are NOT cached.
type Loader[V any] struct {
	cache *Cache[V]
	group singleflight.Group
}

// NewLoader creates a loader over c.
func NewLoader[V any](c *Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Cache returns the underlying cache.
func (l *Loader[V]) Cache() *Cache[V] {
	return l.cache
}

// Load returns the cached value for key or calls fetch on a miss. cached
// reports whether the value came from the cache. When the advisory rate-limit
// snapshot is exhausted, Load returns ErrRateLimited without calling fetch.
func (l *Loader[V]) Load(ctx context.Context, key Key, fetch FetchFunc[V]) (value V, cached bool, err error) {
	if v, ok := l.cache.Get(ctx, key); ok {
		return v, true, nil
	}

	if !l.cache.CallAllowed() {
		var zero V
		return zero, false, ErrRateLimited
	}

	out, err, _ := l.group.Do(key.String(), func() (any, error) {
		resp, err := fetch(ctx)
		if resp.RateLimit != nil {
			l.cache.UpdateRateLimit(*resp.RateLimit)
		}
		if err != nil {
			return nil, err
		}

		if resp.ExpiresAt.IsZero() {
			l.cache.Set(ctx, key, resp.Value, 0)
		} else {
			l.cache.Put(ctx, key, resp.Value, resp.ExpiresAt)
		}
		return resp.Value, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, _ := out.(V)
	return v, false, nil
}

// Forget drops any in-flight call record for key so the next miss starts a
// fresh fetch.
func (l *Loader[V]) Forget(key Key) {
	l.group.Forget(key.String())
}
