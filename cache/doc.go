// Package cache provides a bounded, in-memory result cache for rate-limited
// remote calls.
//
// Entries are keyed by a (descriptor, variant) pair and carry an absolute
// expiry instant. Expired entries are removed lazily on access. When an insert
// would exceed the configured bound, the entries closest to expiry are evicted
// in a batch. The cache also holds the advisory rate-limit snapshot reported by
// the last remote response. Loader layers miss coalescing on top.
//
// The cache is process-local and best-effort: nothing is persisted.
package cache
