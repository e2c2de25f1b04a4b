package cache

import "time"

// RateLimit is the remote call budget reported by the last remote response.
// It is advisory: the remote side enforces the real limit.
type RateLimit struct {
	// Remaining is the number of calls left in the current window.
	Remaining int

	// ResetAt is when the window resets.
	ResetAt time.Time
}

// Exhausted reports whether no calls remain at now.
func (r RateLimit) Exhausted(now time.Time) bool {
	return r.Remaining <= 0 && now.Before(r.ResetAt)
}

// UpdateRateLimit records the snapshot from a remote response, replacing the
// previous one.
func (c *Cache[V]) UpdateRateLimit(rl RateLimit) {
	c.mu.Lock()
	c.limit = rl
	c.limited = true
	c.mu.Unlock()
}

// RateLimit returns the last recorded snapshot. ok is false until one has been
// recorded.
func (c *Cache[V]) RateLimit() (rl RateLimit, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limit, c.limited
}

// CallAllowed reports whether the snapshot permits a remote call now. With no
// snapshot recorded it returns true.
func (c *Cache[V]) CallAllowed() bool {
	rl, ok := c.RateLimit()
	if !ok {
		return true
	}
	return !rl.Exhausted(c.now())
}
