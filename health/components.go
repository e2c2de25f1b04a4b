package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/resumekit/cache"
	"github.com/jonwraymond/resumekit/resilience"
)

// SelfTester is the part of idcodec.Codec the codec check needs.
type SelfTester interface {
	SelfTest() error
	Cipher() string
}

// CodecChecker verifies that the identifier codec can round-trip a value.
// It also forces key derivation, so a bad passphrase shows up here rather
// than on the first request.
type CodecChecker struct {
	codec SelfTester
}

// NewCodecChecker creates a codec checker.
func NewCodecChecker(codec SelfTester) *CodecChecker {
	return &CodecChecker{codec: codec}
}

// Name returns "codec".
func (c *CodecChecker) Name() string { return "codec" }

// Check runs the codec self test.
func (c *CodecChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	if c.codec == nil {
		return Unhealthy("codec not configured", ErrCheckFailed)
	}
	details := map[string]any{"cipher": c.codec.Cipher()}
	if err := c.codec.SelfTest(); err != nil {
		return Unhealthy("round trip failed", err).WithDetails(details)
	}
	return Healthy("round trip ok").WithDetails(details)
}

// CacheProbe is the read-only view of a cache.Cache the cache check needs.
type CacheProbe interface {
	Stats() cache.Stats
	Policy() cache.Policy
	RateLimit() (cache.RateLimit, bool)
	CallAllowed() bool
}

// DefaultOccupancyWarning is the fill ratio at which the cache reports
// degraded.
const DefaultOccupancyWarning = 0.9

// CacheChecker reports cache occupancy and the advisory remote quota.
type CacheChecker struct {
	cache  CacheProbe
	warnAt float64
}

// NewCacheChecker creates a cache checker. warnAt outside (0, 1] means
// DefaultOccupancyWarning.
func NewCacheChecker(c CacheProbe, warnAt float64) *CacheChecker {
	if warnAt <= 0 || warnAt > 1 {
		warnAt = DefaultOccupancyWarning
	}
	return &CacheChecker{cache: c, warnAt: warnAt}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check is degraded when occupancy reaches the warning ratio or the remote
// quota is exhausted. It is never unhealthy: a full cache still serves.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	if c.cache == nil {
		return Unhealthy("cache not configured", ErrCheckFailed)
	}

	stats := c.cache.Stats()
	maxEntries := c.cache.Policy().MaxEntries
	occupancy := 0.0
	if maxEntries > 0 {
		occupancy = float64(stats.Size) / float64(maxEntries)
	}

	details := map[string]any{
		"size":        stats.Size,
		"max_entries": maxEntries,
		"occupancy":   fmt.Sprintf("%.2f", occupancy),
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"evictions":   stats.Evictions,
	}
	if rl, ok := c.cache.RateLimit(); ok {
		details["quota_remaining"] = rl.Remaining
		details["quota_reset"] = rl.ResetAt.UTC().Format(time.RFC3339)
	}

	switch {
	case !c.cache.CallAllowed():
		return Degraded("remote quota exhausted").WithDetails(details)
	case occupancy >= c.warnAt:
		return Degraded(fmt.Sprintf("cache %.0f%% full", occupancy*100)).WithDetails(details)
	default:
		return Healthy("cache ok").WithDetails(details)
	}
}

// BreakerState is the part of resilience.CircuitBreaker the breaker check
// needs.
type BreakerState interface {
	State() resilience.State
	ConsecutiveFailures() int
}

// BreakerChecker reports the analysis circuit breaker. Open is unhealthy and
// half-open is degraded.
type BreakerChecker struct {
	name    string
	breaker BreakerState
}

// NewBreakerChecker creates a breaker checker registered under name.
func NewBreakerChecker(name string, b BreakerState) *BreakerChecker {
	if name == "" {
		name = "breaker"
	}
	return &BreakerChecker{name: name, breaker: b}
}

// Name returns the registered name.
func (c *BreakerChecker) Name() string { return c.name }

// Check maps the breaker state to a status.
func (c *BreakerChecker) Check(context.Context) Result {
	if c.breaker == nil {
		return Healthy("no breaker configured")
	}
	state := c.breaker.State()
	details := map[string]any{
		"state":                state.String(),
		"consecutive_failures": c.breaker.ConsecutiveFailures(),
	}
	switch state {
	case resilience.StateOpen:
		return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
