package resilience

import (
	"context"
	"time"
)

// Executor composes the resilience patterns around one operation.
type Executor struct {
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. With no options it calls op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRateLimiter paces calls before anything else runs.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.rateLimiter = rl }
}

// WithBulkhead bounds concurrent calls.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithCircuitBreaker rejects calls while the remote is failing.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry retries failed attempts.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	return e.circuitBreaker
}

// Execute runs op through the configured patterns, outermost first:
// rate limiter, bulkhead, circuit breaker, retry, timeout. The breaker sees
// one outcome per Execute call, after retries.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	call := op

	if e.timeout != nil {
		inner := call
		call = func(ctx context.Context) error { return e.timeout.Execute(ctx, inner) }
	}
	if e.retry != nil {
		inner := call
		call = func(ctx context.Context) error { return e.retry.Execute(ctx, inner) }
	}
	if e.circuitBreaker != nil {
		inner := call
		call = func(ctx context.Context) error { return e.circuitBreaker.Execute(ctx, inner) }
	}
	if e.bulkhead != nil {
		inner := call
		call = func(ctx context.Context) error { return e.bulkhead.Execute(ctx, inner) }
	}
	if e.rateLimiter != nil {
		inner := call
		call = func(ctx context.Context) error { return e.rateLimiter.Execute(ctx, inner) }
	}

	return call(ctx)
}
