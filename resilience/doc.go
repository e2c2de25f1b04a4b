// Package resilience wraps outbound calls with client-side protection.
//
// The patterns are thin layers over established libraries: the circuit
// breaker over sony/gobreaker, the rate limiter over golang.org/x/time/rate
// and the bulkhead over golang.org/x/sync/semaphore. Retry and Timeout are
// local. Executor composes them:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(5*time.Second),
//	)
//	err := exec.Execute(ctx, callRemote)
//
// Mark errors that must not be retried, such as HTTP 4xx answers, with
// Permanent.
package resilience
