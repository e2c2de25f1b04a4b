package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through.
	StateClosed State = iota
	// StateOpen means calls are rejected.
	StateOpen
	// StateHalfOpen means a limited number of trial calls pass through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in state-change callbacks.
	Name string `koanf:"name"`

	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int `koanf:"max_failures"`

	// ResetTimeout is how long the circuit stays open before a trial call.
	// Default: 30s
	ResetTimeout time.Duration `koanf:"reset_timeout"`

	// HalfOpenMaxRequests is the number of trial calls allowed when half-open.
	// Default: 1
	HalfOpenMaxRequests int `koanf:"half_open_max_requests"`

	// Interval clears the failure counts periodically while closed. Zero
	// never clears them.
	Interval time.Duration `koanf:"interval"`

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(name string, from, to State) `koanf:"-"`

	// IsFailure determines if an error counts against the circuit.
	// Default: every non-nil error except context cancellation and Permanent
	// errors, which indicate a caller problem rather than an unhealthy remote.
	IsFailure func(err error) bool `koanf:"-"`
}

// CircuitBreaker stops calling a remote that keeps failing.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: rejected calls return an error matching ErrCircuitOpen.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// NewCircuitBreaker creates a circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Name == "" {
		config.Name = "remote"
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = defaultIsFailure
	}

	maxFailures := uint32(config.MaxFailures)
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: uint32(config.HalfOpenMaxRequests),
		Interval:    config.Interval,
		Timeout:     config.ResetTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !config.IsFailure(err)
		},
	}
	if config.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			config.OnStateChange(name, fromGobreaker(from), fromGobreaker(to))
		}
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func defaultIsFailure(err error) bool {
	var p *permanentError
	return !errors.As(err, &p) && !errors.Is(err, context.Canceled)
}

// Execute runs op unless the circuit is open.
func (c *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, c.cb.Name())
	}
	return err
}

// State returns the current state.
func (c *CircuitBreaker) State() State {
	return fromGobreaker(c.cb.State())
}

// ConsecutiveFailures returns the current run of failures.
func (c *CircuitBreaker) ConsecutiveFailures() int {
	return int(c.cb.Counts().ConsecutiveFailures)
}
