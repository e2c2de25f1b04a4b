package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds one attempt when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Timeout bounds each call with a deadline.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout wrapper. Non-positive d means DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{d: d}
}

// Duration returns the configured deadline.
func (t *Timeout) Duration() time.Duration {
	return t.d
}

// Execute runs op with a deadline. op must honor ctx; Execute waits for it to
// return. A deadline hit by this wrapper, not by the caller's own context,
// yields an error matching ErrTimeout and context.DeadlineExceeded.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, t.d, err)
	}
	return err
}
