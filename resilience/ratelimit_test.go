package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := rl.Execute(ctx, succeed); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}

	called := false
	err := rl.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("error = %v, want ErrRateLimitExceeded", err)
	}
	if called {
		t.Error("op should not run when limited")
	}
}

func TestRateLimiter_WaitOnLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1, WaitOnLimit: true, MaxWait: time.Second})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Execute(ctx, succeed); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("elapsed = %v, want the limiter to pace calls", elapsed)
	}
}

func TestRateLimiter_WaitExceedsMaxWait(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, WaitOnLimit: true, MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	_ = rl.Execute(ctx, succeed)
	err := rl.Execute(ctx, succeed)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, WaitOnLimit: true, MaxWait: time.Minute})
	_ = rl.Execute(context.Background(), succeed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rl.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.config.Rate != 10 || rl.config.Burst != 5 || rl.config.MaxWait != time.Second {
		t.Errorf("defaults = %+v", rl.config)
	}
	if tokens := rl.Tokens(); tokens < 4.9 {
		t.Errorf("Tokens() = %v, want a full bucket", tokens)
	}
}
