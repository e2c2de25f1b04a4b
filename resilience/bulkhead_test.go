package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	release := make(chan struct{})
	var started sync.WaitGroup
	var done sync.WaitGroup
	for i := 0; i < 2; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			_ = b.Execute(ctx, func(context.Context) error {
				started.Done()
				<-release
				return nil
			})
		}()
	}
	started.Wait()

	if m := b.Metrics(); m.Active != 2 {
		t.Errorf("Active = %d, want 2", m.Active)
	}

	err := b.Execute(ctx, succeed)
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("error = %v, want ErrBulkheadFull", err)
	}

	close(release)
	done.Wait()

	m := b.Metrics()
	if m.Active != 0 {
		t.Errorf("Active = %d, want 0", m.Active)
	}
	if m.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", m.Rejected)
	}
	if m.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", m.MaxConcurrent)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()

	started := make(chan struct{})
	go func() {
		_ = b.Execute(ctx, func(context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}()
	<-started

	if err := b.Execute(ctx, succeed); err != nil {
		t.Errorf("error = %v, want the waiting call to get a slot", err)
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	if err := b.Execute(ctx, succeed); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("error = %v, want ErrBulkheadFull", err)
	}
}

func TestBulkhead_PropagatesError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	if err := b.Execute(context.Background(), fail); !errors.Is(err, errRemote) {
		t.Errorf("error = %v, want errRemote", err)
	}
	if b.Metrics().MaxConcurrent != 4 {
		t.Errorf("default MaxConcurrent = %d, want 4", b.Metrics().MaxConcurrent)
	}
}
