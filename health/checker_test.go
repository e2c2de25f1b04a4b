package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	errDown := errors.New("down")
	tests := []struct {
		name    string
		result  Result
		status  Status
		message string
		err     error
	}{
		{"healthy", Healthy("ok"), StatusHealthy, "ok", nil},
		{"degraded", Degraded("slow"), StatusDegraded, "slow", nil},
		{"unhealthy", Unhealthy("broken", errDown), StatusUnhealthy, "broken", errDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if tt.result.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.message)
			}
			if tt.result.Error != tt.err {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.err)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestResult_WithDetails(t *testing.T) {
	base := Healthy("ok")
	r := base.WithDetails(map[string]any{"size": 3})
	if r.Details["size"] != 3 {
		t.Errorf("Details = %v", r.Details)
	}
	if base.Details != nil {
		t.Error("WithDetails should not modify the receiver")
	}
}

func TestCheckerFunc(t *testing.T) {
	type ctxKey struct{}
	c := NewCheckerFunc("probe", func(ctx context.Context) Result {
		if ctx.Value(ctxKey{}) == nil {
			return Unhealthy("missing ctx", nil)
		}
		return Healthy("ok")
	})
	if c.Name() != "probe" {
		t.Errorf("Name() = %q", c.Name())
	}
	ctx := context.WithValue(context.Background(), ctxKey{}, true)
	if r := c.Check(ctx); r.Status != StatusHealthy {
		t.Errorf("Check() = %v, want healthy", r.Status)
	}
}
