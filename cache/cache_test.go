package cache

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestKey_Validation tests key validation rules.
func TestKey_Validation(t *testing.T) {
	// "result:" + variant + ":" with an empty variant
	overhead := len("result::")

	tests := []struct {
		name    string
		key     Key
		wantErr error
	}{
		{"empty descriptor", Key{Variant: "basic"}, ErrInvalidKey},
		{"valid key", Key{Descriptor: "resume-1", Variant: "basic"}, nil},
		{"empty variant", Key{Descriptor: "resume-1"}, nil},
		{"whitespace only", Key{Descriptor: "   ", Variant: "basic"}, ErrInvalidKey},
		{"descriptor newline", Key{Descriptor: "a\nb", Variant: "basic"}, ErrInvalidKey},
		{"descriptor carriage return", Key{Descriptor: "a\rb", Variant: "basic"}, ErrInvalidKey},
		{"variant colon", Key{Descriptor: "resume-1", Variant: "a:b"}, ErrInvalidKey},
		{"too long", Key{Descriptor: strings.Repeat("x", MaxKeyLength)}, ErrKeyTooLong},
		{"max length exactly", Key{Descriptor: strings.Repeat("x", MaxKeyLength-overhead)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestKey_String(t *testing.T) {
	k := Key{Descriptor: "resume-1", Variant: "premium"}
	if got, want := k.String(), "result:premium:resume-1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestEvictReason_String(t *testing.T) {
	tests := []struct {
		r    EvictReason
		want string
	}{
		{EvictCapacity, "capacity"},
		{EvictExpired, "expired"},
		{EvictInvalidated, "invalidated"},
		{EvictReason(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("EvictReason(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
