package cache

import (
	"errors"
	"strings"
	"testing"
)

type resumeRef struct {
	ID   string `json:"id"`
	Rev  int    `json:"rev"`
	Lang string `json:"lang"`
}

type stringerDescriptor struct{ id string }

func (s stringerDescriptor) String() string { return "resume/" + s.id }

func TestNewKey_StringVerbatim(t *testing.T) {
	k, err := NewKey("resume-1", "basic")
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	if k.Descriptor != "resume-1" || k.Variant != "basic" {
		t.Errorf("NewKey() = %+v, want verbatim descriptor", k)
	}
}

func TestNewKey_Stringer(t *testing.T) {
	k, err := NewKey(stringerDescriptor{id: "7"}, "premium")
	if err != nil {
		t.Fatalf("NewKey() error = %v", err)
	}
	if k.Descriptor != "resume/7" {
		t.Errorf("Descriptor = %q, want %q", k.Descriptor, "resume/7")
	}
}

func TestNewKey_Invalid(t *testing.T) {
	if _, err := NewKey("", "basic"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("NewKey(\"\") error = %v, want ErrInvalidKey", err)
	}
	if _, err := NewKey(strings.Repeat("x", MaxKeyLength), ""); !errors.Is(err, ErrKeyTooLong) {
		t.Errorf("NewKey(long) error = %v, want ErrKeyTooLong", err)
	}
	if _, err := NewKey(map[string]any{"bad": make(chan int)}, "basic"); err == nil {
		t.Error("NewKey() with unserializable descriptor should fail")
	}
}

func TestDescriptorHash_DeterministicForMaps(t *testing.T) {
	// Same content, different insertion order
	map1 := map[string]any{"b": 2, "a": 1, "c": 3}
	map2 := map[string]any{"a": 1, "c": 3, "b": 2}
	map3 := map[string]any{"c": 3, "b": 2, "a": 1}

	h1 := mustHash(t, map1)
	h2 := mustHash(t, map2)
	h3 := mustHash(t, map3)

	if h1 != h2 || h2 != h3 {
		t.Errorf("hashes should be equal for same content: %s %s %s", h1, h2, h3)
	}
}

func TestDescriptorHash_StringMap(t *testing.T) {
	a := mustHash(t, map[string]string{"tier": "basic", "target": "backend"})
	b := mustHash(t, map[string]any{"target": "backend", "tier": "basic"})
	if a != b {
		t.Errorf("map[string]string and map[string]any with equal content should hash equal: %s vs %s", a, b)
	}
}

func TestDescriptorHash_ArrayOrderPreserved(t *testing.T) {
	h1 := mustHash(t, map[string]any{"items": []any{1, 2, 3}})
	h2 := mustHash(t, map[string]any{"items": []any{3, 2, 1}})
	if h1 == h2 {
		t.Errorf("hashes should differ for different array order: %s", h1)
	}
}

func TestDescriptorHash_NestedMaps(t *testing.T) {
	nested1 := map[string]any{
		"outer": map[string]any{"z": 26, "a": 1, "m": 13},
		"other": "value",
	}
	nested2 := map[string]any{
		"other": "value",
		"outer": map[string]any{"a": 1, "m": 13, "z": 26},
	}
	if mustHash(t, nested1) != mustHash(t, nested2) {
		t.Error("hashes should be equal for nested maps with same content")
	}
}

func TestDescriptorHash_Struct(t *testing.T) {
	a := mustHash(t, resumeRef{ID: "r1", Rev: 3, Lang: "en"})
	b := mustHash(t, resumeRef{ID: "r1", Rev: 3, Lang: "en"})
	c := mustHash(t, resumeRef{ID: "r1", Rev: 4, Lang: "en"})
	if a != b {
		t.Errorf("equal structs hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different revisions should hash differently")
	}
}

func TestDescriptorHash_Format(t *testing.T) {
	h := mustHash(t, map[string]any{"test": "value"})
	if len(h) != 16 {
		t.Fatalf("hash should be 16 characters, got %d: %q", len(h), h)
	}
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("hash should be lowercase hex, got %q in %q", string(c), h)
			break
		}
	}
}

func TestDescriptorHash_NilVersusEmpty(t *testing.T) {
	if mustHash(t, nil) != mustHash(t, nil) {
		t.Error("nil descriptor should hash deterministically")
	}
	if mustHash(t, nil) == mustHash(t, map[string]any{}) {
		t.Error("nil and empty map should hash differently")
	}
}

func TestNewKey_HashedDescriptorVariantIsolation(t *testing.T) {
	ref := resumeRef{ID: "r1", Rev: 1}
	basic, err := NewKey(ref, "basic")
	if err != nil {
		t.Fatal(err)
	}
	premium, err := NewKey(ref, "premium")
	if err != nil {
		t.Fatal(err)
	}
	if basic == premium {
		t.Error("keys for different variants must differ")
	}
	if basic.Descriptor != premium.Descriptor {
		t.Error("descriptor hash should not depend on the variant")
	}
}

func mustHash(t *testing.T, v any) string {
	t.Helper()
	h, err := DescriptorHash(v)
	if err != nil {
		t.Fatalf("DescriptorHash(%v) error = %v", v, err)
	}
	return h
}
