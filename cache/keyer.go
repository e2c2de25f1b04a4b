package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// NewKey builds a cache key from a request descriptor and a variant tag.
//
// A string descriptor is used verbatim. Any other descriptor is serialized to
// canonical JSON (map keys sorted) and hashed, so equal descriptors map to the
// same key regardless of map iteration order.
func NewKey(descriptor any, variant string) (Key, error) {
	var d string
	switch v := descriptor.(type) {
	case string:
		d = v
	case fmt.Stringer:
		d = v.String()
	default:
		h, err := DescriptorHash(descriptor)
		if err != nil {
			return Key{}, err
		}
		d = h
	}

	k := Key{Descriptor: d, Variant: variant}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// DescriptorHash returns the first 16 hex characters of
// SHA-256(canonical JSON(descriptor)).
func DescriptorHash(descriptor any) (string, error) {
	canonical, err := canonicalize(descriptor)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize descriptor: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return hex.EncodeToString(hash[:8]), nil
}

// canonicalize produces a deterministic JSON representation of the input.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return canonicalizeMap(m)
	case []any:
		return canonicalizeSlice(val)
	default:
		// Structs encode fields in declaration order, which is already stable.
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}
