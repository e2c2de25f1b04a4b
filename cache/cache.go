package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length of Key.String().
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")

	// ErrRateLimited is returned by Loader when the advisory rate-limit
	// snapshot says the remote budget is exhausted.
	ErrRateLimited = errors.New("cache: remote rate limit exhausted")
)

// Key identifies a cached result. Two keys with the same Descriptor but
// different Variant are distinct entries.
type Key struct {
	// Descriptor identifies the request target, e.g. a resume reference.
	Descriptor string

	// Variant distinguishes results for the same descriptor, e.g. an analysis tier.
	Variant string
}

// String returns the printable form: result:<variant>:<descriptor>
func (k Key) String() string {
	return "result:" + k.Variant + ":" + k.Descriptor
}

// Validate checks that k can be used as a cache key.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Descriptor) == "" {
		return ErrInvalidKey
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(k.Descriptor, "\n\r") || strings.ContainsAny(k.Variant, "\n\r:") {
		return ErrInvalidKey
	}
	if len(k.String()) > MaxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}
