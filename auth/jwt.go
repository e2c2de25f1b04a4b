package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Defaults for CachingTokenSource.
const (
	DefaultExpirySkew  = 30 * time.Second
	DefaultFallbackTTL = 5 * time.Minute
)

// CachingConfig configures a CachingTokenSource.
type CachingConfig struct {
	// Skew is subtracted from a JWT's exp claim.
	// Default: DefaultExpirySkew
	Skew time.Duration

	// FallbackTTL is how long a token without a readable exp claim is reused.
	// Default: DefaultFallbackTTL
	FallbackTTL time.Duration

	// Now overrides the time source. Default: time.Now
	Now func() time.Time
}

// CachingTokenSource reuses the token from an underlying source until it is
// about to expire.
//
// Contract:
//   - Concurrency: safe for concurrent use; concurrent refreshes share the lock,
//     so the underlying source is called once per expiry.
//   - Errors: errors from the underlying source are returned and not cached.
type CachingTokenSource struct {
	src         TokenSource
	skew        time.Duration
	fallbackTTL time.Duration
	now         func() time.Time

	mu        sync.Mutex
	token     string
	refreshAt time.Time
}

// NewCachingTokenSource wraps src.
func NewCachingTokenSource(src TokenSource, cfg CachingConfig) *CachingTokenSource {
	if cfg.Skew <= 0 {
		cfg.Skew = DefaultExpirySkew
	}
	if cfg.FallbackTTL <= 0 {
		cfg.FallbackTTL = DefaultFallbackTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CachingTokenSource{
		src:         src,
		skew:        cfg.Skew,
		fallbackTTL: cfg.FallbackTTL,
		now:         cfg.Now,
	}
}

// Token returns the cached token or fetches a new one.
func (c *CachingTokenSource) Token(ctx context.Context) (string, error) {
	if c.src == nil {
		return "", ErrNilTokenSource
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.refreshAt) {
		return c.token, nil
	}

	tok, err := c.src.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", ErrMissingCredentials
	}

	refreshAt := now.Add(c.fallbackTTL)
	if exp, ok := TokenExpiry(tok); ok {
		if !now.Before(exp) {
			return "", fmt.Errorf("%w: exp %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
		}
		refreshAt = exp.Add(-c.skew)
	}

	c.token, c.refreshAt = tok, refreshAt
	return tok, nil
}

// Invalidate drops the cached token, e.g. after the remote side answered 401.
func (c *CachingTokenSource) Invalidate() {
	c.mu.Lock()
	c.token, c.refreshAt = "", time.Time{}
	c.mu.Unlock()
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false for tokens that are not JWTs or carry no exp claim.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
