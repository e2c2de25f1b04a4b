package auth

import (
	"context"
	"strings"
)

// TokenSource returns a bearer token for an outbound call.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations that block must honor cancellation.
// - Errors: an empty token with a nil error is treated as ErrMissingCredentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticTokenSource always returns the same token.
type StaticTokenSource string

// Token returns the token, or ErrMissingCredentials if it is blank.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	tok := strings.TrimSpace(string(s))
	if tok == "" {
		return "", ErrMissingCredentials
	}
	return tok, nil
}
