package auth

import "errors"

// Sentinel errors for outbound credentials.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrNilTokenSource     = errors.New("auth: token source is nil")
)
