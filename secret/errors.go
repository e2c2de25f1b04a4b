package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} referenced a variable that is not set.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrUnknownProvider indicates a reference named an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider is not registered")

	// ErrNotFound indicates the provider has no value for the reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptyValue indicates a strict resolver got an empty value.
	ErrEmptyValue = errors.New("secret: provider returned empty value")

	// ErrInvalidRef indicates a malformed reference.
	ErrInvalidRef = errors.New("secret: invalid reference")
)
