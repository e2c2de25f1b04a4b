package config

import "errors"

var (
	// ErrInvalid indicates the loaded configuration failed validation.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrMissingSecret indicates a required secret is empty in production.
	ErrMissingSecret = errors.New("config: required secret is not set")
)
