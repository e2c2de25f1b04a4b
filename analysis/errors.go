package analysis

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/resumekit/cache"
)

var (
	// ErrInvalidConfig indicates the client configuration is unusable.
	ErrInvalidConfig = errors.New("analysis: invalid config")

	// ErrInvalidRequest indicates a request is missing required fields.
	ErrInvalidRequest = errors.New("analysis: invalid request")

	// ErrUnauthorized indicates the remote side rejected the credentials.
	ErrUnauthorized = errors.New("analysis: unauthorized")

	// ErrRateLimited indicates the remote call budget is exhausted, either
	// reported by a 429 or known from an earlier response.
	ErrRateLimited = cache.ErrRateLimited

	// ErrBadResponse indicates a 2xx response the client could not decode.
	ErrBadResponse = errors.New("analysis: malformed response")
)

// StatusError is a non-2xx answer from the analysis service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analysis: remote returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("analysis: remote returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusRequestTimeout
}
