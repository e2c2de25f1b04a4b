package auth

import (
	"fmt"
	"net/http"
)

// Transport is an http.RoundTripper that adds an Authorization: Bearer header
// from Source to every request.
type Transport struct {
	Source TokenSource

	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The caller's request is cloned,
// never modified.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil {
		closeBody(req)
		return nil, ErrNilTokenSource
	}
	tok, err := t.Source.Token(req.Context())
	if err == nil && tok == "" {
		err = ErrMissingCredentials
	}
	if err != nil {
		closeBody(req)
		return nil, fmt.Errorf("auth: obtain token: %w", err)
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+tok)
	return t.base().RoundTrip(out)
}

// RoundTrippers must close the body even when they fail.
func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// Client returns an *http.Client using t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
