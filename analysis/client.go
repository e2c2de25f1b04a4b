package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/resumekit/auth"
	"github.com/jonwraymond/resumekit/cache"
	"github.com/jonwraymond/resumekit/observe"
	"github.com/jonwraymond/resumekit/resilience"
)

// DefaultTimeout bounds one HTTP attempt.
const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the analysis service root, e.g. https://analysis.internal.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// Timeout bounds each attempt.
	// Default: DefaultTimeout
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	// MaxConcurrent bounds in-flight requests. Zero means unbounded.
	MaxConcurrent int `koanf:"max_concurrent" validate:"gte=0"`

	// UserAgent is sent with every request.
	UserAgent string `koanf:"user_agent"`

	Retry     resilience.RetryConfig          `koanf:"retry"`
	Breaker   resilience.CircuitBreakerConfig `koanf:"breaker"`
	RateLimit resilience.RateLimiterConfig    `koanf:"rate_limit"`
}

// Decoder turns a resume token back into its id. idcodec.Codec satisfies it.
type Decoder interface {
	Decode(token string) string
}

// Option configures a Client.
type Option func(*Client)

// WithCodec decodes resume tokens before use.
func WithCodec(d Decoder) Option {
	return func(c *Client) { c.codec = d }
}

// WithMiddleware traces, measures and logs every Analyze call.
func WithMiddleware(m *observe.Middleware) Option {
	return func(c *Client) {
		if m != nil {
			c.mw = m
		}
	}
}

// WithTransport sets the base HTTP transport under the auth layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithClock overrides the time source used to read rate-limit headers.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client calls the analysis service through the result cache.
//
// Contract:
//   - Concurrency: safe for concurrent use; concurrent misses for the same
//     request share one remote call.
//   - Errors: remote 429 matches ErrRateLimited, 401 and 403 match
//     ErrUnauthorized, other non-2xx answers are *StatusError. Errors are
//     never cached.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	base      http.RoundTripper
	tokens    auth.TokenSource
	codec     Decoder
	loader    *cache.Loader[Analysis]
	exec      *resilience.Executor
	breaker   *resilience.CircuitBreaker
	mw        *observe.Middleware
	now       func() time.Time
}

// New creates a Client that stores results in results and authenticates
// with tokens. A tokens value with an Invalidate method, such as
// *auth.CachingTokenSource, is invalidated when the service answers 401.
func New(cfg Config, results *cache.Cache[Analysis], tokens auth.TokenSource, opts ...Option) (*Client, error) {
	if results == nil {
		return nil, fmt.Errorf("%w: result cache is required", ErrInvalidConfig)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, auth.ErrNilTokenSource)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidConfig, cfg.BaseURL)
	}

	c := &Client{
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + analysesPath,
		userAgent: cfg.UserAgent,
		tokens:    tokens,
		loader:    cache.NewLoader(results),
		mw:        observe.NewMiddleware(nil, nil, nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent == "" {
		c.userAgent = "resumekit"
	}
	c.http = &http.Client{Transport: &auth.Transport{Source: tokens, Base: c.base}}

	c.breaker = resilience.NewCircuitBreaker(c.breakerConfig(cfg.Breaker))
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	execOpts := []resilience.ExecutorOption{
		resilience.WithCircuitBreaker(c.breaker),
		resilience.WithRetry(resilience.NewRetry(cfg.Retry)),
		resilience.WithTimeout(cfg.Timeout),
	}
	if cfg.RateLimit.Rate > 0 {
		execOpts = append(execOpts, resilience.WithRateLimiter(resilience.NewRateLimiter(cfg.RateLimit)))
	}
	if cfg.MaxConcurrent > 0 {
		execOpts = append(execOpts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.Timeout,
		})))
	}
	c.exec = resilience.NewExecutor(execOpts...)
	return c, nil
}

func (c *Client) breakerConfig(cfg resilience.CircuitBreakerConfig) resilience.CircuitBreakerConfig {
	if cfg.Name == "" {
		cfg.Name = "analysis"
	}
	user := cfg.OnStateChange
	logger := c.mw.Logger()
	cfg.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn(context.Background(), "circuit breaker state changed",
			observe.F("breaker", name),
			observe.F("from", from.String()),
			observe.F("to", to.String()),
		)
		if user != nil {
			user(name, from, to)
		}
	}
	return cfg
}

// Breaker returns the circuit breaker guarding the remote service.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Cache returns the result cache.
func (c *Client) Cache() *cache.Cache[Analysis] {
	return c.loader.Cache()
}

// Analyze returns the analysis for req, from the cache when possible.
func (c *Client) Analyze(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	req.ResumeID = c.decode(req.ResumeID)
	key, err := req.Key()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var (
		value  Analysis
		cached bool
	)
	call := c.mw.Wrap(func(ctx context.Context, _ observe.Operation) error {
		var err error
		value, cached, err = c.loader.Load(ctx, key, func(ctx context.Context) (cache.Response[Analysis], error) {
			return c.fetch(ctx, req)
		})
		return err
	})
	err = call(ctx, observe.Operation{Component: "analysis", Name: "analyze", Variant: req.Tier})
	c.mw.Metrics().RecordCacheLookup(ctx, req.Tier, cached)
	if err != nil {
		return Result{}, err
	}
	return Result{Analysis: value, Cached: cached}, nil
}

// Forget removes every cached analysis of a deleted resume and returns how
// many were removed. resumeID may be a token.
func (c *Client) Forget(ctx context.Context, resumeID string) int {
	id := c.decode(resumeID)
	return c.loader.Cache().Invalidate(ctx, func(_ cache.Key, a Analysis) bool {
		return a.ResumeID == id
	})
}

func (c *Client) decode(id string) string {
	if c.codec == nil {
		return id
	}
	return c.codec.Decode(id)
}

// fetch runs the remote call through the executor. The rate-limit snapshot
// of the last attempt is returned even when the call failed.
func (c *Client) fetch(ctx context.Context, req Request) (cache.Response[Analysis], error) {
	var resp cache.Response[Analysis]
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		r, err := c.post(ctx, req)
		if r.RateLimit != nil {
			resp.RateLimit = r.RateLimit
		}
		if err != nil {
			return err
		}
		resp.Value, resp.ExpiresAt = r.Value, r.ExpiresAt
		return nil
	})
	return resp, err
}

func (c *Client) post(ctx context.Context, req Request) (cache.Response[Analysis], error) {
	var out cache.Response[Analysis]

	body, err := encodeRequest(req)
	if err != nil {
		return out, resilience.Permanent(fmt.Errorf("analysis: encode request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return out, resilience.Permanent(fmt.Errorf("analysis: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return out, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
		_ = res.Body.Close()
	}()

	if rl, ok := parseRateLimit(res.Header, res.StatusCode, c.now()); ok {
		out.RateLimit = &rl
	}

	switch code := res.StatusCode; {
	case code >= 200 && code < 300:
		a, expiresAt, err := decodeResponse(res.Body)
		if err != nil {
			return out, resilience.Permanent(err)
		}
		if a.ResumeID == "" {
			a.ResumeID = req.ResumeID
		}
		if a.Target == "" {
			a.Target = req.Target
		}
		if a.Tier == "" {
			a.Tier = req.Tier
		}
		out.Value, out.ExpiresAt = a, expiresAt
		return out, nil

	case code == http.StatusTooManyRequests:
		return out, resilience.Permanent(fmt.Errorf("%w: %w", ErrRateLimited, statusError(res)))

	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		if inv, ok := c.tokens.(interface{ Invalidate() }); ok && code == http.StatusUnauthorized {
			inv.Invalidate()
		}
		return out, resilience.Permanent(fmt.Errorf("%w: %w", ErrUnauthorized, statusError(res)))

	default:
		se := statusError(res)
		if se.Temporary() {
			return out, se
		}
		return out, resilience.Permanent(se)
	}
}

func statusError(res *http.Response) *StatusError {
	return &StatusError{StatusCode: res.StatusCode, Message: errorMessage(res.Body)}
}
