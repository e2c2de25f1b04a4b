package config

import (
	"time"

	"github.com/jonwraymond/resumekit/analysis"
	"github.com/jonwraymond/resumekit/auth"
	"github.com/jonwraymond/resumekit/cache"
	"github.com/jonwraymond/resumekit/idcodec"
	"github.com/jonwraymond/resumekit/observe"
	"github.com/jonwraymond/resumekit/resilience"
)

// Environments accepted in Config.Environment.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Development-only key material. Tokens minted with it are not secret.
const (
	DevPassphrase = "resumekit-development-passphrase"
	DevSalt       = "resumekit-development-salt"
)

// Config is the full resumekit configuration.
type Config struct {
	Environment string `koanf:"environment" validate:"oneof=development test staging production"`

	// SecretDir roots relative secretref:file: references.
	SecretDir string `koanf:"secret_dir"`

	Codec    CodecConfig     `koanf:"codec"`
	Cache    CacheConfig     `koanf:"cache"`
	Auth     AuthConfig      `koanf:"auth"`
	Analysis analysis.Config `koanf:"analysis"`
	Observe  observe.Config  `koanf:"observe"`
}

// CodecConfig holds identifier codec key material.
type CodecConfig struct {
	Passphrase string `koanf:"passphrase"`
	Salt       string `koanf:"salt"`
	Iterations int    `koanf:"iterations" validate:"gte=0"`
	Cipher     string `koanf:"cipher" validate:"omitempty,oneof=aes-gcm xchacha20-poly1305"`

	// LegacyPassphrase and LegacySalt, when both set, keep tokens minted with
	// retired key material decodable during a rotation.
	LegacyPassphrase string `koanf:"legacy_passphrase"`
	LegacySalt       string `koanf:"legacy_salt"`
	LegacyCipher     string `koanf:"legacy_cipher" validate:"omitempty,oneof=aes-gcm xchacha20-poly1305"`
}

// CacheConfig bounds the result cache.
type CacheConfig struct {
	DefaultTTL time.Duration `koanf:"default_ttl" validate:"gte=0"`
	MaxTTL     time.Duration `koanf:"max_ttl" validate:"gte=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

// AuthConfig holds outbound credentials.
type AuthConfig struct {
	// Token is the bearer token for the analysis service.
	Token string `koanf:"token"`

	// ExpirySkew refreshes a JWT this long before its exp claim.
	ExpirySkew time.Duration `koanf:"expiry_skew" validate:"gte=0"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	policy := cache.DefaultPolicy()
	return Config{
		Environment: EnvDevelopment,
		Codec: CodecConfig{
			Iterations: idcodec.DefaultIterations,
			Cipher:     idcodec.CipherAESGCM,
		},
		Cache: CacheConfig{
			DefaultTTL: policy.DefaultTTL,
			MaxTTL:     policy.MaxTTL,
			MaxEntries: policy.MaxEntries,
		},
		Auth: AuthConfig{ExpirySkew: auth.DefaultExpirySkew},
		Analysis: analysis.Config{
			Timeout: analysis.DefaultTimeout,
			Retry: resilience.RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 200 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
				Jitter:       true,
			},
			Breaker: resilience.CircuitBreakerConfig{
				Name:                "analysis",
				MaxFailures:         5,
				ResetTimeout:        30 * time.Second,
				HalfOpenMaxRequests: 1,
			},
			RateLimit: resilience.RateLimiterConfig{
				Rate:        10,
				Burst:       5,
				WaitOnLimit: true,
				MaxWait:     time.Second,
			},
		},
		Observe: observe.Config{
			ServiceName: "resumekit",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info", Format: "json"},
		},
	}
}

// Production reports whether c runs in production.
func (c Config) Production() bool {
	return c.Environment == EnvProduction
}

// Primary returns the idcodec configuration new tokens are minted with.
func (c CodecConfig) Primary() idcodec.Config {
	return idcodec.Config{
		Passphrase: c.Passphrase,
		Salt:       c.Salt,
		Iterations: c.Iterations,
		Cipher:     c.Cipher,
	}
}

// Legacy returns the retired key material, if configured.
func (c CodecConfig) Legacy() (idcodec.Config, bool) {
	if c.LegacyPassphrase == "" || c.LegacySalt == "" {
		return idcodec.Config{}, false
	}
	return idcodec.Config{
		Passphrase: c.LegacyPassphrase,
		Salt:       c.LegacySalt,
		Iterations: c.Iterations,
		Cipher:     c.LegacyCipher,
	}, true
}

// Policy returns the cache policy.
func (c CacheConfig) Policy() cache.Policy {
	return cache.Policy{
		DefaultTTL: c.DefaultTTL,
		MaxTTL:     c.MaxTTL,
		MaxEntries: c.MaxEntries,
	}
}
