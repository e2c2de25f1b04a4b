package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/jonwraymond/resumekit/secret"
)

const (
	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "RESUMEKIT_"

	// PathEnvVar names the config file when LoadOptions.Path is empty.
	PathEnvVar = "RESUMEKIT_CONFIG"
)

var validate = validator.New()

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is the YAML file to read. Empty means $RESUMEKIT_CONFIG, and no
	// file when that is unset too.
	Path string

	// Resolver resolves secret references. Nil means
	// secret.DefaultResolver(cfg.SecretDir).
	Resolver *secret.Resolver
}

// Load reads, resolves and validates the configuration.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	path := opts.Path
	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = secret.DefaultResolver(cfg.SecretDir)
		defer func() { _ = resolver.Close() }()
	}
	if err := cfg.resolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}
	cfg.applyDevFallback()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps RESUMEKIT_CACHE__DEFAULT_TTL to cache.default_ttl.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) resolveSecrets(ctx context.Context, r *secret.Resolver) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"codec.passphrase", &c.Codec.Passphrase},
		{"codec.salt", &c.Codec.Salt},
		{"codec.legacy_passphrase", &c.Codec.LegacyPassphrase},
		{"codec.legacy_salt", &c.Codec.LegacySalt},
		{"auth.token", &c.Auth.Token},
	}
	for _, f := range fields {
		if *f.ptr == "" {
			continue
		}
		v, err := r.ResolveValue(ctx, *f.ptr)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}

func (c *Config) applyDevFallback() {
	if c.Production() {
		return
	}
	if c.Codec.Passphrase == "" {
		c.Codec.Passphrase = DevPassphrase
	}
	if c.Codec.Salt == "" {
		c.Codec.Salt = DevSalt
	}
}

// Validate checks struct constraints, the observability settings and, in
// production, that the codec secrets are present and not the development
// values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.Production() {
		switch {
		case c.Codec.Passphrase == "" || c.Codec.Passphrase == DevPassphrase:
			return fmt.Errorf("%w: codec.passphrase", ErrMissingSecret)
		case c.Codec.Salt == "" || c.Codec.Salt == DevSalt:
			return fmt.Errorf("%w: codec.salt", ErrMissingSecret)
		}
	}
	if err := c.Codec.Primary().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
