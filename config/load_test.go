package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/resumekit/idcodec"
	"github.com/jonwraymond/resumekit/secret"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	cfg, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Codec.Passphrase != DevPassphrase || cfg.Codec.Salt != DevSalt {
		t.Error("development should fall back to the development key material")
	}
	if cfg.Codec.Iterations != idcodec.DefaultIterations {
		t.Errorf("Iterations = %d", cfg.Codec.Iterations)
	}
	if cfg.Cache.DefaultTTL != 5*time.Minute || cfg.Cache.MaxEntries != 256 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Analysis.Retry.MaxAttempts != 3 || cfg.Analysis.Breaker.MaxFailures != 5 {
		t.Errorf("Analysis resilience = %+v / %+v", cfg.Analysis.Retry, cfg.Analysis.Breaker)
	}
	if cfg.Observe.ServiceName != "resumekit" {
		t.Errorf("ServiceName = %q", cfg.Observe.ServiceName)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "resumekit.yaml", `
environment: staging
codec:
  passphrase: file-pass
  salt: file-salt
  iterations: 2000
  cipher: xchacha20-poly1305
cache:
  default_ttl: 10m
  max_entries: 64
analysis:
  base_url: https://analysis.example.com
  timeout: 3s
  retry:
    max_attempts: 5
observe:
  logging:
    level: debug
`)
	t.Setenv("RESUMEKIT_CACHE__MAX_ENTRIES", "32")
	t.Setenv("RESUMEKIT_ANALYSIS__RATE_LIMIT__RATE", "2.5")
	t.Setenv("RESUMEKIT_OBSERVE__LOGGING__FORMAT", "console")

	cfg, err := Load(context.Background(), LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"environment", cfg.Environment, EnvStaging},
		{"passphrase", cfg.Codec.Passphrase, "file-pass"},
		{"iterations", cfg.Codec.Iterations, 2000},
		{"cipher", cfg.Codec.Cipher, idcodec.CipherXChaCha20Poly1305},
		{"default ttl", cfg.Cache.DefaultTTL, 10 * time.Minute},
		{"max ttl default kept", cfg.Cache.MaxTTL, time.Hour},
		{"max entries env wins", cfg.Cache.MaxEntries, 32},
		{"base url", cfg.Analysis.BaseURL, "https://analysis.example.com"},
		{"timeout", cfg.Analysis.Timeout, 3 * time.Second},
		{"retry attempts", cfg.Analysis.Retry.MaxAttempts, 5},
		{"retry delay default kept", cfg.Analysis.Retry.InitialDelay, 200 * time.Millisecond},
		{"rate from env", cfg.Analysis.RateLimit.Rate, 2.5},
		{"log level", cfg.Observe.Logging.Level, "debug"},
		{"log format", cfg.Observe.Logging.Format, "console"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := writeFile(t, "c.yaml", "environment: test\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Environment != EnvTest {
		t.Errorf("Environment = %q, want test", cfg.Environment)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{Path: filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("Load() should fail for an explicit missing file")
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	t.Setenv("RESUMEKIT_ENVIRONMENT", "production")

	_, err := Load(context.Background(), LoadOptions{})
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("Load() error = %v, want ErrMissingSecret", err)
	}

	t.Setenv("RESUMEKIT_CODEC__PASSPHRASE", DevPassphrase)
	t.Setenv("RESUMEKIT_CODEC__SALT", "prod-salt")
	if _, err := Load(context.Background(), LoadOptions{}); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("development passphrase in production: error = %v, want ErrMissingSecret", err)
	}

	t.Setenv("RESUMEKIT_CODEC__PASSPHRASE", "prod-pass")
	cfg, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Production() {
		t.Error("Production() = false")
	}
}

func TestLoad_SecretReferences(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "codec-salt"), []byte("salt-from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(PathEnvVar, "")
	t.Setenv("RESUMEKIT_SECRET_DIR", dir)
	t.Setenv("CODEC_PASS", "pass-from-env")
	t.Setenv("RESUMEKIT_CODEC__PASSPHRASE", "secretref:env:CODEC_PASS")
	t.Setenv("RESUMEKIT_CODEC__SALT", "secretref:file:codec-salt")
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("RESUMEKIT_AUTH__TOKEN", "${API_TOKEN}")

	cfg, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Codec.Passphrase != "pass-from-env" {
		t.Errorf("Passphrase = %q", cfg.Codec.Passphrase)
	}
	if cfg.Codec.Salt != "salt-from-file" {
		t.Errorf("Salt = %q", cfg.Codec.Salt)
	}
	if cfg.Auth.Token != "tok" {
		t.Errorf("Token = %q", cfg.Auth.Token)
	}
}

func TestLoad_UnresolvedSecretFails(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	t.Setenv("RESUMEKIT_CODEC__PASSPHRASE", "secretref:env:RESUMEKIT_TEST_UNSET_VAR")

	_, err := Load(context.Background(), LoadOptions{})
	if !errors.Is(err, secret.ErrNotFound) && !errors.Is(err, secret.ErrEmptyValue) {
		t.Errorf("Load() error = %v, want a secret resolution error", err)
	}
}

func TestLoad_CustomResolver(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	t.Setenv("RESUMEKIT_CODEC__PASSPHRASE", "secretref:env:CUSTOM")
	r := secret.NewResolver(true, secret.EnvProvider{Lookup: func(name string) (string, bool) {
		return "custom-" + name, true
	}})

	cfg, err := Load(context.Background(), LoadOptions{Resolver: r})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Codec.Passphrase != "custom-CUSTOM" {
		t.Errorf("Passphrase = %q", cfg.Codec.Passphrase)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"environment", "RESUMEKIT_ENVIRONMENT", "qa"},
		{"cipher", "RESUMEKIT_CODEC__CIPHER", "rot13"},
		{"max entries", "RESUMEKIT_CACHE__MAX_ENTRIES", "-1"},
		{"base url", "RESUMEKIT_ANALYSIS__BASE_URL", "not a url"},
		{"log level", "RESUMEKIT_OBSERVE__LOGGING__LEVEL", "loud"},
		{"service name", "RESUMEKIT_OBSERVE__SERVICE_NAME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PathEnvVar, "")
			t.Setenv(tt.key, tt.val)
			if _, err := Load(context.Background(), LoadOptions{}); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RESUMEKIT_ENVIRONMENT", "environment"},
		{"RESUMEKIT_CACHE__DEFAULT_TTL", "cache.default_ttl"},
		{"RESUMEKIT_ANALYSIS__RATE_LIMIT__MAX_WAIT", "analysis.rate_limit.max_wait"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
