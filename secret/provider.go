package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (EnvProvider) Name() string { return "env" }

func (p EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %q", ErrNotFound, ref)
	}
	return v, nil
}

func (EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path, relative to Dir unless
// absolute. Surrounding whitespace, including the trailing newline most
// secret mounts add, is trimmed.
type FileProvider struct {
	Dir string
}

func (FileProvider) Name() string { return "file" }

func (p FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := ref
	if !filepath.IsAbs(path) {
		if p.Dir == "" {
			return "", fmt.Errorf("%w: relative path %q with no base directory", ErrInvalidRef, ref)
		}
		path = filepath.Join(p.Dir, ref)
		// Keep relative refs inside Dir.
		rel, err := filepath.Rel(p.Dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidRef, ref, p.Dir)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %q", ErrNotFound, ref)
		}
		return "", fmt.Errorf("secret: read %q: %w", ref, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (FileProvider) Close() error { return nil }
