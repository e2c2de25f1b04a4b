package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/resumekit/analysis"
	"github.com/jonwraymond/resumekit/auth"
	"github.com/jonwraymond/resumekit/cache"
	"github.com/jonwraymond/resumekit/config"
	"github.com/jonwraymond/resumekit/idcodec"
	"github.com/jonwraymond/resumekit/observe"
)

// app holds the state shared by subcommands. It is filled in by setup,
// before any subcommand runs.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	obs observe.Observer
	mw  *observe.Middleware
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "resumekit",
		Short: "Resume token codec, result cache and analysis client",
		Long: `resumekit mints and reads opaque resume tokens and talks to the
remote analysis service through a bounded result cache.

Configuration comes from built-in defaults, an optional YAML file and
RESUMEKIT_* environment variables, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.shutdown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $"+config.PathEnvVar+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override observe.logging.level")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newCheckCmd(a),
		newAnalyzeCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.LoadOptions{Path: a.configPath})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Observe.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return err
	}

	a.cfg, a.obs, a.mw = cfg, obs, mw
	if !cfg.Production() {
		mw.Logger().Debug(ctx, "using non-production configuration", observe.F("environment", cfg.Environment))
	}
	return nil
}

func (a *app) shutdown(ctx context.Context) error {
	if a.obs == nil {
		return nil
	}
	return a.obs.Shutdown(ctx)
}

// codec builds the identifier codec, with the legacy key as a decode
// fallback when one is configured.
func (a *app) codec() (*idcodec.Codec, error) {
	opts := []idcodec.Option{
		idcodec.WithObserver(observe.DecodeObserver(a.mw.Metrics(), a.mw.Logger())),
	}
	if legacyCfg, ok := a.cfg.Codec.Legacy(); ok {
		legacy, err := idcodec.New(legacyCfg)
		if err != nil {
			return nil, fmt.Errorf("legacy codec: %w", err)
		}
		opts = append(opts, idcodec.WithFallback(legacy))
	}
	return idcodec.New(a.cfg.Codec.Primary(), opts...)
}

func (a *app) results() *cache.Cache[analysis.Analysis] {
	return cache.New[analysis.Analysis](a.cfg.Cache.Policy(),
		cache.WithEvictHook(observe.EvictHook(a.mw.Metrics())),
	)
}

var errNoAnalysisURL = errors.New("analysis.base_url is not configured")

func (a *app) client(codec *idcodec.Codec, results *cache.Cache[analysis.Analysis]) (*analysis.Client, error) {
	if a.cfg.Analysis.BaseURL == "" {
		return nil, errNoAnalysisURL
	}
	tokens := auth.NewCachingTokenSource(
		auth.StaticTokenSource(a.cfg.Auth.Token),
		auth.CachingConfig{Skew: a.cfg.Auth.ExpirySkew},
	)
	return analysis.New(a.cfg.Analysis, results, tokens,
		analysis.WithCodec(codec),
		analysis.WithMiddleware(a.mw),
	)
}
