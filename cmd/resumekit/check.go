package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/resumekit/health"
)

var errUnhealthy = errors.New("health check failed")

func newCheckCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run component health checks",
		Long: `Runs the codec self test and the cache check, plus the analysis circuit
breaker when analysis.base_url is set. Exits non-zero when any check is
unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, err := a.codec()
			if err != nil {
				return err
			}
			results := a.results()

			agg := health.NewAggregator(health.AggregatorConfig{Timeout: timeout})
			agg.Register(
				health.NewCodecChecker(codec),
				health.NewCacheChecker(results, 0),
			)
			if client, err := a.client(codec, results); err == nil {
				agg.Register(health.NewBreakerChecker("analysis", client.Breaker()))
			} else if !errors.Is(err, errNoAnalysisURL) {
				return err
			}

			report := agg.CheckAll(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				err = report.WriteJSON(out)
			} else {
				err = report.WriteText(out)
			}
			if err != nil {
				return err
			}
			if !report.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall check deadline")
	return cmd
}
