package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/resumekit/analysis"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		target string
		tier   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <resume-id-or-token>",
		Short: "Request an analysis from the remote service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.codec()
			if err != nil {
				return err
			}
			client, err := a.client(codec, a.results())
			if err != nil {
				return err
			}

			res, err := client.Analyze(cmd.Context(), analysis.Request{
				ResumeID: args[0],
				Target:   target,
				Tier:     tier,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Analysis)
			}
			fmt.Fprintf(out, "resume:  %s\ntarget:  %s\ntier:    %s\nscore:   %.2f\n", res.ResumeID, res.Target, res.Tier, res.Score)
			if res.Summary != "" {
				fmt.Fprintf(out, "summary: %s\n", res.Summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "role or job description id to score against")
	cmd.Flags().StringVar(&tier, "tier", "basic", "analysis tier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	return cmd
}
