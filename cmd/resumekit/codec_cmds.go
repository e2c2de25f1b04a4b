package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotDecoded = errors.New("one or more tokens did not decode")

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <id>...",
		Short: "Mint an opaque token for each resume id",
		Long: `Prints one URL-safe token per id. Tokens are randomized: encoding the
same id twice gives different tokens that decode to the same id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.codec()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range args {
				tok, err := codec.Encode(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}
}

func newDecodeCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "decode <token>...",
		Short: "Decode tokens back to resume ids",
		Long: `Prints the value and the outcome for each token, tab separated. A
token that does not decode is printed unchanged with outcome "fallback".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.codec()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := false
			for _, tok := range args {
				res := codec.DecodeResult(tok)
				fmt.Fprintf(out, "%s\t%s\n", res.Value, res.Outcome())
				failed = failed || !res.Decoded
			}
			if strict && failed {
				return errNotDecoded
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero if any token falls back")
	return cmd
}
