package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFormatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "format <key>",
		Short: "Format one recognition result into a speaker-labelled transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				res, err := a.newFormatter().Handle(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				if res.Skipped {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: not a recognition result\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcript written to %s\n", res.OutputKey)
				return nil
			})
		},
	}
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <key>",
		Short: "Summarize one formatted transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				sum, err := a.newSummarizer(commandCtx(cmd))
				if err != nil {
					return err
				}
				outcome, err := sum.Handle(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, outcome)
				}
				switch {
				case outcome.Failure != nil:
					return fmt.Errorf("summary failed: %s (%s), recorded at %s", outcome.Failure.ErrorKind, outcome.Failure.Detail, outcome.FailureKey)
				case outcome.Output == "":
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: not a formatted transcript\n", args[0])
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", outcome.Output)
				}
				return nil
			})
		},
	}
}
