package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract readable text from a page using the tier chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				outcome := application.Extract(cmd.Context(), args[0])
				fmt.Fprintf(cmd.ErrOrStderr(), "tier: %s\n", outcome.Tier)
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Text)
				return nil
			})
		},
	}
}
