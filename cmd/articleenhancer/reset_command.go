package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every enhanced article, keeping originals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				deleted, err := application.ResetEnhanced(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d enhanced articles\n", deleted)
				return err
			})
		},
	}
}
