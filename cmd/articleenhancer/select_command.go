package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "List originals that have not been enhanced yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				candidates, err := application.Candidates(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(candidates) == 0 {
					fmt.Fprintln(out, "No articles waiting for enhancement")
					return nil
				}
				for _, a := range candidates {
					fmt.Fprintf(out, "%s\t%s\n", a.ID, a.Title)
				}
				return nil
			})
		},
	}
}
