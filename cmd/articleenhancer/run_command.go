package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ArticleEnhancer/internal/app"
	"ArticleEnhancer/internal/usecase"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enhance the next batch of original articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				if watch {
					return application.Watch(cmd.Context())
				}
				report, err := application.Run(cmd.Context())
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running a batch on every scheduler interval")
	return cmd
}

func printReport(w io.Writer, report usecase.Report) {
	fmt.Fprintf(w, "Run %s: %d candidates, %d selected, %d enhanced, %d failed\n",
		report.RunID, report.Candidates, report.Selected, report.Enhanced, report.Failed)
	for _, item := range report.Items {
		switch {
		case item.Err != nil:
			fmt.Fprintf(w, "  FAIL %s (%s): %v\n", item.Title, item.State, item.Err)
		case item.Fallback:
			fmt.Fprintf(w, "  OK   %s -> %s (fallback)\n", item.Title, item.EnhancedID)
		default:
			fmt.Fprintf(w, "  OK   %s -> %s\n", item.Title, item.EnhancedID)
		}
	}
}
