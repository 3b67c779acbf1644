package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
)

// SummaryCmd returns the summary command
func SummaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the comprehensive evaluation summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Services.Analytics.ComprehensiveSummary(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				printSummary(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}
