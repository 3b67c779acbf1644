package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analytics"
)

// ViewsCmd returns the views command
func ViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "(Re)create the analytics views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.Analytics.BuildViews(ctx); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, name := range analytics.ViewNames() {
					fmt.Fprintf(out, "  %s %s\n", okMark(), name)
				}
				return nil
			})
		},
	}
}
