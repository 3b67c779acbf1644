package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/discovery"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile quests, subcategories and patterns with the store",
		Long: `Discover quests under QUESTS_ROOT and upsert them, their subcategories and the
pattern catalog. Running sync twice in a row reports no updates the second time.
Nothing is ever deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				quests, err := discovery.Discover(a.Cfg.QuestsRoot)
				if err != nil {
					return err
				}
				rep, syncErr := a.Services.CatalogSync.Sync(ctx, quests, a.Services.Patterns.Definitions())
				if asJSON {
					if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
						return err
					}
				} else {
					printSyncReport(cmd.OutOrStdout(), rep)
				}
				return syncErr
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the sync report as JSON")

	return cmd
}
