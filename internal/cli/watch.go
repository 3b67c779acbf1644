package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream evaluation progress events published by running batches",
		Long: `Subscribe to the evaluation event channel and print one line per evaluated file.
Requires REDIS_ADDR; stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Cfg.RedisAddr == "" {
					return fmt.Errorf("watch requires REDIS_ADDR")
				}
				out := cmd.OutOrStdout()
				err := a.Clients.Events.StartForwarder(ctx, func(ev events.Event) {
					printEvent(out, ev)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Watching evaluation events (Ctrl-C to stop)...")
				<-ctx.Done()
				return nil
			})
		},
	}
}
