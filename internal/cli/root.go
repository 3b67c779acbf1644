package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
)

// NewRootCmd assembles the sqleval command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "sqleval",
		Short:   "Evaluate SQL exercise files with pattern detection and AI critique",
		Version: version,
		Long: `sqleval discovers SQL exercise files laid out as <quest>/<subcategory>/<file>.sql,
detects SQL patterns, asks an AI model for a technical and educational critique,
and records every evaluation in Postgres for later analytics.`,
		SilenceUsage: true,
	}

	root.AddCommand(EvaluateCmd())
	root.AddCommand(SyncCmd())
	root.AddCommand(ViewsCmd())
	root.AddCommand(SummaryCmd())
	root.AddCommand(ServeCmd())
	root.AddCommand(WatchCmd())

	return root
}

// withApp builds the application for one command and tears it down after.
// SIGINT and SIGTERM cancel the context handed to fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
