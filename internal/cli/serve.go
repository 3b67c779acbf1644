package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/brunolnetto/sql-adventure-sub001/internal/app"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only analytics API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.Analytics.BuildViews(ctx); err != nil {
					return err
				}
				srv, err := a.NewHTTPServer()
				if err != nil {
					return err
				}
				if addr == "" {
					addr = a.Cfg.HTTPAddr
				}
				return srv.Run(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default HTTP_ADDR)")

	return cmd
}
