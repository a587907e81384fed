package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lararachidi/agent-supply-chain/pkg/interfaces/api"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query functions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				opts := api.Options{}
				if app.Config.Metrics.Enabled {
					opts.MetricsPath, opts.Gatherer = app.Config.Metrics.Path, app.Registry
				}
				if addr == "" {
					addr = app.Config.Server.Addr
				}
				handler := api.NewHandler(app.Tools, app.Genie, app.Log.With("api"), opts)
				return api.Serve(ctx, addr, handler, app.Log.With("api"))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}
