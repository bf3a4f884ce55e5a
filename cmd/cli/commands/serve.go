package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/internal/server"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(app.Store, app.Auth, app.Publisher, app.Logger, app.Metrics)

			app.Logger.Info("Starting server", zap.String("addr", app.Cfg.ListenAddr))
			return srv.Start(app.Ctx, app.Cfg.ListenAddr)
		},
	}
}
