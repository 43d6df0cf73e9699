package main

import (
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/di"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when kafka is enabled, the request consumer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, cleanup, err := di.InitializeApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return app.Run(ctx)
	},
}
