package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/floe-build/floe/internal/devserver"
	"github.com/floe-build/floe/internal/plugin/builtin"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Serve the project with on-the-fly transforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cwd, err := loadConfig()
		if err != nil {
			return err
		}

		server, err := devserver.NewServer(cfg, builtin.Catalog(), cwd)
		if err != nil {
			return err
		}

		go func() {
			if err := server.Start(); err != nil {
				log.Fatal().Err(err).Msg("Failed to start dev server")
			}
		}()

		// Wait for interrupt signal to gracefully shut down
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down dev server...")
		return server.Shutdown(context.Background())
	},
}
