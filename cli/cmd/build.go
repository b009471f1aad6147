package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/floe-build/floe/internal/builder"
	"github.com/floe-build/floe/internal/plugin/builtin"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Produce a production build",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cwd, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return builder.New(cfg, builtin.Catalog(), cwd).Run(ctx)
	},
}
