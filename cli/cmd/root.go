// Package cmd provides the Cobra commands for the floe CLI.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/floe-build/floe/internal/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile string
	debug   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "floe",
	Short: "floe - build web projects without the bundler in the way",
	Long: `floe serves and builds web projects straight from their source
directories: mounted directories map onto URL space, plugins transform
files by extension, and bare imports resolve through the dependency
import map.

Get started:
  floe dev      Serve the project with on-the-fly transforms
  floe build    Produce a production build
  floe mounts   Show the mounted directories
  floe plugins  Show the loaded plugin pipeline`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug || viper.GetBool("debug") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./floe.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug output")

	// Bind environment variables
	viper.SetEnvPrefix("FLOE")
	_ = viper.BindEnv("debug") // FLOE_DEBUG

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(mountsCmd)
}

// loadConfig loads the project configuration for a subcommand. All
// configuration errors are fatal: there is no partial-success mode.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, "", err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	return cfg, cwd, nil
}
