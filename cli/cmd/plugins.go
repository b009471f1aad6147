package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/floe-build/floe/cli/output"
	"github.com/floe-build/floe/internal/plugin"
	"github.com/floe-build/floe/internal/plugin/builtin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Show the loaded plugin pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		set, err := plugin.Load(cfg, builtin.Catalog())
		if err != nil {
			return err
		}

		formatter := output.NewFormatter(os.Stdout)

		rows := make([][]string, 0, len(set.Plugins))
		for _, p := range set.Plugins {
			rows = append(rows, []string{
				p.Name,
				strings.Join(p.Input, " "),
				strings.Join(p.Output, " "),
				capabilities(p),
			})
		}
		if set.Bundler != nil {
			rows = append(rows, []string{set.Bundler.Name, "-", "-", "bundle"})
		}
		for ext, cmd := range set.BuildCommands {
			rows = append(rows, []string{cmd, ext, ext, "shell"})
		}

		formatter.PrintTable(output.TableData{
			Headers: []string{"NAME", "INPUT", "OUTPUT", "CAPABILITIES"},
			Rows:    rows,
		})
		return nil
	},
}

func capabilities(p *plugin.Plugin) string {
	var caps []string
	if p.Build != nil {
		caps = append(caps, "build")
	}
	if p.Bundle != nil {
		caps = append(caps, "bundle")
	}
	if len(caps) == 0 {
		return "-"
	}
	return strings.Join(caps, ",")
}
