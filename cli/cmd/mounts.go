package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/floe-build/floe/cli/output"
	"github.com/floe-build/floe/internal/mount"
)

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "Show the mounted directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		table, err := mount.FromScripts(cfg.Scripts)
		if err != nil {
			return err
		}

		rows := make([][]string, 0)
		for _, entry := range table.Entries() {
			rows = append(rows, []string{entry.DiskPrefix, entry.URLPrefix})
		}

		output.NewFormatter(os.Stdout).PrintTable(output.TableData{
			Headers: []string{"DIRECTORY", "URL"},
			Rows:    rows,
		})
		return nil
	},
}
