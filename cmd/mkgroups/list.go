package main

import (
	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups"
	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/pkg/modfile"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the merged permissions of a world",
	Long: `Print the merged groups, weights and permissions of one world as a
single YAML document, in the same shape as a module file. The output
shows exactly what apply would push.`,
	Example: `  # Show the default context
  mkgroups list -i modules/pve

  # Show the nether overrides merged with the default modules
  mkgroups list -i modules/pve -w world_nether`,
	RunE: func(cmd *cobra.Command, args []string) error {
		worldName := resolveWorld()
		if worldName == mkgroups.AllContexts {
			return cli.ConfigError("list shows one world at a time; -w all is not supported", nil)
		}
		contexts, err := loadContexts(worldName)
		if err != nil {
			return err
		}
		return modfile.Encode(cmd.OutOrStdout(), contexts[worldName])
	},
}
