package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups"
	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/pkg/modfile"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write merged permissions back out as module files",
	Long: `Write the merged permission state of one world back out as module
files: GROUPS.yml with the group hierarchy and weights, plus one module
per permission stem. Permissions already granted or denied by an
ancestor group are dropped on the way out, so the exported tree is a
cleaned-up equivalent of the input.

The output directory is created if missing.`,
	Example: `  # Round-trip the default context into a fresh tree
  mkgroups export -i modules/pve -o cleaned/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfg.ResolvedExportDir(exportOutput)
		if out == "" {
			return cli.ConfigError("you need to specify an output directory (-o/--output)", nil)
		}
		worldName := resolveWorld()
		if worldName == mkgroups.AllContexts {
			return cli.ConfigError("export writes one world at a time; -w all is not supported", nil)
		}
		contexts, err := loadContexts(worldName)
		if err != nil {
			return err
		}
		if err := modfile.WriteModules(contexts[worldName], out, logger); err != nil {
			return cli.GeneralError("writing module files", err)
		}
		if !quiet {
			fmt.Printf("Wrote modules for world %s to %s\n", worldName, out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "directory to write module files into")
}
