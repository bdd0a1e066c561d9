package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/pkg/modfile"
)

var (
	convertGroupsFile string
	convertOutput     string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bPermissions groups.yml into module files",
	Long: `Read one world's bPermissions groups.yml and write it out as module
files. Run it once per world when migrating an existing server to
declarative modules, then maintain the modules instead of groups.yml.`,
	Example: `  # Convert the creative world's live permissions
  mkgroups convert -b plugins/bPermissions/creative/groups.yml -o modules/creative`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertGroupsFile == "" {
			return cli.ConfigError("you need to specify a bPermissions groups.yml (-b/--groups-file)", nil)
		}
		out := cfg.ResolvedExportDir(convertOutput)
		if out == "" {
			return cli.ConfigError("you need to specify an output directory (-o/--output)", nil)
		}

		f, err := os.Open(convertGroupsFile)
		if err != nil {
			return cli.ConfigError("opening groups file", err)
		}
		defer func() { _ = f.Close() }()

		c, err := modfile.LoadBPermissions(f)
		if err != nil {
			return cli.ModuleDataError("reading bPermissions groups", err)
		}
		if err := modfile.WriteModules(c, out, logger); err != nil {
			return cli.GeneralError("writing module files", err)
		}
		if !quiet {
			fmt.Printf("Converted %s into modules in %s\n", convertGroupsFile, out)
		}
		return nil
	},
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertGroupsFile, "groups-file", "b", "", "bPermissions groups.yml to read")
	f.StringVarP(&convertOutput, "output", "o", "", "directory to write module files into")
}
