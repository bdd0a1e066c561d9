package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the module tree",
	Long: `Run health checks on the module tree: the default context and every
world directory must merge cleanly, and the checks flag probable typos,
permission conflicts, inheritance cycles and redundant permissions.`,
	Example: `  # Check the module tree
  mkgroups doctor -i modules/pve

  # Show per-finding details
  mkgroups doctor -i modules/pve -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveModulesDir()
		if err != nil {
			return err
		}

		if !quiet {
			fmt.Println("mkgroups doctor - Module Tree Check")
		}

		report := doctor.New(dir).Run()
		report.Print(os.Stdout, verbose > 0)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}
