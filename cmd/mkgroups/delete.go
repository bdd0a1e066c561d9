package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/pkg/plugin"
)

var (
	deleteServer string
	deletePlugin string
	deleteUpdate bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove declared permissions from the server",
	Long: `Remove the merged permission state of a world from the server's
permission plugin: every declared group is cleared or deleted. The
default group itself is never deleted, only emptied.

Every plugin command is printed. Without -u/--update nothing is sent.`,
	Example: `  # Print the teardown commands for the nether world
  mkgroups delete -i modules/pve -w world_nether

  # Tear down every world and the default context
  mkgroups delete -i modules/pve -w all -s pve -u`,
	RunE: func(cmd *cobra.Command, args []string) error {
		worldName := resolveWorld()
		contexts, err := loadContexts(worldName)
		if err != nil {
			return err
		}

		applier, err := newApplier(deleteServer, deletePlugin, deleteUpdate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var total plugin.Result
		for _, w := range worldsFor(contexts, worldName) {
			result, err := applier.Delete(ctx, contexts, w)
			if err != nil {
				return cli.ModuleDataError(fmt.Sprintf("deleting world %s", w), err)
			}
			total.Add(result)
		}
		printSummary("delete", &total)
		return nil
	},
}

func init() {
	f := deleteCmd.Flags()
	f.StringVarP(&deleteServer, "server", "s", "", "name of the server's mark2 session")
	f.StringVarP(&deletePlugin, "plugin", "p", "", "permissions plugin (LuckPerms or bPermissions)")
	f.BoolVarP(&deleteUpdate, "update", "u", false, "send the printed commands to the server")
}
