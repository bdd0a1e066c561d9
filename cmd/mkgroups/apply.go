package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups"
	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/pkg/mark2"
	"github.com/NerdNu/mkgroups/pkg/plugin"
)

var (
	applyServer   string
	applyPlugin   string
	applyUpdate   bool
	applyRemovals string
)

var applyCmd = &cobra.Command{
	Use:     "apply",
	Aliases: []string{"add"},
	Short:   "Push declared permissions to the server",
	Long: `Push the merged permission state of a world to the server's
permission plugin. The default world, and every world on a plugin with
per-world storage, receives the full declared state; other worlds
receive only their differences from the default.

Every plugin command is printed. Without -u/--update nothing is sent,
so a plain apply is a dry run to review.`,
	Example: `  # Print the LuckPerms commands for the default world
  mkgroups apply -i modules/pve

  # Send the commands to the pve server session
  mkgroups apply -i modules/pve -s pve -u

  # Reconcile the default context and every world
  mkgroups apply -i modules/pve -w all -s pve -u`,
	RunE: func(cmd *cobra.Command, args []string) error {
		removals, err := mkgroups.ParseRemovalPolicy(resolveString(applyRemovals, cfg.Diff.Removals))
		if err != nil {
			return cli.ConfigError("parsing removal policy", err)
		}

		worldName := resolveWorld()
		contexts, err := loadContexts(worldName)
		if err != nil {
			return err
		}

		applier, err := newApplier(applyServer, applyPlugin, applyUpdate)
		if err != nil {
			return err
		}
		applier.Removals = removals

		ctx := cmd.Context()
		var total plugin.Result
		for _, w := range worldsFor(contexts, worldName) {
			result, err := applier.Update(ctx, contexts, w)
			if err != nil {
				return cli.ModuleDataError(fmt.Sprintf("updating world %s", w), err)
			}
			total.Add(result)
		}
		printSummary("apply", &total)
		return nil
	},
}

func init() {
	f := applyCmd.Flags()
	f.StringVarP(&applyServer, "server", "s", "", "name of the server's mark2 session")
	f.StringVarP(&applyPlugin, "plugin", "p", "", "permissions plugin (LuckPerms or bPermissions)")
	f.BoolVarP(&applyUpdate, "update", "u", false, "send the printed commands to the server")
	f.StringVar(&applyRemovals, "removals", "", "world diff removal policy (keep or deny)")
}

// newApplier wires a plugin sink to a mark2 transport from the given
// flags, falling back to the config for the server name and plugin.
// Sending commands requires a server name to address the mark2 session.
func newApplier(serverFlag, pluginFlag string, update bool) (*plugin.Applier, error) {
	serverName := resolveString(serverFlag, cfg.Server.Name)
	if update && serverName == "" {
		return nil, cli.ConfigError("you must specify the server name to send commands (-u/--update)", nil)
	}

	transport := &mark2.Client{
		Tab:     serverName,
		Execute: update,
		Retries: cfg.Transport.Retries,
		Log:     logger,
	}
	sink, err := plugin.New(resolveString(pluginFlag, cfg.Server.Plugin), transport)
	if err != nil {
		return nil, cli.ConfigError("selecting permissions plugin", err)
	}
	return &plugin.Applier{Sink: sink, Log: logger}, nil
}

// worldsFor expands the world argument into the contexts to process:
// just the named world, or the default context followed by every world
// in sorted order when "all" is requested.
func worldsFor(contexts mkgroups.ContextMap, worldName string) []string {
	if worldName != mkgroups.AllContexts {
		return []string{worldName}
	}
	return append([]string{mkgroups.DefaultContext}, contexts.Worlds()...)
}

// printSummary reports the outcome of a command batch unless quiet.
func printSummary(action string, result *plugin.Result) {
	if quiet {
		return
	}
	fmt.Printf("%s: %d applied, %d skipped, %d failed\n", action, result.Applied, result.Skipped, result.Failed)
}
