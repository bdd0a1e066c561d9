package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/NerdNu/mkgroups"
	"github.com/NerdNu/mkgroups/internal/cli"
	"github.com/NerdNu/mkgroups/internal/logging"
	"github.com/NerdNu/mkgroups/pkg/modfile"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     *slog.Logger

	// Persistent flags
	cfgFile    string
	modulesDir string
	world      string
	modules    []string
	verbose    int
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "mkgroups",
	Short: "Declarative Minecraft permission hierarchies",
	Long: `mkgroups - Declarative Minecraft permission hierarchies

Mkgroups merges modular YAML permission declarations into per-world
group hierarchies and reconciles a server's permission plugin with
them, feeding plugin commands to the server console through mark2.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		logger = logging.SetDefault(logging.FromFlags(verbose > 0, quiet))
		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupServer  = "server"
	groupModules = "modules"
	groupUtility = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover mkgroups.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modulesDir, "modules-dir", "i", "", "directory holding the YAML permission modules")
	rootCmd.PersistentFlags().StringVarP(&world, "world", "w", "", `world to configure, or "all" for the default plus every world`)
	rootCmd.PersistentFlags().StringArrayVarP(&modules, "modules", "m", nil, "module to load, repeatable; globs allowed, .yml optional (default: all)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Define command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: groupServer, Title: "Server:"},
		&cobra.Group{ID: groupModules, Title: "Modules:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Server commands
	applyCmd.GroupID = groupServer
	deleteCmd.GroupID = groupServer
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(deleteCmd)

	// Module commands
	listCmd.GroupID = groupModules
	exportCmd.GroupID = groupModules
	convertCmd.GroupID = groupModules
	doctorCmd.GroupID = groupModules
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(doctorCmd)

	// Utility commands
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveWorld returns the world to operate on (flag > config > "default").
func resolveWorld() string {
	return resolveString(world, cfg.World, mkgroups.DefaultContext)
}

// resolveModulesDir returns the module tree to read. With neither the
// flag nor the config key set it falls back to a directory named after
// the server, which must already exist to be trusted.
func resolveModulesDir() (string, error) {
	dir := cfg.ResolvedModulesDir(modulesDir)
	if dir == "" {
		return "", cli.ConfigError("you need to specify a modules path or import from bPermissions", nil)
	}
	if resolveString(modulesDir, cfg.ModulesDir) == "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return "", cli.ConfigError("the default modules path cannot be read: "+dir, nil)
		}
	}
	return dir, nil
}

// loadContexts merges the module tree into the contexts worldName needs:
// the default context, plus the world's own modules when worldName is not
// the default, plus every world when it is "all".
func loadContexts(worldName string) (mkgroups.ContextMap, error) {
	dir, err := resolveModulesDir()
	if err != nil {
		return nil, err
	}
	loader := modfile.Loader{Log: logger}
	contexts, err := loader.LoadContextMap(worldName, dir, modules)
	if err != nil {
		return nil, cli.ModuleDataError("loading modules", err)
	}
	return contexts, nil
}
