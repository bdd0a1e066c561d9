package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// Config represents the mkgroups configuration from mkgroups.yaml.
type Config struct {
	// Top-level convenience fields
	ModulesDir string `mapstructure:"modules_dir"`
	World      string `mapstructure:"world"`

	// Target server
	Server ServerConfig `mapstructure:"server"`

	// Per-concern configuration
	Transport TransportConfig `mapstructure:"transport"`
	Diff      DiffConfig      `mapstructure:"diff"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig identifies the server whose permissions are reconciled.
type ServerConfig struct {
	Name   string `mapstructure:"name"`
	Plugin string `mapstructure:"plugin"`
}

// TransportConfig holds mark2 command delivery settings.
type TransportConfig struct {
	Retries int `mapstructure:"retries"`
}

// DiffConfig holds world override difference settings.
type DiffConfig struct {
	Removals string `mapstructure:"removals"`
}

// ExportConfig holds module export settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("MKGROUPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Top-level defaults
	v.SetDefault("modules_dir", "")
	v.SetDefault("world", "default")

	// Server defaults
	v.SetDefault("server.name", "")
	v.SetDefault("server.plugin", "LuckPerms")

	// Transport defaults
	v.SetDefault("transport.retries", 2)

	// Diff defaults
	v.SetDefault("diff.removals", "keep")

	// Export defaults
	v.SetDefault("export.dir", "")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for mkgroups.yaml or mkgroups.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		// Try mkgroups.yaml then mkgroups.yml
		for _, name := range []string{"mkgroups.yaml", "mkgroups.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break // Stop at repo root
		}

		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// ResolvedModulesDir returns the effective module directory: the flag value
// when given, then the config file's modules_dir, then the server name as a
// directory relative to the working directory. Empty means nothing was
// configured.
func (c *Config) ResolvedModulesDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	if c.ModulesDir != "" {
		return c.ModulesDir
	}
	return c.Server.Name
}

// ResolvedExportDir returns the effective export directory, with the flag
// taking precedence over export.dir.
func (c *Config) ResolvedExportDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	return c.Export.Dir
}
