package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DEBUGSWEEP_*)
// 2. Config file (.debugsweep/config.yml or .debugsweep/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".debugsweep")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides, e.g. DEBUGSWEEP_SCAN_BATCH_SIZE
	v.SetEnvPrefix("DEBUGSWEEP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("scan.max_file_size")
	v.BindEnv("scan.batch_size")
	v.BindEnv("scan.respect_gitignore")
	v.BindEnv("watch.debounce")
	v.BindEnv("gate.fail_severity")
	v.BindEnv("insert.tab_size")
	v.BindEnv("insert.use_spaces")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("scan.max_file_size", defaults.Scan.MaxFileSize)
	v.SetDefault("scan.extensions", defaults.Scan.Extensions)
	v.SetDefault("scan.exclude", defaults.Scan.Exclude)
	v.SetDefault("scan.batch_size", defaults.Scan.BatchSize)
	v.SetDefault("scan.respect_gitignore", defaults.Scan.RespectGitignore)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)

	v.SetDefault("gate.fail_severity", defaults.Gate.FailSeverity)

	v.SetDefault("insert.tab_size", defaults.Insert.TabSize)
	v.SetDefault("insert.use_spaces", defaults.Insert.UseSpaces)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
