package config

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"debugsweep/internal/insertion"
	"debugsweep/internal/scanner"
)

// Config represents the complete debugsweep configuration.
// It can be loaded from .debugsweep/config.yml with environment variable
// overrides.
type Config struct {
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Gate   GateConfig   `yaml:"gate" mapstructure:"gate"`
	Insert InsertConfig `yaml:"insert" mapstructure:"insert"`
}

// ScanConfig controls file eligibility and the scan engine.
type ScanConfig struct {
	MaxFileSize      int64    `yaml:"max_file_size" mapstructure:"max_file_size"`         // per-file ceiling in bytes
	Extensions       []string `yaml:"extensions" mapstructure:"extensions"`               // e.g. [".php", ".phtml"]
	Exclude          []string `yaml:"exclude" mapstructure:"exclude"`                     // glob patterns relative to the root
	BatchSize        int      `yaml:"batch_size" mapstructure:"batch_size"`               // bounded batch width
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // honor the root .gitignore
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"` // quiet period before a re-scan fires
}

// GateConfig controls the staging gate.
type GateConfig struct {
	FailSeverity string `yaml:"fail_severity" mapstructure:"fail_severity"` // lowest severity that fails the gate
}

// InsertConfig carries the editor indentation preferences for insertion
// planning.
type InsertConfig struct {
	TabSize   int  `yaml:"tab_size" mapstructure:"tab_size"`
	UseSpaces bool `yaml:"use_spaces" mapstructure:"use_spaces"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxFileSize:      scanner.DefaultMaxFileSize,
			Extensions:       scanner.DefaultExtensions(),
			Exclude:          []string{"vendor/**", "node_modules/**", "storage/**", "cache/**"},
			BatchSize:        scanner.DefaultBatchSize,
			RespectGitignore: true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Gate: GateConfig{
			FailSeverity: string(scanner.SeverityInfo),
		},
		Insert: InsertConfig{
			TabSize:   4,
			UseSpaces: true,
		},
	}
}

// EngineOptions translates the scan section into engine options for a
// workspace root.
func (c *Config) EngineOptions(rootDir string, logger hclog.Logger) scanner.Options {
	return scanner.Options{
		RootDir:          rootDir,
		MaxFileSize:      c.Scan.MaxFileSize,
		Extensions:       c.Scan.Extensions,
		ExcludePatterns:  c.Scan.Exclude,
		BatchSize:        c.Scan.BatchSize,
		RespectGitignore: c.Scan.RespectGitignore,
		Logger:           logger,
	}
}

// InsertOptions translates the insert section into resolver options.
func (c *Config) InsertOptions() insertion.Options {
	return insertion.Options{
		TabSize:   c.Insert.TabSize,
		UseSpaces: c.Insert.UseSpaces,
	}
}

// FailSeverity returns the gate threshold as a typed severity.
func (c *Config) FailSeverity() scanner.Severity {
	return scanner.Severity(c.Gate.FailSeverity)
}
