/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

// Config represents the makeviews configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Migration settings
	Migration MigrationConfig `yaml:"migration" mapstructure:"migration"`

	// View definition settings
	Views ViewsConfig `yaml:"views" mapstructure:"views"`

	// Output settings
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// DatabaseConfig contains database-related settings
type DatabaseConfig struct {
	Type          string `yaml:"type" mapstructure:"type"`                     // oracle, postgresql, mysql, sqlserver, sqlite
	DefaultSchema string `yaml:"default_schema" mapstructure:"default_schema"` // Owning schema of refresh jobs
}

// MigrationConfig contains migration-related settings
type MigrationConfig struct {
	Directory           string `yaml:"directory" mapstructure:"directory"`                         // Directory for migration files
	FilePrefix          string `yaml:"file_prefix" mapstructure:"file_prefix"`                     // Timestamp format of migration file names
	SnapshotFile        string `yaml:"snapshot_file" mapstructure:"snapshot_file"`                 // Name of the definitions snapshot file
	IncludeDownSQL      bool   `yaml:"include_down_sql" mapstructure:"include_down_sql"`           // Whether to generate DOWN migrations
	ReviewCommentPrefix string `yaml:"review_comment_prefix" mapstructure:"review_comment_prefix"` // Prefix for statements whose failure is tolerated
}

// ViewsConfig contains view definition discovery settings
type ViewsConfig struct {
	DefinitionsFile string `yaml:"definitions_file" mapstructure:"definitions_file"` // Name of definition files to look for
	DefinitionsDir  string `yaml:"definitions_dir" mapstructure:"definitions_dir"`   // Directory holding the definition file in each module
	NotifyTarget    string `yaml:"notify_target" mapstructure:"notify_target"`       // Recipient of refresh job failure reports
	NotifySender    string `yaml:"notify_sender" mapstructure:"notify_sender"`       // Sender of refresh job failure reports
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Verbose      bool `yaml:"verbose" mapstructure:"verbose"`             // Enable verbose output
	ColorEnabled bool `yaml:"color_enabled" mapstructure:"color_enabled"` // Enable colored output
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:          "postgresql",
			DefaultSchema: "",
		},
		Migration: MigrationConfig{
			Directory:           "migrations",
			FilePrefix:          "20060102150405", // Go timestamp format for YYYYMMDDHHMMSS
			SnapshotFile:        ".views_snapshot.yaml",
			IncludeDownSQL:      true,
			ReviewCommentPrefix: "-- REVIEW: ",
		},
		Views: ViewsConfig{
			DefinitionsFile: "views.yaml",
			DefinitionsDir:  "views",
		},
		Output: OutputConfig{
			Verbose:      false,
			ColorEnabled: true,
		},
	}
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("MAKEVIEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("makeviews.config")
		v.SetConfigType("yaml")
		v.AddConfigPath("migrations")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration or returns default if not found
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# Makeviews Configuration File
#
# All settings can be overridden using environment variables with the prefix MAKEVIEWS_
# For example: MAKEVIEWS_DATABASE_TYPE=oracle
#
# For nested values, use underscores: MAKEVIEWS_VIEWS_NOTIFY_TARGET=dba@example.com
#
# views.notify_target is required to create materialized view refresh jobs (Oracle).
#

`

	fullContent := []byte(header + string(data))
	if err := os.WriteFile(path, fullContent, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefinitionsPath returns the definitions file of the current module
func (c *Config) DefinitionsPath() string {
	return filepath.Join(c.Views.DefinitionsDir, c.Views.DefinitionsFile)
}

// SnapshotPath returns the path of the definitions snapshot
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Migration.Directory, c.Migration.SnapshotFile)
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.default_schema", cfg.Database.DefaultSchema)

	v.SetDefault("migration.directory", cfg.Migration.Directory)
	v.SetDefault("migration.file_prefix", cfg.Migration.FilePrefix)
	v.SetDefault("migration.snapshot_file", cfg.Migration.SnapshotFile)
	v.SetDefault("migration.include_down_sql", cfg.Migration.IncludeDownSQL)
	v.SetDefault("migration.review_comment_prefix", cfg.Migration.ReviewCommentPrefix)

	v.SetDefault("views.definitions_file", cfg.Views.DefinitionsFile)
	v.SetDefault("views.definitions_dir", cfg.Views.DefinitionsDir)
	v.SetDefault("views.notify_target", cfg.Views.NotifyTarget)
	v.SetDefault("views.notify_sender", cfg.Views.NotifySender)

	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.color_enabled", cfg.Output.ColorEnabled)
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	return filepath.Join("migrations", "makeviews.config.yaml")
}

// ConfigExists checks if a config file exists
func ConfigExists() bool {
	_, err := os.Stat(GetConfigPath())
	return err == nil
}
