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
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/makeviews/internal/config"
	"github.com/ocomsoft/makeviews/internal/types"
)

const sampleDefinitions = `database:
  name: %s
  version: 1.0.0

# Declared sources let mapping views be generated without a database connection.
# sources:
#   - name: customers
#     columns: [id, name, email]

views: []
#  - name: active_customers
#    query: SELECT id, name FROM customers WHERE active = 1
#    columns: [id, name]
#    primary_key: [id]
#    check_option: LOCAL

# Materialized views and refresh jobs are created on Oracle only.
# materialized_views:
#   - name: customer_totals
#     query: SELECT customer_id, SUM(total) total FROM orders GROUP BY customer_id
#     primary_key: [customer_id]
#     refresh_schedule: FREQ=DAILY;BYHOUR=2

# mapping_views:
#   - name: customers_v2
#     source: customers
#     columns:
#       - {from: id, to: customer_id}
#       - {from: name, to: full_name}
`

var initDatabaseType string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migrations directory, config and a sample views.yaml",
	Long: `Initialize the migrations directory structure for makeviews.

This command:
- Creates the migrations/ directory if it doesn't exist
- Writes migrations/makeviews.config.yaml with the chosen database type
- Creates views/views.yaml with commented examples if the module has none
- Creates an initial migration when definitions already exist, or an empty
  snapshot otherwise

Use this command when setting up makeviews for the first time in a project.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDatabaseType, "database", "postgresql",
		"Target database type (oracle, postgresql, mysql, sqlserver, sqlite)")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat("go.mod"); os.IsNotExist(err) {
		return fmt.Errorf("go.mod not found. Please run this command from the root of a Go module")
	}

	if _, err := types.ParseDatabaseType(initDatabaseType); err != nil {
		return fmt.Errorf("invalid database type: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.Database.Type = initDatabaseType
	cfg.Output.Verbose = verbose

	components, err := InitializeComponents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = components.Logger.Sync() }()

	if err := components.StateManager.EnsureMigrationsDir(); err != nil {
		return err
	}

	configPath := config.GetConfigPath()
	if !config.ConfigExists() {
		if err := cfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("%s Created config file: %s\n", green("✓"), configPath)
	}

	snapshotPath := components.StateManager.GetSnapshotPath()
	if _, err := os.Stat(snapshotPath); err == nil {
		fmt.Printf("%s Project already initialized. Snapshot exists at: %s\n", yellow("!"), snapshotPath)
		fmt.Printf("Use %s to generate new migrations\n", cyan("makeviews generate"))
		return nil
	}

	definitionsPath := cfg.DefinitionsPath()
	if _, err := os.Stat(definitionsPath); os.IsNotExist(err) {
		if err := writeSampleDefinitions(definitionsPath); err != nil {
			return err
		}
		fmt.Printf("%s Created sample definitions: %s\n", green("✓"), definitionsPath)
	}

	current, err := ScanAndParseDefinitions(components)
	if err != nil && !errors.Is(err, errNoDefinitions) {
		return err
	}

	if current == nil || current.IsEmpty() {
		if err := components.StateManager.SaveSnapshot(&types.Definitions{}); err != nil {
			return fmt.Errorf("failed to create initial snapshot: %w", err)
		}
		fmt.Printf("%s Created empty snapshot at: %s\n", green("✓"), snapshotPath)
		return nil
	}

	changes := components.DiffEngine.Compare(nil, current)
	migration, err := components.Generator.GenerateMigration(commandContext(cmd), nil, current, changes, "initial")
	if err != nil {
		return fmt.Errorf("failed to generate initial migration: %w", err)
	}

	path := filepath.Join(components.StateManager.GetMigrationsDir(), migration.Filename)
	if err := components.Writer.WriteMigration(migration, path); err != nil {
		return err
	}

	if err := components.StateManager.SaveSnapshot(current); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Printf("%s Created initial migration: %s\n", green("✓"), path)
	printApplyHint(components.DatabaseType)

	return nil
}

func writeSampleDefinitions(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}

	name := filepath.Base(mustGetwd())
	if err := os.WriteFile(path, []byte(fmt.Sprintf(sampleDefinitions, name)), 0644); err != nil {
		return fmt.Errorf("failed to write sample definitions: %w", err)
	}
	return nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "project"
	}
	return wd
}
