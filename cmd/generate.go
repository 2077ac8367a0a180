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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/makeviews/internal/types"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a migration from changed view definitions",
	Long: `Compare the merged views.yaml definitions against the last snapshot and
write a Goose migration containing the DDL needed to move between them.

Up statements drop removed or changed views before creating new ones. Down
statements are derived from the recorded create operations and restore the
previous definitions of anything that was dropped.

Statements whose failure is tolerated at runtime, such as the drop issued
before a forced create, are preceded by a REVIEW comment.`,
	RunE: runGenerate,
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&databaseType, "database", "",
		"Target database type (oracle, postgresql, mysql, sqlserver, sqlite)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Show what would be generated without creating files")
	cmd.Flags().BoolVar(&check, "check", false,
		"Exit with error code if migrations are needed (for CI/CD)")
	cmd.Flags().StringVar(&customName, "name", "",
		"Override auto-generated migration name")
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	return ExecuteGenerate(cmd, dryRun, check, customName)
}

// ExecuteGenerate runs the full scan, diff and write cycle
func ExecuteGenerate(cmd *cobra.Command, dryRun, check bool, customName string) error {
	cfg := loadConfig(cmd)

	components, err := InitializeComponents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = components.Logger.Sync() }()

	if cfg.Output.Verbose {
		fmt.Printf("%s Scanning modules for %s files...\n", blue("▶"),
			filepath.Join(cfg.Views.DefinitionsDir, cfg.Views.DefinitionsFile))
	}

	current, err := ScanAndParseDefinitions(components)
	if err != nil {
		if errors.Is(err, errNoDefinitions) {
			fmt.Printf("%s No view definition files found\n", yellow("!"))
			fmt.Printf("Add definitions at %s in your Go modules\n", cyan(cfg.DefinitionsPath()))
			return nil
		}
		return err
	}

	old, err := components.StateManager.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	changes := components.DiffEngine.Compare(old, current)
	if !changes.HasChanges() {
		fmt.Printf("%s No changes detected\n", green("✓"))
		return nil
	}

	if check {
		return fmt.Errorf("migrations needed: %d view change(s) detected", changes.Count())
	}

	migration, err := components.Generator.GenerateMigration(commandContext(cmd), old, current, changes, customName)
	if err != nil {
		return fmt.Errorf("failed to generate migration: %w", err)
	}

	if dryRun {
		fmt.Printf("%s Would create %s\n\n", cyan("▶"), migration.Filename)
		fmt.Println(components.Writer.PreviewMigration(migration))
		return nil
	}

	if err := components.StateManager.EnsureMigrationsDir(); err != nil {
		return err
	}

	path := filepath.Join(components.StateManager.GetMigrationsDir(), migration.Filename)
	if err := components.Writer.WriteMigration(migration, path); err != nil {
		return err
	}

	if err := components.StateManager.SaveSnapshot(current); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Printf("%s Created %s (%d change(s))\n", green("✓"), path, changes.Count())
	printApplyHint(components.DatabaseType)

	return nil
}

func printApplyHint(dbType types.DatabaseType) {
	if dbType == types.DatabaseOracle {
		fmt.Printf("%s Goose has no Oracle dialect; run the migration with your Oracle tooling or 'makeviews apply'\n", yellow("!"))
		return
	}
	fmt.Printf("Run %s to apply it\n", cyan("makeviews goose up"))
}
