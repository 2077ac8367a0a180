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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/generator"
	"github.com/ocomsoft/makeviews/internal/migration"
	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/views"
)

var applyRollback bool

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create all current view definitions on a live database",
	Long: `Scan and merge all views.yaml files and create every view, materialized view,
mapping view and refresh job directly on the configured database.

Mapping view columns are read from the declared sources first and then from the
database catalog. If a statement fails, everything created so far is dropped
again in reverse order unless --rollback=false is given.

Connection settings are read from MAKEVIEWS_DB_* environment variables or
MAKEVIEWS_DB_URL. This is the way to install views on Oracle, which goose
does not support.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&databaseType, "database", "",
		"Target database type (oracle, postgresql, mysql, sqlserver, sqlite)")
	applyCmd.Flags().BoolVar(&applyRollback, "rollback", true,
		"Drop created objects again when a statement fails")
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg := loadConfig(cmd)

	components, err := InitializeComponents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = components.Logger.Sync() }()

	defs, err := ScanAndParseDefinitions(components)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	recorder := migration.NewRecorder()
	manager := components.Generator.Manager(db, defs,
		providers.NewDatabaseColumns(components.Provider, db),
		views.WithRecorder(recorder))

	fmt.Printf("%s Creating views on %s...\n", blue("▶"), components.DatabaseType)

	if err := generator.CreateAll(ctx, manager, defs); err != nil {
		if !applyRollback || recorder.Len() == 0 {
			return fmt.Errorf("apply failed: %w", err)
		}

		components.Logger.Warn("Apply failed, rolling back",
			zap.Error(err), zap.Int("operations", recorder.Len()))

		if rbErr := recorder.Revert(ctx, manager); rbErr != nil {
			return fmt.Errorf("apply failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return fmt.Errorf("apply failed and was rolled back: %w", err)
	}

	fmt.Printf("%s Created %d object(s)\n", green("✓"), recorder.Len())
	return nil
}
