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
	"context"
	"database/sql"
	"fmt"
	"strconv"

	goose "github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/ocomsoft/makeviews/internal/config"
	"github.com/ocomsoft/makeviews/internal/types"
)

// gooseCmd represents the goose command
var gooseCmd = &cobra.Command{
	Use:   "goose",
	Short: "Database migration commands using goose",
	Long: `Database migration commands using goose library.

This command runs the generated view migrations using the same configuration
as makeviews (database type, connection settings, and migrations directory).
Connection settings are read from MAKEVIEWS_DB_* environment variables or
MAKEVIEWS_DB_URL.

Goose has no Oracle dialect. Oracle migrations must be run with other tooling
or created directly with 'makeviews apply'.

Available subcommands:
  up          Migrate the DB to the most recent version available
  up-by-one   Migrate the DB up by 1
  up-to       Migrate the DB to a specific VERSION
  down        Roll back the version by 1
  down-to     Roll back to a specific VERSION
  redo        Re-run the latest migration
  reset       Roll back all migrations
  status      Print the status of all migrations
  version     Print the current version of the database
  create      Create a new migration file
  fix         Apply sequential ordering to migrations`,
}

// setupGooseDB sets up the database connection and goose configuration
func setupGooseDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if types.DatabaseType(cfg.Database.Type) == types.DatabaseOracle {
		return nil, fmt.Errorf("goose does not support oracle; use 'makeviews apply' instead")
	}

	db, driver, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := goose.SetDialect(driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return db, nil
}

// runGooseCommand executes a goose command with proper error handling
func runGooseCommand(ctx context.Context, cfg *config.Config, command string, args ...string) error {
	// fix only renames files
	if command == "fix" {
		if err := goose.Fix(cfg.Migration.Directory); err != nil {
			return fmt.Errorf("goose fix failed: %w", err)
		}
		fmt.Printf("%s goose fix completed successfully\n", green("✓"))
		return nil
	}

	fmt.Printf("%s Running goose %s...\n", blue("▶"), command)

	db, err := setupGooseDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	dir := cfg.Migration.Directory

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "up-by-one":
		err = goose.UpByOneContext(ctx, db, dir)
	case "up-to":
		version, parseErr := parseVersion(command, args)
		if parseErr != nil {
			return parseErr
		}
		err = goose.UpToContext(ctx, db, dir, version)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "down-to":
		version, parseErr := parseVersion(command, args)
		if parseErr != nil {
			return parseErr
		}
		err = goose.DownToContext(ctx, db, dir, version)
	case "redo":
		err = goose.RedoContext(ctx, db, dir)
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		version, versionErr := goose.GetDBVersionContext(ctx, db)
		if versionErr != nil {
			err = versionErr
		} else {
			fmt.Printf("goose: version %d\n", version)
		}
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("create requires a name argument")
		}
		err = goose.Create(db, dir, args[0], "sql")
	default:
		return fmt.Errorf("unknown goose command: %s", command)
	}

	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	fmt.Printf("%s goose %s completed successfully\n", green("✓"), command)
	return nil
}

func parseVersion(command string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s requires a version argument", command)
	}
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version: %s", args[0])
	}
	return version, nil
}

// createGooseSubcommand creates a goose subcommand
func createGooseSubcommand(name, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault(configFile)
			return runGooseCommand(commandContext(cmd), cfg, name, args...)
		},
	}
}

func init() {
	rootCmd.AddCommand(gooseCmd)

	// Add all goose subcommands
	gooseCmd.AddCommand(createGooseSubcommand("up",
		"Migrate the DB to the most recent version available",
		"Migrate the DB to the most recent version available"))

	gooseCmd.AddCommand(createGooseSubcommand("up-by-one",
		"Migrate the DB up by 1",
		"Migrate the DB up by 1"))

	upToCmd := createGooseSubcommand("up-to",
		"Migrate the DB to a specific VERSION",
		"Migrate the DB to a specific VERSION")
	upToCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(upToCmd)

	gooseCmd.AddCommand(createGooseSubcommand("down",
		"Roll back the version by 1",
		"Roll back the version by 1"))

	downToCmd := createGooseSubcommand("down-to",
		"Roll back to a specific VERSION",
		"Roll back to a specific VERSION")
	downToCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(downToCmd)

	gooseCmd.AddCommand(createGooseSubcommand("redo",
		"Re-run the latest migration",
		"Re-run the latest migration"))

	gooseCmd.AddCommand(createGooseSubcommand("reset",
		"Roll back all migrations",
		"Roll back all migrations"))

	gooseCmd.AddCommand(createGooseSubcommand("status",
		"Print the status of all migrations",
		"Print the status of all migrations"))

	gooseCmd.AddCommand(createGooseSubcommand("version",
		"Print the current version of the database",
		"Print the current version of the database"))

	createCmd := createGooseSubcommand("create",
		"Create a new migration file",
		"Create a new migration file")
	createCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(createCmd)

	gooseCmd.AddCommand(createGooseSubcommand("fix",
		"Apply sequential ordering to migrations",
		"Apply sequential ordering to migrations"))
}
