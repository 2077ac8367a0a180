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
	"strings"

	"github.com/spf13/cobra"
)

// dumpSQLCmd represents the dump_sql command
var dumpSQLCmd = &cobra.Command{
	Use:   "dump_sql",
	Short: "Print the DDL for all current view definitions",
	Long: `Scan and merge all views.yaml files and print the statements that would
create every view, materialized view, mapping view and refresh job from scratch.

Nothing is written and the snapshot is not consulted. Statements that the target
database cannot execute are left out.`,
	RunE: runDumpSQL,
}

func init() {
	rootCmd.AddCommand(dumpSQLCmd)
	dumpSQLCmd.Flags().StringVar(&databaseType, "database", "",
		"Target database type (oracle, postgresql, mysql, sqlserver, sqlite)")
}

func runDumpSQL(cmd *cobra.Command, _ []string) error {
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

	statements, err := components.Generator.Statements(commandContext(cmd), defs)
	if err != nil {
		return fmt.Errorf("failed to build statements: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- makeviews DDL for %s\n", components.DatabaseType)
	for _, stmt := range statements {
		sql := strings.TrimSpace(stmt.SQL)
		if !strings.HasSuffix(sql, ";") {
			sql += ";"
		}
		fmt.Fprintf(out, "\n%s\n", sql)
	}

	return nil
}
