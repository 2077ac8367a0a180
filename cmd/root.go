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
	"github.com/spf13/cobra"

	"github.com/ocomsoft/makeviews/internal/version"
)

var (
	configFile   string
	databaseType string
	dryRun       bool
	check        bool
	customName   string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "makeviews",
	Short: "View and materialized view migration generator for Go",
	Long: `Generate database migrations for views from views.yaml files in Go modules.

This tool scans the current module and its direct Go module dependencies for
views/views.yaml files, merges them, and generates Goose-compatible migration
files by comparing against the last generated snapshot.

When run without a subcommand, defaults to 'generate'.

Available commands:
- init: Initialize the migrations directory, config and a sample views.yaml
- generate: Generate a migration from changed view definitions
- dump_sql: Print the DDL for all current view definitions
- apply: Create all current view definitions on a live database
- goose: Run migrations with goose

Features:
- Plain views with column lists, check options and disabled primary keys
- Mapping views that expose the columns of an existing table under new names
- Oracle materialized views with scheduled refresh jobs and failure mail
- Capability-aware DDL: unsupported operations are skipped per database
- Down migrations derived from the recorded create operations
- REVIEW comments for statements whose failure is tolerated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args)
	},
}

// GetRootCmd returns the root command for embedding in other applications
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: migrations/makeviews.config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show detailed processing information")

	addGenerateFlags(rootCmd)

	rootCmd.Version = version.GetVersion()
	rootCmd.SetVersionTemplate(version.GetDisplayVersion() + "\n")
}
