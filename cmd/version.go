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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/version"
)

var (
	versionOutputFormat string
	showBuildInfo       bool
	showCapabilities    bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information and dialect capabilities",
	Long: `Display version information for makeviews.

With --build-info the build date, VCS commit and platform are included. With
--capabilities the view features of the configured database are listed, which
tells which definitions will produce DDL and which are skipped.

Output formats:
- text (default): Human-readable format
- json: JSON format for scripting

Examples:
  makeviews version
  makeviews version --capabilities --database oracle
  makeviews version --format json --build-info`,
	RunE: runVersion,
}

// versionReport is the json form of the version command output
type versionReport struct {
	Version      string             `json:"version"`
	Build        map[string]string  `json:"build,omitempty"`
	Database     string             `json:"database,omitempty"`
	Capabilities *types.Capabilities `json:"capabilities,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	report := versionReport{Version: version.GetVersion()}

	if showBuildInfo {
		report.Build = version.GetBuildInfo()
	}

	if showCapabilities {
		cfg := loadConfig(cmd)
		dbType, err := types.ParseDatabaseType(cfg.Database.Type)
		if err != nil {
			return err
		}
		provider, err := providers.NewProvider(dbType)
		if err != nil {
			return err
		}
		caps := provider.Capabilities()
		report.Database = string(dbType)
		report.Capabilities = &caps
	}

	out := cmd.OutOrStdout()

	switch versionOutputFormat {
	case "json":
		jsonOutput, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(out, string(jsonOutput))
	case "text":
		if showBuildInfo {
			fmt.Fprintln(out, version.GetFullVersion())
		} else {
			fmt.Fprintln(out, version.GetDisplayVersion())
		}
		if report.Capabilities != nil {
			printCapabilities(out, report.Database, *report.Capabilities)
		}
	default:
		return fmt.Errorf("unknown output format: %s", versionOutputFormat)
	}
	return nil
}

func printCapabilities(out io.Writer, database string, caps types.Capabilities) {
	fmt.Fprintf(out, "\n%s capabilities:\n", database)
	for _, c := range []struct {
		name      string
		supported bool
	}{
		{"views", caps.Views},
		{"view column lists", caps.ViewColumnsDefinition},
		{"create or replace view", caps.ReplaceView},
		{"materialized views and refresh jobs", caps.MaterializedViews},
	} {
		mark := red("no")
		if c.supported {
			mark = green("yes")
		}
		fmt.Fprintf(out, "  %-36s %s\n", c.name, mark)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionOutputFormat, "format", "f", "text",
		"Output format (text, json)")
	versionCmd.Flags().BoolVarP(&showBuildInfo, "build-info", "b", false,
		"Show detailed build information")
	versionCmd.Flags().BoolVar(&showCapabilities, "capabilities", false,
		"List the view features of the configured database")
	versionCmd.Flags().StringVar(&databaseType, "database", "",
		"Database whose capabilities are listed (oracle, postgresql, mysql, sqlserver, sqlite)")
}
