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
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/config"
	"github.com/ocomsoft/makeviews/internal/definitions"
	"github.com/ocomsoft/makeviews/internal/diff"
	"github.com/ocomsoft/makeviews/internal/generator"
	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/scanner"
	"github.com/ocomsoft/makeviews/internal/state"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/writer"
)

var errNoDefinitions = errors.New("no view definition files found")

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Components holds the initialized processing components
type Components struct {
	Config       *config.Config
	Logger       *zap.Logger
	DatabaseType types.DatabaseType
	Provider     providers.Provider
	Scanner      *scanner.Scanner
	Parser       *definitions.Parser
	Merger       *definitions.Merger
	StateManager *state.Manager
	DiffEngine   *diff.Engine
	Generator    *generator.Generator
	Writer       *writer.Writer
}

// loadConfig loads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.LoadOrDefault(configFile)

	if cmd.Flags().Changed("database") {
		cfg.Database.Type = databaseType
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Output.Verbose = verbose
	}
	if !cfg.Output.ColorEnabled {
		color.NoColor = true
	}

	return cfg
}

// InitializeComponents creates all processing components for cfg
func InitializeComponents(cfg *config.Config) (*Components, error) {
	dbType, err := types.ParseDatabaseType(cfg.Database.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid database type: %w", err)
	}

	provider, err := providers.NewProvider(dbType)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Output.Verbose)

	return &Components{
		Config:       cfg,
		Logger:       logger,
		DatabaseType: dbType,
		Provider:     provider,
		Scanner:      scanner.New(logger, cfg.Views.DefinitionsDir, cfg.Views.DefinitionsFile),
		Parser:       definitions.NewParser(logger),
		Merger:       definitions.NewMerger(logger),
		StateManager: state.New(cfg.Migration.Directory, cfg.Migration.SnapshotFile, logger),
		DiffEngine:   diff.New(logger),
		Generator: generator.New(provider, generator.Options{
			Schema:              cfg.Database.DefaultSchema,
			NotifyTarget:        cfg.Views.NotifyTarget,
			NotifySender:        cfg.Views.NotifySender,
			IncludeDown:         cfg.Migration.IncludeDownSQL,
			ReviewCommentPrefix: cfg.Migration.ReviewCommentPrefix,
			FilePrefix:          cfg.Migration.FilePrefix,
		}, logger),
		Writer: writer.New(logger),
	}, nil
}

// newLogger logs at debug level when verbose and warnings otherwise
func newLogger(verbose bool) *zap.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.DisableStacktrace = true
	if !verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ScanAndParseDefinitions scans modules for definition files and merges them
func ScanAndParseDefinitions(c *Components) (*types.Definitions, error) {
	files, err := c.Scanner.ScanModules()
	if err != nil {
		return nil, fmt.Errorf("failed to scan modules: %w", err)
	}

	if len(files) == 0 {
		return nil, errNoDefinitions
	}

	var all []*types.Definitions
	for _, file := range files {
		c.Logger.Debug("Parsing definitions", zap.String("module", file.ModulePath), zap.String("path", file.FilePath))

		defs, err := c.Parser.Parse(file.FilePath, file.Content)
		if err != nil {
			return nil, fmt.Errorf("parsing failed for %s: %w", file.ModulePath, err)
		}
		all = append(all, defs)
	}

	merged, err := c.Merger.Merge(all)
	if err != nil {
		return nil, fmt.Errorf("failed to merge definitions: %w", err)
	}

	return merged, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
