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
package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/diff"
	"github.com/ocomsoft/makeviews/internal/migration"
	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/views"
)

// Options controls migration generation
type Options struct {
	Schema              string
	NotifyTarget        string
	NotifySender        string
	IncludeDown         bool
	ReviewCommentPrefix string
	FilePrefix          string
}

// Generator turns definition changes into goose migrations
type Generator struct {
	provider providers.Provider
	options  Options
	logger   *zap.Logger
}

func New(provider providers.Provider, options Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.ReviewCommentPrefix == "" {
		options.ReviewCommentPrefix = "-- REVIEW: "
	}
	if options.FilePrefix == "" {
		options.FilePrefix = "20060102150405"
	}
	return &Generator{
		provider: provider,
		options:  options,
		logger:   logger,
	}
}

// Migration is a generated migration file
type Migration struct {
	Name     string
	Filename string
	UpSQL    string
	DownSQL  string
	Up       []views.Statement
	Down     []views.Statement
	Commands []migration.Command
}

// GenerateMigration builds the migration from old to current. old is nil for
// the first migration.
func (g *Generator) GenerateMigration(ctx context.Context, old, current *types.Definitions, changes *diff.Result, customName string) (*Migration, error) {
	columns := sourceColumns(old, current)
	recorder := migration.NewRecorder()

	up := views.NewScript()
	forward := g.manager(up, columns, views.WithRecorder(recorder))
	plan := newPlan(changes, current, g.provider.Capabilities())

	if err := plan.drop(ctx, forward); err != nil {
		return nil, err
	}
	if err := plan.create(ctx, forward); err != nil {
		return nil, err
	}

	m := &Migration{
		Up:       up.Statements(),
		Commands: recorder.Commands(),
	}

	if g.options.IncludeDown {
		down := views.NewScript()
		backward := g.manager(down, columns)

		if err := recorder.Revert(ctx, backward); err != nil {
			return nil, fmt.Errorf("failed to generate down migration: %w", err)
		}
		if err := plan.restore(ctx, backward); err != nil {
			return nil, fmt.Errorf("failed to generate down migration: %w", err)
		}
		m.Down = down.Statements()
	}

	name := customName
	if name == "" {
		name = generateName(changes)
	}
	m.Name = sanitizeName(name)
	m.Filename = fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(g.options.FilePrefix), m.Name)
	m.UpSQL = g.render("Up", m.Up)
	m.DownSQL = g.render("Down", m.Down)

	g.logger.Debug("Generated migration",
		zap.String("file", m.Filename),
		zap.Int("up_statements", len(m.Up)),
		zap.Int("down_statements", len(m.Down)))

	return m, nil
}

// CreateAll issues the create operations of every definition in dependency
// order: views, materialized views, mapping views, refresh jobs.
func CreateAll(ctx context.Context, m *views.Manager, defs *types.Definitions) error {
	plan := newPlan(diff.New(nil).Compare(nil, defs), defs, m.Capabilities())
	return plan.create(ctx, m)
}

// Statements renders every definition as forward DDL
func (g *Generator) Statements(ctx context.Context, defs *types.Definitions) ([]views.Statement, error) {
	script := views.NewScript()
	if err := CreateAll(ctx, g.manager(script, sourceColumns(nil, defs)), defs); err != nil {
		return nil, err
	}
	return script.Statements(), nil
}

// Manager returns a view manager issuing statements on db. Columns declared
// in the sources of defs are consulted before live.
func (g *Generator) Manager(db views.Executor, defs *types.Definitions, live views.ColumnSource, opts ...views.Option) *views.Manager {
	var columns views.ColumnSource = sourceColumns(nil, defs)
	if live != nil {
		columns = views.ColumnSources{columns, live}
	}
	return g.manager(db, columns, opts...)
}

func (g *Generator) manager(db views.Executor, columns views.ColumnSource, opts ...views.Option) *views.Manager {
	opts = append([]views.Option{
		views.WithColumnSource(columns),
		views.WithLogger(g.logger),
		views.WithSchema(g.options.Schema),
		views.WithNotify(g.options.NotifyTarget, g.options.NotifySender),
	}, opts...)
	return views.New(db, g.provider, opts...)
}

// sourceColumns collects the declared sources, current definitions winning
func sourceColumns(old, current *types.Definitions) views.StaticColumns {
	columns := views.StaticColumns{}
	for _, defs := range []*types.Definitions{old, current} {
		if defs == nil {
			continue
		}
		for _, source := range defs.Sources {
			columns[strings.ToLower(source.Name)] = source.Columns
		}
	}
	return columns
}

func (g *Generator) render(direction string, statements []views.Statement) string {
	var sql strings.Builder

	fmt.Fprintf(&sql, "-- +goose %s\n", direction)

	if len(statements) == 0 {
		sql.WriteString("-- No statements generated\n")
		return sql.String()
	}

	for _, stmt := range statements {
		sql.WriteString("-- +goose StatementBegin\n")
		switch stmt.Mode {
		case views.ModeBestEffort:
			sql.WriteString(g.options.ReviewCommentPrefix + "drop before create; remove this statement if the view does not exist\n")
		case views.ModeIgnoreMissingJob:
			sql.WriteString(g.options.ReviewCommentPrefix + "fails if the refresh job does not exist; remove this statement in that case\n")
		}
		sql.WriteString(stmt.SQL)
		if !strings.HasSuffix(stmt.SQL, ";") {
			sql.WriteString(";")
		}
		sql.WriteString("\n-- +goose StatementEnd\n")
	}

	return sql.String()
}

func generateName(changes *diff.Result) string {
	var operations []string

	add := func(changeType diff.ChangeType, name string) {
		switch changeType {
		case diff.ChangeAdded:
			operations = append(operations, "create_"+name)
		case diff.ChangeRemoved:
			operations = append(operations, "drop_"+name)
		case diff.ChangeModified:
			operations = append(operations, "alter_"+name)
		}
	}

	for _, c := range changes.Views {
		add(c.Type, c.Name)
	}
	for _, c := range changes.MaterializedViews {
		add(c.Type, c.Name)
	}
	for _, c := range changes.MappingViews {
		add(c.Type, c.Name)
	}
	for _, c := range changes.RefreshJobs {
		add(c.Type, c.Name+"_refresh")
	}

	if len(operations) == 0 {
		return "views"
	}
	if len(operations) <= 2 {
		return strings.Join(operations, "_and_")
	}
	return fmt.Sprintf("migrate_%d_views", len(operations))
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeName(name string) string {
	name = nonIdentifier.ReplaceAllString(strings.ToLower(name), "_")
	name = strings.Trim(name, "_")

	if len(name) > 100 {
		name = name[:100]
	}

	if name == "" {
		name = "views"
	}

	return name
}
