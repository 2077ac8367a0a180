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
package views

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/utils"
)

// MaxStatementLogLength is the maximum length of a statement written to the log
const MaxStatementLogLength = 120

// Executor runs DDL against an already connected database session.
// *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StatementMode tells an executor how the manager treats a statement's failure
type StatementMode int

const (
	// ModeRequired statements propagate every error
	ModeRequired StatementMode = iota
	// ModeBestEffort statements may fail; the error is discarded
	ModeBestEffort
	// ModeIgnoreMissingJob statements may fail with "job does not exist"
	ModeIgnoreMissingJob
)

// ModeExecutor is implemented by executors that want to know how a
// statement's failure will be handled, such as Script
type ModeExecutor interface {
	ExecMode(ctx context.Context, query string, mode StatementMode) error
}

// ColumnSource lists the columns of an existing table or view
type ColumnSource interface {
	Columns(ctx context.Context, name string) ([]string, error)
}

// Recorder captures forward operations so they can be inverted later
type Recorder interface {
	Record(kind types.CommandKind, args ...any)
}

// Manager assembles view DDL for one dialect and hands it to an executor.
// Operations the dialect cannot express return nil without executing
// anything.
type Manager struct {
	db           Executor
	provider     providers.Provider
	caps         types.Capabilities
	columns      ColumnSource
	recorder     Recorder
	logger       *zap.Logger
	schema       string
	notifyTarget string
	notifySender string
}

// Option configures a Manager
type Option func(*Manager)

// WithColumnSource sets the metadata collaborator used by CreateMappingView
func WithColumnSource(columns ColumnSource) Option {
	return func(m *Manager) { m.columns = columns }
}

// WithRecorder records CreateView, CreateMaterializedView and
// CreateMvRefreshJob calls once the object they create exists
func WithRecorder(recorder Recorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// WithLogger sets the logger; nil keeps the no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSchema sets the owning schema used to qualify refresh jobs
func WithSchema(schema string) Option {
	return func(m *Manager) { m.schema = schema }
}

// WithNotify sets who receives refresh job failure reports
func WithNotify(target, sender string) Option {
	return func(m *Manager) {
		m.notifyTarget = target
		m.notifySender = sender
	}
}

// New creates a Manager executing through db with the given dialect
func New(db Executor, provider providers.Provider, opts ...Option) *Manager {
	m := &Manager{
		db:       db,
		provider: provider,
		caps:     provider.Capabilities(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capabilities returns the capability flags of the active dialect
func (m *Manager) Capabilities() types.Capabilities {
	return m.caps
}

// CreateView creates a view. fn, when given, declares the view's column list.
func (m *Manager) CreateView(ctx context.Context, name, selectQuery string, opts types.ViewOptions, fn func(*ViewDefinition)) error {
	if !m.caps.Views {
		m.skip("create view", name)
		return nil
	}

	def := NewViewDefinition(m.provider, selectQuery)
	if fn != nil {
		fn(def)
	}

	if opts.Force {
		m.dropBeforeCreate(ctx, name)
	}

	return m.createView(ctx, "CREATE VIEW", name, def, opts, func() {
		m.record(types.CommandCreateView, name, selectQuery, opts)
	})
}

// CreateOrReplaceView creates or replaces a view. It never drops first and
// does nothing unless the dialect has CREATE OR REPLACE VIEW.
func (m *Manager) CreateOrReplaceView(ctx context.Context, name, selectQuery string, opts types.ViewOptions, fn func(*ViewDefinition)) error {
	if !m.caps.Views || !m.caps.ReplaceView {
		m.skip("create or replace view", name)
		return nil
	}

	def := NewViewDefinition(m.provider, selectQuery)
	if fn != nil {
		fn(def)
	}

	return m.createView(ctx, "CREATE OR REPLACE VIEW", name, def, opts, nil)
}

// CreateMaterializedView creates a materialized view with the dialect's fixed
// storage and refresh clauses, and schedules a refresh job when
// opts.RefreshSchedule is set.
func (m *Manager) CreateMaterializedView(ctx context.Context, name, selectQuery string, opts types.ViewOptions, fn func(*ViewDefinition)) error {
	if !m.caps.MaterializedViews {
		m.skip("create materialized view", name)
		return nil
	}

	def := NewViewDefinition(m.provider, selectQuery)
	if fn != nil {
		fn(def)
	}

	stmt, err := m.provider.GenerateCreateMaterializedView(m.provider.QuoteTableName(name), m.columnList(def), selectQuery)
	if errors.IsUnsupported(err) {
		m.skip("create materialized view", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate materialized view %s: %w", name, err)
	}

	if err := m.exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create materialized view %s: %w", name, err)
	}

	// Recorded before the sub-steps so a failed constraint or job still
	// leaves the view revertible
	m.record(types.CommandCreateMaterializedView, name, selectQuery, opts)

	if len(opts.PrimaryKey) > 0 {
		if err := m.addPrimaryKey(ctx, "MATERIALIZED VIEW", name, opts.PrimaryKey); err != nil {
			return err
		}
	}

	if opts.RefreshSchedule != "" {
		if err := m.createRefreshJob(ctx, name, opts.RefreshSchedule); err != nil {
			return err
		}
	}

	return nil
}

// CreateMappingView creates newName as a view over oldName exposing the
// columns fn maps. The columns of oldName come from the column source.
func (m *Manager) CreateMappingView(ctx context.Context, oldName, newName string, opts types.ViewOptions, fn func(*MappingDefinition) error) error {
	if !m.caps.Views {
		m.skip("create mapping view", newName)
		return nil
	}
	if fn == nil {
		return errors.NewValidationError(newName, "mapping view requires a mapping callback")
	}
	if m.columns == nil {
		return fmt.Errorf("create mapping view %s: no column source configured", newName)
	}

	sourceColumns, err := m.columns.Columns(ctx, oldName)
	if err != nil {
		return err
	}

	def := NewMappingDefinition(oldName, sourceColumns)
	if err := fn(def); err != nil {
		return err
	}
	if len(def.Mappings()) == 0 {
		return errors.NewValidationError(newName, "mapping view has no mapped columns")
	}

	if opts.Force {
		m.dropBeforeCreate(ctx, newName)
	}

	var projection []string
	for _, mapping := range def.Mappings() {
		column := m.provider.QuoteColumnName(mapping.From)
		if !m.caps.ViewColumnsDefinition {
			column += " AS " + m.provider.QuoteColumnName(mapping.To)
		}
		projection = append(projection, column)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(projection, ", "), m.provider.QuoteTableName(oldName))

	view := NewViewDefinition(m.provider, query)
	for _, exposed := range def.ExposedNames() {
		view.AddColumn(exposed)
	}

	return m.createView(ctx, "CREATE VIEW", newName, view, opts, func() {
		m.record(types.CommandCreateView, newName, oldName, def.Mappings())
	})
}

// DropView drops a view
func (m *Manager) DropView(ctx context.Context, name string, opts types.DropOptions) error {
	if !m.caps.Views {
		m.skip("drop view", name)
		return nil
	}

	if err := m.exec(ctx, m.dropViewSQL(name, opts.Behavior)); err != nil {
		return fmt.Errorf("failed to drop view %s: %w", name, err)
	}
	return nil
}

// DropMaterializedView drops the view's refresh job, if any, then the view
func (m *Manager) DropMaterializedView(ctx context.Context, name string) error {
	if !m.caps.MaterializedViews {
		m.skip("drop materialized view", name)
		return nil
	}

	if err := m.DropMvRefreshJob(ctx, name); err != nil {
		return err
	}

	stmt := "DROP MATERIALIZED VIEW " + m.provider.QuoteTableName(name)
	if err := m.exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop materialized view %s: %w", name, err)
	}
	return nil
}

// CreateMvRefreshJob schedules a complete refresh of a materialized view
func (m *Manager) CreateMvRefreshJob(ctx context.Context, name, schedule string) error {
	if !m.caps.MaterializedViews {
		m.skip("create refresh job", name)
		return nil
	}

	if err := m.createRefreshJob(ctx, name, schedule); err != nil {
		return err
	}

	m.record(types.CommandCreateMvRefreshJob, name, schedule)
	return nil
}

// DropMvRefreshJob drops the refresh job of a materialized view. A job that
// does not exist counts as dropped; every other error is returned.
func (m *Manager) DropMvRefreshJob(ctx context.Context, name string) error {
	stmt, err := m.provider.GenerateDropRefreshJob(m.schema, name)
	if errors.IsUnsupported(err) {
		m.skip("drop refresh job", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate refresh job drop for %s: %w", name, err)
	}

	m.logStatement(stmt)
	if err := m.run(ctx, stmt, ModeIgnoreMissingJob); err != nil {
		if m.provider.IsJobNotFound(err) {
			m.logger.Info("Refresh job does not exist, nothing to drop", zap.String("view", name))
			return nil
		}
		return fmt.Errorf("failed to drop refresh job for %s: %w", name, err)
	}
	return nil
}

// createView runs created, if set, as soon as the view itself exists
func (m *Manager) createView(ctx context.Context, verb, name string, def *ViewDefinition, opts types.ViewOptions, created func()) error {
	var sql strings.Builder
	sql.WriteString(verb + " " + m.provider.QuoteTableName(name))
	if columns := m.columnList(def); columns != "" {
		fmt.Fprintf(&sql, " (%s)", columns)
	}
	sql.WriteString(" AS " + def.SelectQuery())
	if opts.CheckOption != types.CheckOptionNone {
		fmt.Fprintf(&sql, " WITH %s CHECK OPTION", opts.CheckOption)
	}

	if err := m.exec(ctx, sql.String()); err != nil {
		return fmt.Errorf("failed to create view %s: %w", name, err)
	}
	if created != nil {
		created()
	}

	if len(opts.PrimaryKey) > 0 {
		return m.addPrimaryKey(ctx, "VIEW", name, opts.PrimaryKey)
	}
	return nil
}

// columnList is empty when the dialect cannot name view columns
func (m *Manager) columnList(def *ViewDefinition) string {
	if !m.caps.ViewColumnsDefinition {
		return ""
	}
	return def.ToSQL()
}

// addPrimaryKey adds a disabled primary key constraint named <name>_pk
func (m *Manager) addPrimaryKey(ctx context.Context, objectType, name string, columns []string) error {
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = m.provider.QuoteColumnName(column)
	}

	_, baseName := utils.SplitQualifiedName(name)
	stmt := fmt.Sprintf("ALTER %s %s ADD CONSTRAINT %s PRIMARY KEY(%s) DISABLE",
		objectType,
		m.provider.QuoteTableName(name),
		m.provider.QuoteColumnName(baseName+"_pk"),
		strings.Join(quoted, ", "))

	if err := m.exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add primary key to %s: %w", name, err)
	}
	return nil
}

func (m *Manager) createRefreshJob(ctx context.Context, name, schedule string) error {
	job := &types.RefreshJob{
		ViewName:       name,
		Schema:         m.schema,
		RepeatInterval: schedule,
		NotifyTarget:   m.notifyTarget,
		NotifySender:   m.notifySender,
	}

	stmt, err := m.provider.GenerateCreateRefreshJob(job)
	if errors.IsUnsupported(err) {
		m.skip("create refresh job", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to generate refresh job for %s: %w", name, err)
	}

	if err := m.exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create refresh job for %s: %w", name, err)
	}
	return nil
}

// dropBeforeCreate is the force option's precondition: drop a view that may
// not exist. Its outcome never affects the create that follows.
func (m *Manager) dropBeforeCreate(ctx context.Context, name string) {
	stmt := m.dropViewSQL(name, types.DropDefault)
	m.logStatement(stmt)
	if err := m.run(ctx, stmt, ModeBestEffort); err != nil {
		m.logger.Debug("Ignoring failed drop before create",
			zap.String("view", name),
			zap.Error(err))
	}
}

func (m *Manager) dropViewSQL(name string, behavior types.DropBehavior) string {
	stmt := "DROP VIEW " + m.provider.QuoteTableName(name)
	if behavior != types.DropDefault {
		stmt += " " + string(behavior)
	}
	return stmt
}

func (m *Manager) exec(ctx context.Context, stmt string) error {
	m.logStatement(stmt)
	return m.run(ctx, stmt, ModeRequired)
}

func (m *Manager) run(ctx context.Context, stmt string, mode StatementMode) error {
	if executor, ok := m.db.(ModeExecutor); ok {
		return executor.ExecMode(ctx, stmt, mode)
	}
	_, err := m.db.ExecContext(ctx, stmt)
	return err
}

func (m *Manager) record(kind types.CommandKind, args ...any) {
	if m.recorder != nil {
		m.recorder.Record(kind, args...)
	}
}

func (m *Manager) skip(operation, name string) {
	m.logger.Debug("Dialect does not support operation, skipping",
		zap.String("operation", operation),
		zap.String("name", name))
}

func (m *Manager) logStatement(stmt string) {
	m.logger.Debug("Executing statement", zap.String("sql", summarize(stmt)))
}

// summarize flattens and truncates a statement for logging
func summarize(stmt string) string {
	flat := strings.Join(strings.Fields(stmt), " ")
	if len(flat) > MaxStatementLogLength {
		return flat[:MaxStatementLogLength] + "..."
	}
	return flat
}
