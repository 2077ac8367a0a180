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
	"database/sql/driver"
	"fmt"
	"strings"
	"testing"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/providers"
	"github.com/ocomsoft/makeviews/internal/providers/oracle"
	"github.com/ocomsoft/makeviews/internal/providers/postgresql"
	"github.com/ocomsoft/makeviews/internal/providers/sqlite"
	"github.com/ocomsoft/makeviews/internal/providers/sqlserver"
	"github.com/ocomsoft/makeviews/internal/types"
)

// fakeDB records executed statements and fails those matching failOn
type fakeDB struct {
	statements []string
	failOn     map[string]error
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.statements = append(f.statements, query)
	for prefix, err := range f.failOn {
		if strings.HasPrefix(query, prefix) {
			return nil, err
		}
	}
	return driver.RowsAffected(0), nil
}

// capsProvider overrides the capabilities of an existing dialect
type capsProvider struct {
	providers.Provider
	caps types.Capabilities
}

func (p capsProvider) Capabilities() types.Capabilities {
	return p.caps
}

type oraError struct {
	code int
}

func (e *oraError) Error() string { return fmt.Sprintf("ORA-%05d: simulated", e.code) }
func (e *oraError) Code() int     { return e.code }

type recorded struct {
	kind types.CommandKind
	args []any
}

type fakeRecorder struct {
	commands []recorded
}

func (r *fakeRecorder) Record(kind types.CommandKind, args ...any) {
	r.commands = append(r.commands, recorded{kind: kind, args: args})
}

func withColumns(def *ViewDefinition) {
	def.AddColumn("id")
	def.AddColumn("name")
}

func TestManager_CreateView(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, postgresql.New())

	err := manager.CreateView(context.Background(), "active_users", "SELECT id, name FROM users", types.ViewOptions{}, withColumns)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(db.statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d: %v", len(db.statements), db.statements)
	}

	expected := `CREATE VIEW "active_users" ("id", "name") AS SELECT id, name FROM users`
	if db.statements[0] != expected {
		t.Errorf("Expected %q, got %q", expected, db.statements[0])
	}
}

func TestManager_CreateView_NoColumns(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, postgresql.New())

	if err := manager.CreateView(context.Background(), "v", "SELECT 1", types.ViewOptions{}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := `CREATE VIEW "v" AS SELECT 1`
	if db.statements[0] != expected {
		t.Errorf("Expected %q, got %q", expected, db.statements[0])
	}
}

func TestManager_CreateView_CheckOption(t *testing.T) {
	tests := []struct {
		option   types.CheckOption
		expected string
	}{
		{types.CheckOptionNone, `CREATE VIEW "v" AS SELECT * FROM t`},
		{types.CheckOptionLocal, `CREATE VIEW "v" AS SELECT * FROM t WITH LOCAL CHECK OPTION`},
		{types.CheckOptionCascaded, `CREATE VIEW "v" AS SELECT * FROM t WITH CASCADED CHECK OPTION`},
	}

	for _, test := range tests {
		db := &fakeDB{}
		manager := New(db, postgresql.New())

		err := manager.CreateView(context.Background(), "v", "SELECT * FROM t", types.ViewOptions{CheckOption: test.option}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if db.statements[0] != test.expected {
			t.Errorf("CheckOption %q: expected %q, got %q", test.option, test.expected, db.statements[0])
		}
	}
}

func TestManager_CreateView_PrimaryKey(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, oracle.New())

	err := manager.CreateView(context.Background(), "v", "SELECT 1 AS id FROM dual", types.ViewOptions{PrimaryKey: []string{"id"}}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(db.statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %v", len(db.statements), db.statements)
	}

	if !strings.HasPrefix(db.statements[0], `CREATE VIEW "V"`) {
		t.Errorf("Expected CREATE VIEW first, got %q", db.statements[0])
	}

	expected := `ALTER VIEW "V" ADD CONSTRAINT "V_PK" PRIMARY KEY("ID") DISABLE`
	if db.statements[1] != expected {
		t.Errorf("Expected %q, got %q", expected, db.statements[1])
	}
}

func TestManager_CreateView_ForceIgnoresDropError(t *testing.T) {
	db := &fakeDB{failOn: map[string]error{
		"DROP VIEW": &oraError{code: 942},
	}}
	manager := New(db, oracle.New())

	err := manager.CreateView(context.Background(), "v", "SELECT 1 FROM dual", types.ViewOptions{Force: true}, nil)
	if err != nil {
		t.Fatalf("Expected drop failure to be ignored, got: %v", err)
	}

	if len(db.statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %v", len(db.statements), db.statements)
	}
	if db.statements[0] != `DROP VIEW "V"` {
		t.Errorf("Expected force drop first, got %q", db.statements[0])
	}
	if !strings.HasPrefix(db.statements[1], `CREATE VIEW "V"`) {
		t.Errorf("Expected create after drop, got %q", db.statements[1])
	}
}

func TestManager_CreateView_ExecErrorPropagates(t *testing.T) {
	dbErr := fmt.Errorf("syntax error")
	db := &fakeDB{failOn: map[string]error{"CREATE VIEW": dbErr}}
	recorder := &fakeRecorder{}
	manager := New(db, postgresql.New(), WithRecorder(recorder))

	err := manager.CreateView(context.Background(), "v", "SELEC 1", types.ViewOptions{}, nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("Expected wrapped database error, got: %v", err)
	}
	if len(recorder.commands) != 0 {
		t.Errorf("Expected failed create not to be recorded, got %v", recorder.commands)
	}
}

func TestManager_NoViewSupport(t *testing.T) {
	db := &fakeDB{}
	recorder := &fakeRecorder{}
	manager := New(db, sqlite.New(),
		WithRecorder(recorder),
		WithColumnSource(StaticColumns{"users": {"id", "name"}}))
	ctx := context.Background()

	if err := manager.CreateView(ctx, "v", "SELECT 1", types.ViewOptions{Force: true}, withColumns); err != nil {
		t.Errorf("CreateView: unexpected error: %v", err)
	}
	if err := manager.DropView(ctx, "v", types.DropOptions{}); err != nil {
		t.Errorf("DropView: unexpected error: %v", err)
	}
	err := manager.CreateMappingView(ctx, "users", "people", types.ViewOptions{}, func(m *MappingDefinition) error {
		return m.Map("id", "person_id")
	})
	if err != nil {
		t.Errorf("CreateMappingView: unexpected error: %v", err)
	}
	if err := manager.CreateOrReplaceView(ctx, "v", "SELECT 1", types.ViewOptions{}, nil); err != nil {
		t.Errorf("CreateOrReplaceView: unexpected error: %v", err)
	}

	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
	if len(recorder.commands) != 0 {
		t.Errorf("Expected nothing recorded, got %v", recorder.commands)
	}
}

func TestManager_NoViewColumnsDefinition(t *testing.T) {
	db := &fakeDB{}
	provider := capsProvider{
		Provider: postgresql.New(),
		caps:     types.Capabilities{Views: true},
	}
	manager := New(db, provider, WithColumnSource(StaticColumns{"users": {"id", "legacy_name"}}))
	ctx := context.Background()

	if err := manager.CreateView(ctx, "v", "SELECT id, name FROM users", types.ViewOptions{}, withColumns); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	err := manager.CreateMappingView(ctx, "users", "people", types.ViewOptions{}, func(m *MappingDefinition) error {
		return m.Map("legacy_name", "name")
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{
		`CREATE VIEW "v" AS SELECT id, name FROM users`,
		`CREATE VIEW "people" AS SELECT "legacy_name" AS "name" FROM "users"`,
	}
	if len(db.statements) != len(expected) {
		t.Fatalf("Expected %d statements, got %v", len(expected), db.statements)
	}
	for i, stmt := range expected {
		if db.statements[i] != stmt {
			t.Errorf("Statement %d: expected %q, got %q", i, stmt, db.statements[i])
		}
	}
}

func TestManager_CreateOrReplaceView(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, postgresql.New())

	err := manager.CreateOrReplaceView(context.Background(), "v", "SELECT 2", types.ViewOptions{Force: true}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(db.statements) != 1 {
		t.Fatalf("Expected a single statement without drop, got %v", db.statements)
	}
	expected := `CREATE OR REPLACE VIEW "v" AS SELECT 2`
	if db.statements[0] != expected {
		t.Errorf("Expected %q, got %q", expected, db.statements[0])
	}
}

func TestManager_CreateOrReplaceView_NotSupported(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, sqlserver.New())

	if !manager.Capabilities().Views || manager.Capabilities().ReplaceView {
		t.Fatalf("Unexpected capabilities: %+v", manager.Capabilities())
	}

	if err := manager.CreateOrReplaceView(context.Background(), "v", "SELECT 2", types.ViewOptions{}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
}

func TestManager_CreateMappingView(t *testing.T) {
	db := &fakeDB{}
	recorder := &fakeRecorder{}
	manager := New(db, postgresql.New(),
		WithRecorder(recorder),
		WithColumnSource(StaticColumns{"legacy_users": {"id", "legacy_name", "created"}}))

	err := manager.CreateMappingView(context.Background(), "legacy_users", "users", types.ViewOptions{}, func(m *MappingDefinition) error {
		if err := m.Map("legacy_name", "name"); err != nil {
			return err
		}
		return m.Map("id", "user_id")
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := `CREATE VIEW "users" ("name", "user_id") AS SELECT "legacy_name", "id" FROM "legacy_users"`
	if len(db.statements) != 1 || db.statements[0] != expected {
		t.Errorf("Expected %q, got %v", expected, db.statements)
	}

	if len(recorder.commands) != 1 || recorder.commands[0].kind != types.CommandCreateView {
		t.Fatalf("Expected one create_view record, got %v", recorder.commands)
	}
	if recorder.commands[0].args[0] != "users" {
		t.Errorf("Expected subject users, got %v", recorder.commands[0].args[0])
	}
}

func TestManager_CreateMappingView_UnknownColumn(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, postgresql.New(),
		WithColumnSource(StaticColumns{"t": {"id", "legacy_name"}}))

	err := manager.CreateMappingView(context.Background(), "t", "v", types.ViewOptions{}, func(m *MappingDefinition) error {
		return m.Map("not_a_col", "x")
	})
	if !errors.IsUnknownColumnError(err) {
		t.Fatalf("Expected UnknownColumnError, got %v", err)
	}
	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
}

func TestManager_CreateMappingView_Empty(t *testing.T) {
	manager := New(&fakeDB{}, postgresql.New(), WithColumnSource(StaticColumns{"t": {"id"}}))

	err := manager.CreateMappingView(context.Background(), "t", "v", types.ViewOptions{}, func(m *MappingDefinition) error {
		return nil
	})
	if !errors.IsValidationError(err) {
		t.Errorf("Expected ValidationError for a mapping view without columns, got %v", err)
	}
}

func TestManager_CreateMappingView_NilCallback(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, postgresql.New(), WithColumnSource(StaticColumns{"t": {"id"}}))

	err := manager.CreateMappingView(context.Background(), "t", "v", types.ViewOptions{}, nil)
	if !errors.IsValidationError(err) {
		t.Errorf("Expected ValidationError without a mapping callback, got %v", err)
	}
	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
}

func TestManager_DropView(t *testing.T) {
	tests := []struct {
		behavior types.DropBehavior
		expected string
	}{
		{types.DropDefault, `DROP VIEW "v"`},
		{types.DropCascade, `DROP VIEW "v" CASCADE`},
		{types.DropRestrict, `DROP VIEW "v" RESTRICT`},
	}

	for _, test := range tests {
		db := &fakeDB{}
		manager := New(db, postgresql.New())

		if err := manager.DropView(context.Background(), "v", types.DropOptions{Behavior: test.behavior}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if db.statements[0] != test.expected {
			t.Errorf("Expected %q, got %q", test.expected, db.statements[0])
		}
	}
}

func TestManager_CreateMaterializedView(t *testing.T) {
	db := &fakeDB{}
	recorder := &fakeRecorder{}
	manager := New(db, oracle.New(),
		WithRecorder(recorder),
		WithSchema("app"),
		WithNotify("dba@example.com", ""))

	opts := types.ViewOptions{
		PrimaryKey:      []string{"id"},
		RefreshSchedule: "FREQ=DAILY;BYHOUR=2",
	}
	err := manager.CreateMaterializedView(context.Background(), "sales_mv", "SELECT id, total FROM sales", opts, withColumns)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(db.statements) != 3 {
		t.Fatalf("Expected 3 statements, got %d: %v", len(db.statements), db.statements)
	}

	create := db.statements[0]
	if !strings.HasPrefix(create, `CREATE MATERIALIZED VIEW "SALES_MV" ("ID", "NAME")`) {
		t.Errorf("Unexpected create statement: %q", create)
	}
	if !strings.Contains(create, "PCTFREE 0 PCTUSED 0 COMPRESS FOR OLTP NOLOGGING REFRESH COMPLETE ON DEMAND") {
		t.Errorf("Expected fixed storage clauses in %q", create)
	}

	expectedPK := `ALTER MATERIALIZED VIEW "SALES_MV" ADD CONSTRAINT "SALES_MV_PK" PRIMARY KEY("ID") DISABLE`
	if db.statements[1] != expectedPK {
		t.Errorf("Expected %q, got %q", expectedPK, db.statements[1])
	}

	job := db.statements[2]
	if !strings.Contains(job, "DBMS_SCHEDULER.CREATE_JOB") || !strings.Contains(job, "'APP.SALES_MV_RJ'") {
		t.Errorf("Expected scheduler job for APP.SALES_MV_RJ, got %q", job)
	}

	if len(recorder.commands) != 1 || recorder.commands[0].kind != types.CommandCreateMaterializedView {
		t.Errorf("Expected one create_materialized_view record, got %v", recorder.commands)
	}
}

func TestManager_MaterializedViewUnsupported(t *testing.T) {
	db := &fakeDB{}
	recorder := &fakeRecorder{}
	manager := New(db, postgresql.New(), WithRecorder(recorder))
	ctx := context.Background()

	if err := manager.CreateMaterializedView(ctx, "mv", "SELECT 1", types.ViewOptions{RefreshSchedule: "FREQ=DAILY"}, nil); err != nil {
		t.Errorf("CreateMaterializedView: unexpected error: %v", err)
	}
	if err := manager.CreateMvRefreshJob(ctx, "mv", "FREQ=DAILY"); err != nil {
		t.Errorf("CreateMvRefreshJob: unexpected error: %v", err)
	}
	if err := manager.DropMvRefreshJob(ctx, "mv"); err != nil {
		t.Errorf("DropMvRefreshJob: unexpected error: %v", err)
	}
	if err := manager.DropMaterializedView(ctx, "mv"); err != nil {
		t.Errorf("DropMaterializedView: unexpected error: %v", err)
	}

	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
	if len(recorder.commands) != 0 {
		t.Errorf("Expected nothing recorded, got %v", recorder.commands)
	}
}

func TestManager_CreateMvRefreshJob_RequiresNotifyTarget(t *testing.T) {
	db := &fakeDB{}
	manager := New(db, oracle.New())

	if err := manager.CreateMvRefreshJob(context.Background(), "mv", "FREQ=DAILY"); err == nil {
		t.Error("Expected error without a notification target")
	}
	if len(db.statements) != 0 {
		t.Errorf("Expected no statements, got %v", db.statements)
	}
}

func TestManager_DropMvRefreshJob_NotFound(t *testing.T) {
	db := &fakeDB{failOn: map[string]error{
		"BEGIN DBMS_SCHEDULER.DROP_JOB": fmt.Errorf("exec: %w", &oraError{code: 27475}),
	}}
	manager := New(db, oracle.New())

	if err := manager.DropMvRefreshJob(context.Background(), "mv"); err != nil {
		t.Errorf("Expected missing job to be treated as dropped, got: %v", err)
	}
}

func TestManager_DropMvRefreshJob_OtherError(t *testing.T) {
	db := &fakeDB{failOn: map[string]error{
		"BEGIN DBMS_SCHEDULER.DROP_JOB": &oraError{code: 27486},
	}}
	manager := New(db, oracle.New())

	if err := manager.DropMvRefreshJob(context.Background(), "mv"); err == nil {
		t.Error("Expected insufficient privileges error to propagate")
	}
}

func TestManager_DropMvRefreshJob_MessageIsNotEnough(t *testing.T) {
	db := &fakeDB{failOn: map[string]error{
		"BEGIN DBMS_SCHEDULER.DROP_JOB": fmt.Errorf("ORA-27475: unknown job"),
	}}
	manager := New(db, oracle.New())

	if err := manager.DropMvRefreshJob(context.Background(), "mv"); err == nil {
		t.Error("Expected error without a structured error code")
	}
}

func TestManager_DropMaterializedView(t *testing.T) {
	db := &fakeDB{failOn: map[string]error{
		"BEGIN DBMS_SCHEDULER.DROP_JOB": &oraError{code: 27475},
	}}
	manager := New(db, oracle.New())

	if err := manager.DropMaterializedView(context.Background(), "mv"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(db.statements) != 2 {
		t.Fatalf("Expected 2 statements, got %v", db.statements)
	}
	if !strings.Contains(db.statements[0], "DROP_JOB(job_name => 'MV_RJ')") {
		t.Errorf("Expected job drop first, got %q", db.statements[0])
	}
	if db.statements[1] != `DROP MATERIALIZED VIEW "MV"` {
		t.Errorf("Expected materialized view drop, got %q", db.statements[1])
	}
}

func TestManager_Script(t *testing.T) {
	script := NewScript()
	manager := New(script, oracle.New())
	ctx := context.Background()

	if err := manager.CreateView(ctx, "v", "SELECT 1 FROM dual", types.ViewOptions{Force: true}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := manager.DropMaterializedView(ctx, "mv"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	statements := script.Statements()
	expectedModes := []StatementMode{ModeBestEffort, ModeRequired, ModeIgnoreMissingJob, ModeRequired}
	if len(statements) != len(expectedModes) {
		t.Fatalf("Expected %d statements, got %v", len(expectedModes), statements)
	}
	for i, mode := range expectedModes {
		if statements[i].Mode != mode {
			t.Errorf("Statement %d (%s): expected mode %d, got %d", i, statements[i].SQL, mode, statements[i].Mode)
		}
	}
	if statements[0].Required() || !statements[1].Required() {
		t.Error("Required() does not match statement modes")
	}
}

func TestSummarize(t *testing.T) {
	stmt := "CREATE VIEW v\n  AS SELECT 1"
	if got := summarize(stmt); got != "CREATE VIEW v AS SELECT 1" {
		t.Errorf("summarize() = %q", got)
	}

	long := strings.Repeat("x", MaxStatementLogLength+10)
	if got := summarize(long); len(got) != MaxStatementLogLength+3 {
		t.Errorf("Expected truncated statement, got length %d", len(got))
	}
}
