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
package migration

import (
	"context"
	"fmt"
	"testing"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/types"
)

type fakeReverter struct {
	calls []string
	fail  error
}

func (f *fakeReverter) DropView(ctx context.Context, name string, opts types.DropOptions) error {
	f.calls = append(f.calls, "drop_view:"+name)
	return f.fail
}

func (f *fakeReverter) DropMaterializedView(ctx context.Context, name string) error {
	f.calls = append(f.calls, "drop_materialized_view:"+name)
	return f.fail
}

func (f *fakeReverter) DropMvRefreshJob(ctx context.Context, name string) error {
	f.calls = append(f.calls, "drop_mv_refresh_job:"+name)
	return f.fail
}

func TestRecorder_InverseCreateView(t *testing.T) {
	recorder := NewRecorder()
	recorder.Record(types.CommandCreateView, "v1", "SELECT * FROM t", types.ViewOptions{})

	inverse, err := recorder.InverseAll()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(inverse) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(inverse))
	}
	if inverse[0].Kind != types.CommandDropView {
		t.Errorf("Expected drop_view, got %s", inverse[0].Kind)
	}
	if len(inverse[0].Args) != 1 || inverse[0].Args[0] != "v1" {
		t.Errorf("Expected only the subject name, got %v", inverse[0].Args)
	}
}

func TestRecorder_InverseMaterializedViewWithJob(t *testing.T) {
	recorder := NewRecorder()
	recorder.Record(types.CommandCreateMaterializedView, "mv1", "SELECT * FROM t", types.ViewOptions{})
	recorder.Record(types.CommandCreateMvRefreshJob, "mv1", "FREQ=DAILY")

	inverse, err := recorder.InverseAll()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []Command{
		{Kind: types.CommandDropMvRefreshJob, Args: []any{"mv1"}},
		{Kind: types.CommandDropMaterializedView, Args: []any{"mv1"}},
	}
	if len(inverse) != len(expected) {
		t.Fatalf("Expected %d commands, got %v", len(expected), inverse)
	}
	for i, command := range expected {
		if inverse[i].Kind != command.Kind || inverse[i].Args[0] != command.Args[0] {
			t.Errorf("Command %d: expected %s, got %s", i, command, inverse[i])
		}
	}
}

func TestInvert_NotInvertible(t *testing.T) {
	tests := []types.CommandKind{
		types.CommandDropView,
		types.CommandDropMaterializedView,
		types.CommandDropMvRefreshJob,
		types.CommandKind("rename_view"),
	}

	for _, kind := range tests {
		_, err := Invert(Command{Kind: kind, Args: []any{"v"}})
		if !errors.IsNotInvertibleError(err) {
			t.Errorf("Invert(%s): expected NotInvertibleError, got %v", kind, err)
		}
	}
}

func TestRecorder_InverseAllFailsLoudly(t *testing.T) {
	recorder := NewRecorder()
	recorder.Record(types.CommandCreateView, "v1")
	recorder.Record(types.CommandKind("rename_view"), "v1", "v2")

	inverse, err := recorder.InverseAll()
	if !errors.IsNotInvertibleError(err) {
		t.Fatalf("Expected NotInvertibleError, got %v", err)
	}
	if inverse != nil {
		t.Errorf("Expected no partial result, got %v", inverse)
	}
}

func TestInvert_MissingSubject(t *testing.T) {
	_, err := Invert(Command{Kind: types.CommandCreateView})
	if !errors.IsMigrationError(err) {
		t.Errorf("Expected MigrationError, got %v", err)
	}

	_, err = Invert(Command{Kind: types.CommandCreateView, Args: []any{42}})
	if !errors.IsMigrationError(err) {
		t.Errorf("Expected MigrationError for non-string subject, got %v", err)
	}
}

func TestRecorder_ArgsAreCopied(t *testing.T) {
	recorder := NewRecorder()
	args := []any{"v1", "SELECT 1"}
	recorder.Record(types.CommandCreateView, args...)
	args[0] = "changed"

	if recorder.Commands()[0].Args[0] != "v1" {
		t.Error("Expected recorded arguments to be copied")
	}

	recorder.Reset()
	if recorder.Len() != 0 {
		t.Errorf("Expected empty recorder after Reset, got %d", recorder.Len())
	}
}

func TestRecorder_Revert(t *testing.T) {
	recorder := NewRecorder()
	recorder.Record(types.CommandCreateView, "v1")
	recorder.Record(types.CommandCreateMaterializedView, "mv1")
	recorder.Record(types.CommandCreateMvRefreshJob, "mv1", "FREQ=HOURLY")

	reverter := &fakeReverter{}
	if err := recorder.Revert(context.Background(), reverter); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{
		"drop_mv_refresh_job:mv1",
		"drop_materialized_view:mv1",
		"drop_view:v1",
	}
	if len(reverter.calls) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, reverter.calls)
	}
	for i, call := range expected {
		if reverter.calls[i] != call {
			t.Errorf("Call %d: expected %s, got %s", i, call, reverter.calls[i])
		}
	}
}

func TestApply_StopsOnError(t *testing.T) {
	reverter := &fakeReverter{fail: fmt.Errorf("ORA-00942: table or view does not exist")}
	commands := []Command{
		{Kind: types.CommandDropView, Args: []any{"a"}},
		{Kind: types.CommandDropView, Args: []any{"b"}},
	}

	if err := Apply(context.Background(), reverter, commands); err == nil {
		t.Fatal("Expected error")
	}
	if len(reverter.calls) != 1 {
		t.Errorf("Expected Apply to stop after the first failure, got %v", reverter.calls)
	}
}
