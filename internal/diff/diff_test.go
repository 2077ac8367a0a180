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
package diff

import (
	"testing"

	"github.com/ocomsoft/makeviews/internal/types"
)

func TestEngine_Compare_Initial(t *testing.T) {
	current := &types.Definitions{
		Views:             []types.View{{Name: "a", Query: "SELECT 1"}},
		MaterializedViews: []types.MaterializedView{{Name: "mv", Query: "SELECT 2"}},
	}

	result := New(nil).Compare(nil, current)

	if result.Count() != 2 {
		t.Fatalf("Expected 2 changes, got %d", result.Count())
	}
	if result.Views[0].Type != ChangeAdded || result.Views[0].Old != nil {
		t.Errorf("Expected added view, got %+v", result.Views[0])
	}
	if result.MaterializedViews[0].New.Query != "SELECT 2" {
		t.Errorf("Unexpected materialized view change %+v", result.MaterializedViews[0])
	}
}

func TestEngine_Compare(t *testing.T) {
	old := &types.Definitions{
		Views: []types.View{
			{Name: "kept", Query: "SELECT 1", Columns: []string{}},
			{Name: "changed", Query: "SELECT 2"},
			{Name: "removed", Query: "SELECT 3"},
		},
		RefreshJobs: []types.RefreshJobDef{{View: "mv", Schedule: "FREQ=DAILY"}},
	}
	current := &types.Definitions{
		Views: []types.View{
			{Name: "added", Query: "SELECT 4"},
			{Name: "changed", Query: "SELECT 2 FROM dual"},
			{Name: "kept", Query: "SELECT 1"},
		},
		RefreshJobs: []types.RefreshJobDef{{View: "mv", Schedule: "FREQ=HOURLY"}},
	}

	result := New(nil).Compare(old, current)

	expected := []struct {
		changeType ChangeType
		name       string
	}{
		{ChangeRemoved, "removed"},
		{ChangeAdded, "added"},
		{ChangeModified, "changed"},
	}

	if len(result.Views) != len(expected) {
		t.Fatalf("Expected %d view changes, got %+v", len(expected), result.Views)
	}
	for i, want := range expected {
		if result.Views[i].Type != want.changeType || result.Views[i].Name != want.name {
			t.Errorf("Change %d: expected %s %s, got %s %s", i, want.changeType, want.name, result.Views[i].Type, result.Views[i].Name)
		}
	}

	modified := result.Views[2]
	if modified.Old.Query != "SELECT 2" || modified.New.Query != "SELECT 2 FROM dual" {
		t.Errorf("Expected old and new definitions, got %+v", modified)
	}

	if len(result.RefreshJobs) != 1 || result.RefreshJobs[0].Type != ChangeModified {
		t.Errorf("Expected modified refresh job, got %+v", result.RefreshJobs)
	}
}

func TestEngine_Compare_NoChanges(t *testing.T) {
	defs := &types.Definitions{
		MappingViews: []types.MappingView{
			{Name: "people", Source: "users", Columns: []types.ColumnMapping{{From: "id", To: "person_id"}}},
		},
	}

	result := New(nil).Compare(defs, defs)
	if result.HasChanges() {
		t.Errorf("Expected no changes, got %+v", result)
	}
}
