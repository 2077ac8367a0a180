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
package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ocomsoft/makeviews/internal/types"
)

func TestManager_LoadSnapshot_Missing(t *testing.T) {
	manager := New(filepath.Join(t.TempDir(), "migrations"), "", nil)

	defs, err := manager.LoadSnapshot()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if defs != nil {
		t.Errorf("Expected no snapshot, got %+v", defs)
	}
}

func TestManager_SaveAndLoadSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	manager := New(dir, "", nil)

	defs := &types.Definitions{
		Database: types.Database{Name: "app", Version: "1.0.0"},
		Views: []types.View{
			{Name: "active_users", Query: "SELECT * FROM users", PrimaryKey: []string{"id"}, CheckOption: types.CheckOptionLocal},
		},
		MappingViews: []types.MappingView{
			{Name: "people", Source: "users", Columns: []types.ColumnMapping{{From: "id", To: "person_id"}}},
		},
	}

	if err := manager.SaveSnapshot(defs); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, SnapshotFilename)); err != nil {
		t.Fatalf("Expected snapshot file: %v", err)
	}

	loaded, err := manager.LoadSnapshot()
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}

	if len(loaded.Views) != 1 || loaded.Views[0].CheckOption != types.CheckOptionLocal {
		t.Errorf("Unexpected views: %+v", loaded.Views)
	}
	if len(loaded.MappingViews) != 1 || loaded.MappingViews[0].Columns[0].To != "person_id" {
		t.Errorf("Unexpected mapping views: %+v", loaded.MappingViews)
	}
}

func TestManager_LoadSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SnapshotFilename), []byte("views: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(dir, "", nil).LoadSnapshot(); err == nil {
		t.Error("Expected error for corrupt snapshot")
	}
}
