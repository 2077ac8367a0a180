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
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(tempDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Type != "postgresql" {
		t.Errorf("Expected default database type postgresql, got %s", cfg.Database.Type)
	}
	if cfg.Views.DefinitionsFile != "views.yaml" {
		t.Errorf("Expected default definitions file views.yaml, got %s", cfg.Views.DefinitionsFile)
	}
	if cfg.SnapshotPath() != filepath.Join("migrations", ".views_snapshot.yaml") {
		t.Errorf("Unexpected snapshot path %s", cfg.SnapshotPath())
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "migrations", "makeviews.config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Type = "oracle"
	cfg.Database.DefaultSchema = "app"
	cfg.Views.NotifyTarget = "dba@example.com"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Database.Type != "oracle" {
		t.Errorf("Expected database type oracle, got %s", loaded.Database.Type)
	}
	if loaded.Database.DefaultSchema != "app" {
		t.Errorf("Expected default schema app, got %s", loaded.Database.DefaultSchema)
	}
	if loaded.Views.NotifyTarget != "dba@example.com" {
		t.Errorf("Expected notify target to round trip, got %q", loaded.Views.NotifyTarget)
	}
	if !loaded.Migration.IncludeDownSQL {
		t.Error("Expected include_down_sql to stay enabled")
	}
}

func TestLoad_Environment(t *testing.T) {
	tempDir := t.TempDir()
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(tempDir)

	t.Setenv("MAKEVIEWS_DATABASE_TYPE", "mysql")
	t.Setenv("MAKEVIEWS_VIEWS_NOTIFY_TARGET", "ops@example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Type != "mysql" {
		t.Errorf("Expected database type from environment, got %s", cfg.Database.Type)
	}
	if cfg.Views.NotifyTarget != "ops@example.com" {
		t.Errorf("Expected notify target from environment, got %q", cfg.Views.NotifyTarget)
	}
}
