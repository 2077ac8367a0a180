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
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/ocomsoft/makeviews/internal/types"
)

const (
	DefaultMigrationsDir = "migrations"
	SnapshotFilename     = ".views_snapshot.yaml"
)

// Manager stores the definitions the last generated migration was built from
type Manager struct {
	migrationsDir string
	snapshotFile  string
	logger        *zap.Logger
}

func New(migrationsDir, snapshotFile string, logger *zap.Logger) *Manager {
	if migrationsDir == "" {
		migrationsDir = DefaultMigrationsDir
	}
	if snapshotFile == "" {
		snapshotFile = SnapshotFilename
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		migrationsDir: migrationsDir,
		snapshotFile:  snapshotFile,
		logger:        logger,
	}
}

func (m *Manager) EnsureMigrationsDir() error {
	if _, err := os.Stat(m.migrationsDir); os.IsNotExist(err) {
		m.logger.Debug("Creating migrations directory", zap.String("path", m.migrationsDir))
		if err := os.MkdirAll(m.migrationsDir, 0755); err != nil {
			return fmt.Errorf("failed to create migrations directory: %w", err)
		}
	}
	return nil
}

func (m *Manager) GetSnapshotPath() string {
	return filepath.Join(m.migrationsDir, m.snapshotFile)
}

func (m *Manager) GetMigrationsDir() string {
	return m.migrationsDir
}

// LoadSnapshot returns the stored definitions, or nil before the first migration
func (m *Manager) LoadSnapshot() (*types.Definitions, error) {
	path := m.GetSnapshotPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Debug("No previous views snapshot found - this is the first migration")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read views snapshot: %w", err)
	}

	var defs types.Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse views snapshot %s: %w", path, err)
	}

	m.logger.Debug("Loaded views snapshot", zap.String("path", path))
	return &defs, nil
}

// SaveSnapshot replaces the stored definitions
func (m *Manager) SaveSnapshot(defs *types.Definitions) error {
	if err := m.EnsureMigrationsDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to marshal views snapshot: %w", err)
	}

	path := m.GetSnapshotPath()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write views snapshot: %w", err)
	}

	m.logger.Debug("Saved views snapshot", zap.String("path", path))
	return nil
}
