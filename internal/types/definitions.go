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
package types

import "fmt"

// Definitions represents a views.yaml file
type Definitions struct {
	Database          Database           `yaml:"database"`
	Sources           []Source           `yaml:"sources,omitempty"`
	Views             []View             `yaml:"views,omitempty"`
	MaterializedViews []MaterializedView `yaml:"materialized_views,omitempty"`
	MappingViews      []MappingView      `yaml:"mapping_views,omitempty"`
	RefreshJobs       []RefreshJobDef    `yaml:"refresh_jobs,omitempty"`
}

// Database represents the definitions metadata
type Database struct {
	Name             string `yaml:"name"`
	Version          string `yaml:"version"`
	MigrationVersion string `yaml:"migration_version,omitempty"`
}

// Source declares the columns of an existing table or view so mapping views
// can be generated without a database connection
type Source struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// View represents a plain view definition
type View struct {
	Name        string      `yaml:"name"`
	Query       string      `yaml:"query"`
	Columns     []string    `yaml:"columns,omitempty"`
	PrimaryKey  []string    `yaml:"primary_key,omitempty"`
	CheckOption CheckOption `yaml:"check_option,omitempty"`
	Force       bool        `yaml:"force,omitempty"`
	Replace     bool        `yaml:"replace,omitempty"`
}

// MaterializedView represents a materialized view definition
type MaterializedView struct {
	Name            string   `yaml:"name"`
	Query           string   `yaml:"query"`
	Columns         []string `yaml:"columns,omitempty"`
	PrimaryKey      []string `yaml:"primary_key,omitempty"`
	RefreshSchedule string   `yaml:"refresh_schedule,omitempty"`
}

// MappingView exposes the columns of an existing table under new names
type MappingView struct {
	Name    string          `yaml:"name"`
	Source  string          `yaml:"source"`
	Columns []ColumnMapping `yaml:"columns"`
	Force   bool            `yaml:"force,omitempty"`
}

// ColumnMapping maps a source column to the name exposed by a mapping view
type ColumnMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// RefreshJobDef schedules a refresh job for an existing materialized view
type RefreshJobDef struct {
	View     string `yaml:"view"`
	Schedule string `yaml:"schedule"`
}

// Options converts the definition into creation options
func (v *View) Options() ViewOptions {
	return ViewOptions{
		Force:       v.Force,
		PrimaryKey:  v.PrimaryKey,
		CheckOption: v.CheckOption,
	}
}

// Options converts the definition into creation options
func (mv *MaterializedView) Options() ViewOptions {
	return ViewOptions{
		PrimaryKey:      mv.PrimaryKey,
		RefreshSchedule: mv.RefreshSchedule,
	}
}

// SourceColumns returns the declared sources as a lookup map
func (d *Definitions) SourceColumns() map[string][]string {
	columns := make(map[string][]string, len(d.Sources))
	for _, source := range d.Sources {
		columns[source.Name] = source.Columns
	}
	return columns
}

// IsEmpty reports whether the file defines nothing
func (d *Definitions) IsEmpty() bool {
	return len(d.Views) == 0 && len(d.MaterializedViews) == 0 &&
		len(d.MappingViews) == 0 && len(d.RefreshJobs) == 0
}

// Validate validates the definitions structure
func (d *Definitions) Validate() error {
	if d.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	// Views and mapping views share one namespace
	names := make(map[string]string)
	claim := func(name, kind string) error {
		if prev, exists := names[name]; exists {
			return fmt.Errorf("%s %s: name already used by %s", kind, name, prev)
		}
		names[name] = kind
		return nil
	}

	for i, source := range d.Sources {
		if source.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if len(source.Columns) == 0 {
			return fmt.Errorf("source %s: at least one column is required", source.Name)
		}
	}

	for i, view := range d.Views {
		if err := view.Validate(); err != nil {
			return fmt.Errorf("view %d: %w", i, err)
		}
		if err := claim(view.Name, "view"); err != nil {
			return err
		}
	}

	for i, mv := range d.MaterializedViews {
		if err := mv.Validate(); err != nil {
			return fmt.Errorf("materialized view %d: %w", i, err)
		}
		if err := claim(mv.Name, "materialized view"); err != nil {
			return err
		}
	}

	for i, mapping := range d.MappingViews {
		if err := mapping.Validate(); err != nil {
			return fmt.Errorf("mapping view %d: %w", i, err)
		}
		if err := claim(mapping.Name, "mapping view"); err != nil {
			return err
		}
	}

	jobs := make(map[string]bool)
	for i, job := range d.RefreshJobs {
		if job.View == "" {
			return fmt.Errorf("refresh job %d: view is required", i)
		}
		if job.Schedule == "" {
			return fmt.Errorf("refresh job %s: schedule is required", job.View)
		}
		if jobs[job.View] {
			return fmt.Errorf("refresh job %s: duplicate job for view", job.View)
		}
		jobs[job.View] = true
	}

	return nil
}

// Validate validates the view structure
func (v *View) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("view name is required")
	}
	if v.Query == "" {
		return fmt.Errorf("view %s: query is required", v.Name)
	}
	switch v.CheckOption {
	case CheckOptionNone, CheckOptionLocal, CheckOptionCascaded:
	default:
		return fmt.Errorf("view %s: invalid check option: %s", v.Name, v.CheckOption)
	}
	if v.Replace && v.Force {
		return fmt.Errorf("view %s: replace and force are mutually exclusive", v.Name)
	}
	return nil
}

// Validate validates the materialized view structure
func (mv *MaterializedView) Validate() error {
	if mv.Name == "" {
		return fmt.Errorf("materialized view name is required")
	}
	if mv.Query == "" {
		return fmt.Errorf("materialized view %s: query is required", mv.Name)
	}
	return nil
}

// Validate validates the mapping view structure
func (m *MappingView) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("mapping view name is required")
	}
	if m.Source == "" {
		return fmt.Errorf("mapping view %s: source is required", m.Name)
	}
	if len(m.Columns) == 0 {
		return fmt.Errorf("mapping view %s: at least one column mapping is required", m.Name)
	}
	for j, column := range m.Columns {
		if column.From == "" || column.To == "" {
			return fmt.Errorf("mapping view %s, column %d: from and to are required", m.Name, j)
		}
	}
	return nil
}
