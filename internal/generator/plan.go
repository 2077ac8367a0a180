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

	"github.com/ocomsoft/makeviews/internal/diff"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/views"
)

// plan orders the operations of one migration. Drops run before creates and
// in reverse dependency order; restore re-creates what the up step dropped.
type plan struct {
	caps types.Capabilities

	dropViews    []types.View
	replaceViews []diff.Change[types.View]
	createViews  []types.View

	dropMVs   []types.MaterializedView
	createMVs []types.MaterializedView

	dropMappings   []types.MappingView
	createMappings []types.MappingView

	dropJobs    []types.RefreshJobDef
	createJobs  []types.RefreshJobDef
	restoreJobs []types.RefreshJobDef
}

func newPlan(changes *diff.Result, current *types.Definitions, caps types.Capabilities) *plan {
	p := &plan{caps: caps}

	for _, c := range changes.Views {
		switch c.Type {
		case diff.ChangeRemoved:
			p.dropViews = append(p.dropViews, *c.Old)
		case diff.ChangeAdded:
			p.createViews = append(p.createViews, *c.New)
		case diff.ChangeModified:
			if c.New.Replace && caps.ReplaceView {
				p.replaceViews = append(p.replaceViews, c)
				continue
			}
			p.dropViews = append(p.dropViews, *c.Old)
			p.createViews = append(p.createViews, *c.New)
		}
	}

	droppedMVs := make(map[string]bool)
	for _, c := range changes.MaterializedViews {
		if c.Old != nil {
			p.dropMVs = append(p.dropMVs, *c.Old)
			droppedMVs[c.Name] = true
		}
		if c.New != nil {
			p.createMVs = append(p.createMVs, *c.New)
		}
	}

	for _, c := range changes.MappingViews {
		if c.Old != nil {
			p.dropMappings = append(p.dropMappings, *c.Old)
		}
		if c.New != nil {
			p.createMappings = append(p.createMappings, *c.New)
		}
	}

	changedJobs := make(map[string]bool)
	for _, c := range changes.RefreshJobs {
		changedJobs[c.Name] = true
		if c.Old != nil {
			// Dropping the materialized view drops its job
			if !droppedMVs[c.Name] {
				p.dropJobs = append(p.dropJobs, *c.Old)
			}
			p.restoreJobs = append(p.restoreJobs, *c.Old)
		}
		if c.New != nil {
			p.createJobs = append(p.createJobs, *c.New)
		}
	}

	// Unchanged jobs lose their scheduler entry when the view is recreated
	if current != nil {
		for _, job := range current.RefreshJobs {
			if droppedMVs[job.View] && !changedJobs[job.View] {
				p.createJobs = append(p.createJobs, job)
				p.restoreJobs = append(p.restoreJobs, job)
			}
		}
	}

	return p
}

func (p *plan) drop(ctx context.Context, m *views.Manager) error {
	for _, job := range p.dropJobs {
		if err := m.DropMvRefreshJob(ctx, job.View); err != nil {
			return err
		}
	}
	for i := len(p.dropMappings) - 1; i >= 0; i-- {
		if err := m.DropView(ctx, p.dropMappings[i].Name, types.DropOptions{}); err != nil {
			return err
		}
	}
	for i := len(p.dropMVs) - 1; i >= 0; i-- {
		if err := m.DropMaterializedView(ctx, p.dropMVs[i].Name); err != nil {
			return err
		}
	}
	for i := len(p.dropViews) - 1; i >= 0; i-- {
		if err := m.DropView(ctx, p.dropViews[i].Name, types.DropOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func (p *plan) create(ctx context.Context, m *views.Manager) error {
	for _, c := range p.replaceViews {
		if err := replaceView(ctx, m, *c.New); err != nil {
			return err
		}
	}
	return createAll(ctx, m, p.createViews, p.createMVs, p.createMappings, p.createJobs)
}

// restore re-creates the definitions the up step dropped or replaced
func (p *plan) restore(ctx context.Context, m *views.Manager) error {
	for _, c := range p.replaceViews {
		if err := replaceView(ctx, m, *c.Old); err != nil {
			return err
		}
	}
	return createAll(ctx, m, p.dropViews, p.dropMVs, p.dropMappings, p.restoreJobs)
}

func createAll(ctx context.Context, m *views.Manager, vs []types.View, mvs []types.MaterializedView, mappings []types.MappingView, jobs []types.RefreshJobDef) error {
	for _, v := range vs {
		if err := m.CreateView(ctx, v.Name, v.Query, v.Options(), columns(v.Columns)); err != nil {
			return err
		}
	}
	for _, mv := range mvs {
		if err := m.CreateMaterializedView(ctx, mv.Name, mv.Query, mv.Options(), columns(mv.Columns)); err != nil {
			return err
		}
	}
	for _, mapping := range mappings {
		if err := m.CreateMappingView(ctx, mapping.Source, mapping.Name, types.ViewOptions{Force: mapping.Force}, mapColumns(mapping.Columns)); err != nil {
			return err
		}
	}
	for _, job := range jobs {
		if err := m.CreateMvRefreshJob(ctx, job.View, job.Schedule); err != nil {
			return err
		}
	}
	return nil
}

func replaceView(ctx context.Context, m *views.Manager, v types.View) error {
	return m.CreateOrReplaceView(ctx, v.Name, v.Query, v.Options(), columns(v.Columns))
}

func columns(names []string) func(*views.ViewDefinition) {
	if len(names) == 0 {
		return nil
	}
	return func(def *views.ViewDefinition) {
		for _, name := range names {
			def.AddColumn(name)
		}
	}
}

func mapColumns(mappings []types.ColumnMapping) func(*views.MappingDefinition) error {
	return func(def *views.MappingDefinition) error {
		for _, mapping := range mappings {
			if err := def.Map(mapping.From, mapping.To); err != nil {
				return err
			}
		}
		return nil
	}
}
