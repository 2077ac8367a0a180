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
	"reflect"

	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/types"
)

// ChangeType classifies a change between two sets of definitions
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Change is one added, removed or modified definition. Old is nil for
// additions and New is nil for removals.
type Change[T any] struct {
	Type ChangeType
	Name string
	Old  *T
	New  *T
}

// Result holds the changes per kind of definition. Removals follow the
// order of the old definitions, additions and modifications the order of the
// new ones.
type Result struct {
	Views             []Change[types.View]
	MaterializedViews []Change[types.MaterializedView]
	MappingViews      []Change[types.MappingView]
	RefreshJobs       []Change[types.RefreshJobDef]
}

// HasChanges reports whether anything changed
func (r *Result) HasChanges() bool {
	return r.Count() > 0
}

// Count returns the total number of changes
func (r *Result) Count() int {
	return len(r.Views) + len(r.MaterializedViews) + len(r.MappingViews) + len(r.RefreshJobs)
}

type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Compare computes the changes from old to new. A nil old compares against
// nothing, so every definition is added.
func (e *Engine) Compare(old, new *types.Definitions) *Result {
	if old == nil {
		old = &types.Definitions{}
	}
	if new == nil {
		new = &types.Definitions{}
	}

	result := &Result{
		Views:             compare(old.Views, new.Views, func(v types.View) string { return v.Name }),
		MaterializedViews: compare(old.MaterializedViews, new.MaterializedViews, func(v types.MaterializedView) string { return v.Name }),
		MappingViews:      compare(old.MappingViews, new.MappingViews, func(v types.MappingView) string { return v.Name }),
		RefreshJobs:       compare(old.RefreshJobs, new.RefreshJobs, func(j types.RefreshJobDef) string { return j.View }),
	}

	e.logger.Debug("Compared view definitions",
		zap.Int("views", len(result.Views)),
		zap.Int("materialized_views", len(result.MaterializedViews)),
		zap.Int("mapping_views", len(result.MappingViews)),
		zap.Int("refresh_jobs", len(result.RefreshJobs)))

	return result
}

func compare[T any](old, new []T, key func(T) string) []Change[T] {
	var changes []Change[T]

	newByName := make(map[string]int, len(new))
	for i, item := range new {
		newByName[key(item)] = i
	}
	oldByName := make(map[string]int, len(old))
	for i, item := range old {
		oldByName[key(item)] = i
	}

	for i := range old {
		if _, exists := newByName[key(old[i])]; !exists {
			changes = append(changes, Change[T]{Type: ChangeRemoved, Name: key(old[i]), Old: &old[i]})
		}
	}

	for i := range new {
		j, exists := oldByName[key(new[i])]
		switch {
		case !exists:
			changes = append(changes, Change[T]{Type: ChangeAdded, Name: key(new[i]), New: &new[i]})
		case !reflect.DeepEqual(normalize(old[j]), normalize(new[i])):
			changes = append(changes, Change[T]{Type: ChangeModified, Name: key(new[i]), Old: &old[j], New: &new[i]})
		}
	}

	return changes
}

// normalize makes nil and empty slices compare equal
func normalize[T any](item T) T {
	value := reflect.ValueOf(&item).Elem()
	if value.Kind() != reflect.Struct {
		return item
	}
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if field.Kind() == reflect.Slice && field.Len() == 0 && field.CanSet() {
			field.Set(reflect.Zero(field.Type()))
		}
	}
	return item
}
