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
package definitions

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/types"
)

// Merger combines definitions collected from several modules
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a new definitions merger
func NewMerger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge merges definitions in order. Identical duplicates collapse into one
// entry; duplicates that differ are a validation error. The first file's
// database metadata is kept.
func (m *Merger) Merge(all []*types.Definitions) (*types.Definitions, error) {
	if len(all) == 0 {
		return nil, errors.NewValidationError("merger", "no definitions provided for merging")
	}
	if len(all) == 1 {
		return all[0], nil
	}

	merged := &types.Definitions{Database: all[0].Database}

	var err error
	for _, defs := range all {
		if merged.Sources, err = mergeInto(merged.Sources, defs.Sources, "source", func(s types.Source) string { return s.Name }); err != nil {
			return nil, err
		}
		if merged.Views, err = mergeInto(merged.Views, defs.Views, "view", func(v types.View) string { return v.Name }); err != nil {
			return nil, err
		}
		if merged.MaterializedViews, err = mergeInto(merged.MaterializedViews, defs.MaterializedViews, "materialized view", func(v types.MaterializedView) string { return v.Name }); err != nil {
			return nil, err
		}
		if merged.MappingViews, err = mergeInto(merged.MappingViews, defs.MappingViews, "mapping view", func(v types.MappingView) string { return v.Name }); err != nil {
			return nil, err
		}
		if merged.RefreshJobs, err = mergeInto(merged.RefreshJobs, defs.RefreshJobs, "refresh job", func(j types.RefreshJobDef) string { return j.View }); err != nil {
			return nil, err
		}
	}

	if err := merged.Validate(); err != nil {
		return nil, errors.NewValidationError("merger", err.Error())
	}

	m.logger.Debug("Merged view definitions",
		zap.Int("files", len(all)),
		zap.Int("views", len(merged.Views)),
		zap.Int("materialized_views", len(merged.MaterializedViews)),
		zap.Int("mapping_views", len(merged.MappingViews)))

	return merged, nil
}

func mergeInto[T any](existing, incoming []T, kind string, key func(T) string) ([]T, error) {
	for _, item := range incoming {
		found := false
		for _, current := range existing {
			if key(current) != key(item) {
				continue
			}
			if !reflect.DeepEqual(current, item) {
				return nil, errors.NewValidationError(kind, fmt.Sprintf("%s is defined differently in more than one module", key(item)))
			}
			found = true
			break
		}
		if !found {
			existing = append(existing, item)
		}
	}
	return existing, nil
}
