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
	"fmt"
	"strings"
)

// StaticColumns is a ColumnSource backed by known column lists, keyed by
// lowercase table or view name. It serves mapping views when no database
// connection is available.
type StaticColumns map[string][]string

// Columns returns the columns registered for name
func (s StaticColumns) Columns(ctx context.Context, name string) ([]string, error) {
	columns, ok := s[strings.ToLower(name)]
	if !ok || len(columns) == 0 {
		return nil, fmt.Errorf("no columns known for %s", name)
	}
	return append([]string(nil), columns...), nil
}

// ColumnSources tries each source in order and returns the first answer
type ColumnSources []ColumnSource

// Columns returns the columns from the first source that knows name
func (s ColumnSources) Columns(ctx context.Context, name string) ([]string, error) {
	var lastErr error
	for _, source := range s {
		columns, err := source.Columns(ctx, name)
		if err == nil {
			return columns, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no columns known for %s", name)
	}
	return nil, lastErr
}
