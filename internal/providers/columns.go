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
package providers

import (
	"context"
	"fmt"
)

// DatabaseColumns reads column names from the live database catalog
type DatabaseColumns struct {
	Provider Provider
	DB       Queryer
}

// NewDatabaseColumns creates a column source backed by the database catalog
func NewDatabaseColumns(provider Provider, db Queryer) *DatabaseColumns {
	return &DatabaseColumns{Provider: provider, DB: db}
}

// Columns returns the column names of a table or view in ordinal order
func (c *DatabaseColumns) Columns(ctx context.Context, name string) ([]string, error) {
	columns, err := c.Provider.GetColumns(ctx, c.DB, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table or view %s not found or has no columns", name)
	}
	return columns, nil
}
