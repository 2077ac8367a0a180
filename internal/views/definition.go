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
	"slices"
	"strings"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/types"
)

// Quoter quotes column identifiers for the active dialect
type Quoter interface {
	QuoteColumnName(name string) string
}

// ViewDefinition accumulates the column list of a view. Columns are emitted
// in the order they were added.
type ViewDefinition struct {
	quoter      Quoter
	selectQuery string
	columns     []string
}

// NewViewDefinition creates an empty definition for selectQuery
func NewViewDefinition(quoter Quoter, selectQuery string) *ViewDefinition {
	return &ViewDefinition{
		quoter:      quoter,
		selectQuery: selectQuery,
	}
}

// AddColumn appends a column to the view's column list
func (d *ViewDefinition) AddColumn(name string) {
	d.columns = append(d.columns, name)
}

// SelectQuery returns the SELECT text the view is defined by
func (d *ViewDefinition) SelectQuery() string {
	return d.selectQuery
}

// Columns returns the declared column names
func (d *ViewDefinition) Columns() []string {
	return slices.Clone(d.columns)
}

// ToSQL renders the quoted column list, or "" when no columns were added
func (d *ViewDefinition) ToSQL() string {
	quoted := make([]string, len(d.columns))
	for i, column := range d.columns {
		quoted[i] = d.quoter.QuoteColumnName(column)
	}
	return strings.Join(quoted, ", ")
}

// MappingDefinition maps the columns of an existing table or view to the
// names a mapping view exposes
type MappingDefinition struct {
	source        string
	sourceColumns []string
	mappings      []types.ColumnMapping
}

// NewMappingDefinition creates a definition over the columns of source
func NewMappingDefinition(source string, sourceColumns []string) *MappingDefinition {
	return &MappingDefinition{
		source:        source,
		sourceColumns: slices.Clone(sourceColumns),
	}
}

// Map exposes sourceColumn as exposedName. Duplicate exposed names are left
// for the database to reject.
func (d *MappingDefinition) Map(sourceColumn, exposedName string) error {
	if !slices.Contains(d.sourceColumns, sourceColumn) {
		return errors.NewUnknownColumnError(d.source, sourceColumn, d.sourceColumns)
	}
	d.mappings = append(d.mappings, types.ColumnMapping{From: sourceColumn, To: exposedName})
	return nil
}

// SourceColumns returns the columns of the mapped table
func (d *MappingDefinition) SourceColumns() []string {
	return slices.Clone(d.sourceColumns)
}

// Mappings returns the mappings in the order they were added
func (d *MappingDefinition) Mappings() []types.ColumnMapping {
	return slices.Clone(d.mappings)
}

// ExposedNames returns the view's column names in mapping order
func (d *MappingDefinition) ExposedNames() []string {
	names := make([]string, len(d.mappings))
	for i, mapping := range d.mappings {
		names[i] = mapping.To
	}
	return names
}

// SourceNames returns the projected source columns in mapping order
func (d *MappingDefinition) SourceNames() []string {
	names := make([]string, len(d.mappings))
	for i, mapping := range d.mappings {
		names[i] = mapping.From
	}
	return names
}
