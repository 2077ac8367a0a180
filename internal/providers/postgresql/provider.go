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
package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/providers/catalog"
	"github.com/ocomsoft/makeviews/internal/types"
	"github.com/ocomsoft/makeviews/internal/utils"
)

// Provider implements the Provider interface for PostgreSQL
type Provider struct{}

// New creates a new PostgreSQL provider
func New() *Provider {
	return &Provider{}
}

// Capabilities reports view support for PostgreSQL. Materialized views are
// only emitted for Oracle.
func (p *Provider) Capabilities() types.Capabilities {
	return types.Capabilities{
		Views:                 true,
		MaterializedViews:     false,
		ViewColumnsDefinition: true,
		ReplaceView:           true,
	}
}

// QuoteColumnName quotes database identifiers for PostgreSQL
func (p *Provider) QuoteColumnName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteTableName quotes a possibly schema-qualified table name
func (p *Provider) QuoteTableName(name string) string {
	return utils.QuoteQualified(name, p.QuoteColumnName)
}

func (p *Provider) GenerateCreateMaterializedView(quotedName, columnList, selectQuery string) (string, error) {
	return "", errors.ErrUnsupported
}

func (p *Provider) GenerateCreateRefreshJob(job *types.RefreshJob) (string, error) {
	return "", errors.ErrUnsupported
}

func (p *Provider) GenerateDropRefreshJob(schema, viewName string) (string, error) {
	return "", errors.ErrUnsupported
}

func (p *Provider) IsJobNotFound(err error) bool {
	return false
}

// GetColumns lists the columns of a table or view from information_schema
func (p *Provider) GetColumns(ctx context.Context, db catalog.Queryer, tableName string) ([]string, error) {
	schema, name := utils.SplitQualifiedName(tableName)

	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		  AND table_schema = COALESCE(NULLIF($2, ''), current_schema())
		ORDER BY ordinal_position`

	columns, err := catalog.Columns(ctx, db, query, name, schema)
	if err != nil {
		return nil, fmt.Errorf("postgresql: %w", err)
	}
	return columns, nil
}
