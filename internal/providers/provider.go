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

	"github.com/ocomsoft/makeviews/internal/providers/catalog"
	"github.com/ocomsoft/makeviews/internal/types"
)

// Provider defines the interface for database-specific view DDL
type Provider interface {
	// Capability flags
	Capabilities() types.Capabilities

	// Identifier quoting
	QuoteTableName(name string) string
	QuoteColumnName(name string) string

	// Materialized views
	GenerateCreateMaterializedView(quotedName, columnList, selectQuery string) (string, error)

	// Refresh jobs
	GenerateCreateRefreshJob(job *types.RefreshJob) (string, error)
	GenerateDropRefreshJob(schema, viewName string) (string, error)
	IsJobNotFound(err error) bool

	// Metadata
	GetColumns(ctx context.Context, db Queryer, tableName string) ([]string, error)
}

// Queryer is the read side of a database session
type Queryer = catalog.Queryer
