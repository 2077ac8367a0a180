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
	"fmt"

	"github.com/ocomsoft/makeviews/internal/providers/mysql"
	"github.com/ocomsoft/makeviews/internal/providers/oracle"
	"github.com/ocomsoft/makeviews/internal/providers/postgresql"
	"github.com/ocomsoft/makeviews/internal/providers/sqlite"
	"github.com/ocomsoft/makeviews/internal/providers/sqlserver"
	"github.com/ocomsoft/makeviews/internal/types"
)

// NewProvider creates a new database provider based on the database type
func NewProvider(dbType types.DatabaseType) (Provider, error) {
	switch dbType {
	case types.DatabaseOracle:
		return oracle.New(), nil
	case types.DatabasePostgreSQL:
		return postgresql.New(), nil
	case types.DatabaseMySQL:
		return mysql.New(), nil
	case types.DatabaseSQLite:
		return sqlite.New(), nil
	case types.DatabaseSQLServer:
		return sqlserver.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}
