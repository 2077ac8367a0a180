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
	"database/sql"
	"database/sql/driver"
	"strings"
)

// Statement is one collected DDL statement
type Statement struct {
	SQL  string
	Mode StatementMode
}

// Required reports whether a failure of the statement must stop the migration
func (s Statement) Required() bool {
	return s.Mode == ModeRequired
}

// Script is an executor that collects statements instead of running them.
// It is used to write migration files offline.
type Script struct {
	statements []Statement
}

// NewScript creates an empty script
func NewScript() *Script {
	return &Script{}
}

// ExecContext appends query as a required statement
func (s *Script) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.ExecMode(ctx, query, ModeRequired); err != nil {
		return nil, err
	}
	return driver.RowsAffected(0), nil
}

// ExecMode appends query with the given failure mode
func (s *Script) ExecMode(ctx context.Context, query string, mode StatementMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.statements = append(s.statements, Statement{SQL: strings.TrimSpace(query), Mode: mode})
	return nil
}

// Statements returns the collected statements in execution order
func (s *Script) Statements() []Statement {
	return append([]Statement(nil), s.statements...)
}

// Len returns the number of collected statements
func (s *Script) Len() int {
	return len(s.statements)
}

// Append adds the statements of other to the end of s
func (s *Script) Append(other *Script) {
	s.statements = append(s.statements, other.statements...)
}
