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
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Common error types for the makeviews tool

// ErrUnsupported marks an operation the active dialect cannot express. The
// view manager absorbs it so shared migrations run on every dialect.
var ErrUnsupported = stderrors.New("operation not supported by dialect")

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

type DefinitionParseError struct {
	FilePath string
	Line     int
	Message  string
}

func (e DefinitionParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("definition parse error in %s at line %d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("definition parse error in %s: %s", e.FilePath, e.Message)
}

// UnknownColumnError is returned when a mapping names a column the source
// table does not have
type UnknownColumnError struct {
	Source  string
	Column  string
	Columns []string
}

func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q in %s (available: %s)", e.Column, e.Source, strings.Join(e.Columns, ", "))
}

// NotInvertibleError is returned when a recorded command has no inverse
type NotInvertibleError struct {
	Kind string
}

func (e NotInvertibleError) Error() string {
	return fmt.Sprintf("command %s is not invertible", e.Kind)
}

type MigrationError struct {
	Operation string
	Message   string
}

func (e MigrationError) Error() string {
	return fmt.Sprintf("migration error during %s: %s", e.Operation, e.Message)
}

// Error wrapping helpers
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

func NewDefinitionParseError(filePath string, line int, message string) error {
	return DefinitionParseError{FilePath: filePath, Line: line, Message: message}
}

func NewUnknownColumnError(source, column string, columns []string) error {
	return UnknownColumnError{Source: source, Column: column, Columns: columns}
}

func NewNotInvertibleError(kind string) error {
	return NotInvertibleError{Kind: kind}
}

func NewMigrationError(operation, message string) error {
	return MigrationError{Operation: operation, Message: message}
}

// Utility functions for error checking
func IsValidationError(err error) bool {
	var target ValidationError
	return stderrors.As(err, &target)
}

func IsDefinitionParseError(err error) bool {
	var target DefinitionParseError
	return stderrors.As(err, &target)
}

func IsUnknownColumnError(err error) bool {
	var target UnknownColumnError
	return stderrors.As(err, &target)
}

func IsNotInvertibleError(err error) bool {
	var target NotInvertibleError
	return stderrors.As(err, &target)
}

func IsMigrationError(err error) bool {
	var target MigrationError
	return stderrors.As(err, &target)
}

func IsUnsupported(err error) bool {
	return stderrors.Is(err, ErrUnsupported)
}
