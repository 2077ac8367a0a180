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
package types

import (
	"fmt"
	"strings"
)

// DatabaseType represents supported database types
type DatabaseType string

const (
	DatabaseOracle     DatabaseType = "oracle"
	DatabasePostgreSQL DatabaseType = "postgresql"
	DatabaseMySQL      DatabaseType = "mysql"
	DatabaseSQLServer  DatabaseType = "sqlserver"
	DatabaseSQLite     DatabaseType = "sqlite"
)

// ParseDatabaseType parses a string into a DatabaseType
func ParseDatabaseType(db string) (DatabaseType, error) {
	if IsValidDatabase(db) {
		return DatabaseType(db), nil
	}
	return "", fmt.Errorf("unsupported database type: %s (supported: oracle, postgresql, mysql, sqlserver, sqlite)", db)
}

// IsValidDatabase checks if a database type is valid
func IsValidDatabase(db string) bool {
	switch DatabaseType(db) {
	case DatabaseOracle, DatabasePostgreSQL, DatabaseMySQL, DatabaseSQLServer, DatabaseSQLite:
		return true
	default:
		return false
	}
}

// Capabilities describes which view DDL a dialect accepts. The values are
// fixed for the lifetime of a connection.
type Capabilities struct {
	Views                 bool `json:"views"`
	MaterializedViews     bool `json:"materialized_views"`
	ViewColumnsDefinition bool `json:"view_columns_definition"`
	ReplaceView           bool `json:"replace_view"`
}

// CheckOption is the level used in WITH <level> CHECK OPTION
type CheckOption string

const (
	CheckOptionNone     CheckOption = ""
	CheckOptionLocal    CheckOption = "LOCAL"
	CheckOptionCascaded CheckOption = "CASCADED"
)

// DropBehavior is the trailing clause of DROP VIEW
type DropBehavior string

const (
	DropDefault            DropBehavior = ""
	DropCascade            DropBehavior = "CASCADE"
	DropRestrict           DropBehavior = "RESTRICT"
	DropCascadeConstraints DropBehavior = "CASCADE CONSTRAINTS"
)

// ViewOptions controls view and materialized view creation
type ViewOptions struct {
	// Force drops an existing view of the same name first, ignoring any error
	Force bool
	// PrimaryKey columns for a disabled primary key constraint on the view
	PrimaryKey []string
	// CheckOption appends WITH <option> CHECK OPTION; only "" disables it
	CheckOption CheckOption
	// RefreshSchedule is a dialect-native repeat interval, e.g. FREQ=DAILY
	RefreshSchedule string
}

// DropOptions controls DROP VIEW
type DropOptions struct {
	Behavior DropBehavior
}

// RefreshJob describes a scheduled complete refresh of a materialized view
type RefreshJob struct {
	ViewName       string
	Schema         string
	RepeatInterval string
	NotifyTarget   string
	NotifySender   string
}

// Validate validates the refresh job
func (j *RefreshJob) Validate() error {
	if j.ViewName == "" {
		return fmt.Errorf("refresh job view name is required")
	}
	if strings.TrimSpace(j.RepeatInterval) == "" {
		return fmt.Errorf("refresh job for %s: repeat interval is required", j.ViewName)
	}
	return nil
}

// CommandKind tags a recorded migration command
type CommandKind string

const (
	CommandCreateView             CommandKind = "create_view"
	CommandCreateMaterializedView CommandKind = "create_materialized_view"
	CommandCreateMvRefreshJob     CommandKind = "create_mv_refresh_job"
	CommandDropView               CommandKind = "drop_view"
	CommandDropMaterializedView   CommandKind = "drop_materialized_view"
	CommandDropMvRefreshJob       CommandKind = "drop_mv_refresh_job"
)
