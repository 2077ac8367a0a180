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
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/godror/godror"        // Oracle driver
	_ "github.com/lib/pq"               // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"     // SQLite driver
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/ocomsoft/makeviews/internal/config"
	"github.com/ocomsoft/makeviews/internal/types"
)

// driverName maps a database type to its database/sql driver
func driverName(dbType types.DatabaseType) (string, error) {
	switch dbType {
	case types.DatabaseOracle:
		return "godror", nil
	case types.DatabasePostgreSQL:
		return "postgres", nil
	case types.DatabaseMySQL:
		return "mysql", nil
	case types.DatabaseSQLite:
		return "sqlite3", nil
	case types.DatabaseSQLServer:
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// buildDatabaseURL constructs a connection string from MAKEVIEWS_DB_*
// environment variables. MAKEVIEWS_DB_URL overrides all of them.
func buildDatabaseURL(dbType types.DatabaseType) (string, error) {
	if url := os.Getenv("MAKEVIEWS_DB_URL"); url != "" {
		return url, nil
	}

	switch dbType {
	case types.DatabaseOracle:
		host := getEnvOrDefault("MAKEVIEWS_DB_HOST", "localhost")
		port := getEnvOrDefault("MAKEVIEWS_DB_PORT", "1521")
		user := getEnvOrDefault("MAKEVIEWS_DB_USER", "system")
		password := getEnvOrDefault("MAKEVIEWS_DB_PASSWORD", "")
		service := getEnvOrDefault("MAKEVIEWS_DB_NAME", "FREEPDB1")

		return fmt.Sprintf(`user=%q password=%q connectString="%s:%s/%s"`,
			user, password, host, port, service), nil

	case types.DatabasePostgreSQL:
		host := getEnvOrDefault("MAKEVIEWS_DB_HOST", "localhost")
		port := getEnvOrDefault("MAKEVIEWS_DB_PORT", "5432")
		user := getEnvOrDefault("MAKEVIEWS_DB_USER", "postgres")
		password := getEnvOrDefault("MAKEVIEWS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("MAKEVIEWS_DB_NAME", "postgres")
		sslmode := getEnvOrDefault("MAKEVIEWS_DB_SSLMODE", "disable")

		if password != "" {
			return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				user, password, host, port, dbname, sslmode), nil
		}
		return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
			user, host, port, dbname, sslmode), nil

	case types.DatabaseMySQL:
		host := getEnvOrDefault("MAKEVIEWS_DB_HOST", "localhost")
		port := getEnvOrDefault("MAKEVIEWS_DB_PORT", "3306")
		user := getEnvOrDefault("MAKEVIEWS_DB_USER", "root")
		password := getEnvOrDefault("MAKEVIEWS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("MAKEVIEWS_DB_NAME", "mysql")

		if password != "" {
			return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
				user, password, host, port, dbname), nil
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?parseTime=true",
			user, host, port, dbname), nil

	case types.DatabaseSQLite:
		return getEnvOrDefault("MAKEVIEWS_DB_PATH", "database.db"), nil

	case types.DatabaseSQLServer:
		host := getEnvOrDefault("MAKEVIEWS_DB_HOST", "localhost")
		port := getEnvOrDefault("MAKEVIEWS_DB_PORT", "1433")
		user := getEnvOrDefault("MAKEVIEWS_DB_USER", "sa")
		password := getEnvOrDefault("MAKEVIEWS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("MAKEVIEWS_DB_NAME", "master")

		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			user, password, host, port, dbname), nil

	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// openDatabase opens and pings the database configured in cfg
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, string, error) {
	dbType, err := types.ParseDatabaseType(cfg.Database.Type)
	if err != nil {
		return nil, "", err
	}

	driver, err := driverName(dbType)
	if err != nil {
		return nil, "", err
	}

	dbURL, err := buildDatabaseURL(dbType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build database URL: %w", err)
	}

	db, err := sql.Open(driver, dbURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	return db, driver, nil
}
