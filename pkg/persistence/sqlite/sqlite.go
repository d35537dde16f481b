// Package sqlite provides an embedded SQLite backend for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/docflow/pkg/persistence/sqlbase"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Scheme prefixes SQLite database URLs, as in sqlite://docflow.db or sqlite://:memory:.
const Scheme = "sqlite://"

const memory = ":memory:"

// NewPersistence opens the database named by databaseURL, migrates the
// schema and returns the store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*sqlbase.Store, error) {
	path := strings.TrimPrefix(databaseURL, Scheme)
	if path == "" {
		return nil, fmt.Errorf("invalid SQLite database URL %q: missing path", databaseURL)
	}

	database, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// every connection to :memory: is a separate database
	if path == memory {
		database.SetMaxOpenConns(1)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqlbase.NewStore(database, logger, isUniqueViolation), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *driver.Error

	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func dsn(path string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return path + separator + "_pragma=foreign_keys(1)&_time_format=sqlite"
}
