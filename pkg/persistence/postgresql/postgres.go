// Package postgresql provides the PostgreSQL backend for documents and workflows.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/persistence/sqlbase"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// NewPersistence connects to databaseURL, migrates the schema and returns the store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*sqlbase.Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
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
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
