package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/persistence"
)

var (
	_ persistence.Persistence = (*Store)(nil)
	_ persistence.UnitOfWork  = (*Tx)(nil)
)

// querier is the part of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UniqueViolation reports whether err is the driver's unique-constraint error.
type UniqueViolation func(err error) bool

// Store implements persistence.Persistence over a migrated database.
type Store struct {
	db              *sql.DB
	logger          *slog.Logger
	rules           StatusRules
	uniqueViolation UniqueViolation
}

// NewStore wraps db. The schema must already be migrated. uniqueViolation
// lets the store tell a taken system number from other insert failures.
func NewStore(db *sql.DB, logger *slog.Logger, uniqueViolation UniqueViolation) *Store {
	return &Store{
		db:              db,
		logger:          logger.With("module", "sql_store"),
		rules:           DefaultStatusRules,
		uniqueViolation: uniqueViolation,
	}
}

// Begin opens a unit of work backed by a database transaction.
func (s *Store) Begin(ctx context.Context) (persistence.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &Tx{tx: tx, logger: s.logger, rules: s.rules, uniqueViolation: s.uniqueViolation}, nil
}

func (s *Store) Documents() persistence.DocumentReader {
	return newDocumentRepository(s.db, s.logger, s.rules, s.uniqueViolation)
}

func (s *Store) Accesses() persistence.AccessRepository {
	return newAccessRepository(s.db, s.logger)
}

func (s *Store) History() persistence.HistoryRepository {
	return newHistoryRepository(s.db, s.logger)
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// Tx is a unit of work. Repositories handed out by it share the transaction.
type Tx struct {
	tx              *sql.Tx
	logger          *slog.Logger
	rules           StatusRules
	uniqueViolation UniqueViolation
}

func (t *Tx) Documents() persistence.DocumentWriter {
	return newDocumentRepository(t.tx, t.logger, t.rules, t.uniqueViolation)
}

func (t *Tx) Workflows() persistence.WorkflowRepository {
	return newWorkflowRepository(t.tx, t.logger)
}

func (t *Tx) Registrations() persistence.RegistrationRepository {
	return newRegistrationRepository(t.tx, t.logger)
}

func (t *Tx) Commit() error {
	err := t.tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}

	return nil
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
