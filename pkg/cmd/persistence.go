// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/persistence/postgresql"
	"github.com/dukex/docflow/pkg/persistence/sqlbase"
	"github.com/dukex/docflow/pkg/persistence/sqlite"
)

var supportedPersistenceProviders = []string{"postgres", "postgresql", "sqlite"}

// NewPersistence opens the store selected by the URL scheme and applies its migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	var (
		store *sqlbase.Store
		err   error
	)

	switch provider {
	case "postgres", "postgresql":
		store, err = postgresql.NewPersistence(ctx, logger, databaseURL)
	case "sqlite":
		store, err = sqlite.NewPersistence(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database URL %q, expected one of %v", databaseURL, supportedPersistenceProviders)
	}

	if err != nil {
		return nil, err
	}

	return store, nil
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return ""
}
