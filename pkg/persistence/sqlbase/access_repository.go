package sqlbase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/models"
)

// AccessRepository maintains read-only whitelist grants.
type AccessRepository struct {
	db     querier
	logger *slog.Logger
}

func newAccessRepository(db querier, logger *slog.Logger) *AccessRepository {
	return &AccessRepository{db: db, logger: logger}
}

// DeleteExpired removes read-only grants whose expiry is before now.
// Grants without an expiry are permanent.
func (r *AccessRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM document_accesses
		WHERE access_type = $1 AND expires_at IS NOT NULL AND expires_at < $2
	`, string(models.AccessTypeReadOnly), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired accesses: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted accesses: %w", err)
	}

	return deleted, nil
}
