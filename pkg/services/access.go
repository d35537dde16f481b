package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/persistence"
)

// AccessSweeper removes whitelist grants once they expire.
type AccessSweeper struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	now         func() time.Time
}

func NewAccessSweeper(persistence persistence.Persistence, logger *slog.Logger) *AccessSweeper {
	return &AccessSweeper{
		persistence: persistence,
		logger:      logger.With("module", "access_sweeper"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Sweep deletes every read-only access that expired before now and reports how many went.
func (s *AccessSweeper) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.persistence.Accesses().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired accesses: %w", err)
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "Deleted expired accesses", "count", deleted)
	} else {
		s.logger.DebugContext(ctx, "No expired accesses")
	}

	return deleted, nil
}
