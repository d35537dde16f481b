package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/models"
)

// HistoryRepository appends recorded events and reads them back per document.
type HistoryRepository struct {
	db     querier
	logger *slog.Logger
}

func newHistoryRepository(db querier, logger *slog.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Append inserts event. A redelivered event keeps its first copy.
func (r *HistoryRepository) Append(ctx context.Context, event *models.DocumentEvent) (bool, error) {
	var actorID *string
	if event.ActorID != "" {
		actorID = &event.ActorID
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO document_events (id, document_id, event_type, actor_id, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.DocumentID, event.EventType, stringOrNil(actorID), event.OccurredAt.UTC(), string(event.Payload))
	if err != nil {
		return false, fmt.Errorf("failed to append event %s: %w", event.ID, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count appended events: %w", err)
	}

	return inserted == 1, nil
}

func (r *HistoryRepository) ByDocumentID(ctx context.Context, documentID string) ([]*models.DocumentEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, event_type, actor_id, occurred_at, payload
		FROM document_events
		WHERE document_id = $1
		ORDER BY occurred_at, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of document %s: %w", documentID, err)
	}
	defer closeRows(ctx, r.logger, rows)

	history := []*models.DocumentEvent{}

	for rows.Next() {
		var (
			event   models.DocumentEvent
			actorID sql.NullString
			payload []byte
		)

		err := rows.Scan(&event.ID, &event.DocumentID, &event.EventType, &actorID, &event.OccurredAt, &payload)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document event: %w", err)
		}

		event.ActorID = actorID.String
		event.OccurredAt = event.OccurredAt.UTC()
		event.Payload = payload
		history = append(history, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history of document %s: %w", documentID, err)
	}

	return history, nil
}
