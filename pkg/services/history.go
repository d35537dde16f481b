package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordableEvent is a published event that belongs to one document.
type RecordableEvent interface {
	GetType() events.EventType
	Header() events.BaseEvent
}

// History records consumed events per document and serves them back to
// viewers of that document.
type History struct {
	persistence persistence.Persistence
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewHistory(persistence persistence.Persistence, tracer trace.Tracer, logger *slog.Logger) *History {
	return &History{
		persistence: persistence,
		tracer:      tracer,
		logger:      logger.With("module", "history_service"),
	}
}

// Record appends event to its document's history. It reports false when the
// event was already recorded.
func (h *History) Record(ctx context.Context, event RecordableEvent) (bool, error) {
	header := event.Header()

	ctx, span := otelhelper.StartSpan(ctx, h.tracer, "services.History.Record",
		attribute.String(otelhelper.DocumentIDKey, header.DocumentID),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		otelhelper.SetError(span, err)

		return false, fmt.Errorf("failed to encode %s event: %w", event.GetType(), err)
	}

	recorded, err := h.persistence.History().Append(ctx, &models.DocumentEvent{
		ID:         header.ID,
		DocumentID: header.DocumentID,
		EventType:  string(event.GetType()),
		ActorID:    header.ActorID,
		OccurredAt: header.Timestamp,
		Payload:    payload,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return false, err
	}

	if !recorded {
		h.logger.DebugContext(ctx, "Event already recorded", "event_id", header.ID, "document_id", header.DocumentID)
	}

	return recorded, nil
}

// List returns the history of a document the viewer can see, oldest first.
func (h *History) List(ctx context.Context, viewer *directory.User, documentID string) ([]*models.DocumentEvent, error) {
	ctx, span := otelhelper.StartSpan(ctx, h.tracer, "services.History.List",
		attribute.String(otelhelper.DocumentIDKey, documentID),
		attribute.String(otelhelper.ViewerIDKey, viewer.ID),
	)
	defer span.End()

	if _, err := h.persistence.Documents().View(ctx, documentID, viewer.ID); err != nil {
		otelhelper.SetError(span, err)

		if persistence.IsDocumentNotFound(err) {
			return nil, NewNotFoundError("GetDocumentHistory", "document not found: "+documentID, err)
		}

		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	history, err := h.persistence.History().ByDocumentID(ctx, documentID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return history, nil
}
