package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Workflow struct {
	persistence persistence.Persistence
	activator   *workflow.Activator
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(
	persistence persistence.Persistence,
	activator *workflow.Activator,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		persistence: persistence,
		activator:   activator,
		publisher:   publisher,
		tracer:      tracer,
		logger:      logger.With("module", "workflow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Activate sends the first step of the document's workflow in its own unit
// of work. Only the document's creator may activate it; actorID is recorded
// on the published event.
func (w *Workflow) Activate(ctx context.Context, actorID, documentID string) (_ *models.Workflow, err error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "services.Workflow.Activate",
		attribute.String(otelhelper.DocumentIDKey, documentID),
	)
	defer span.End()

	defer func() {
		if err != nil {
			otelhelper.SetError(span, err)
		}
	}()

	uow, err := w.persistence.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	activated, err := w.activate(ctx, uow, actorID, documentID)
	if err != nil {
		if rollbackErr := uow.Rollback(); rollbackErr != nil {
			w.logger.ErrorContext(ctx, "Failed to roll back activation", "document_id", documentID, "error", rollbackErr)
		}

		return nil, err
	}

	if err = uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit activation of document %s: %w", documentID, err)
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, activated.ID))

	publish(ctx, w.publisher, w.logger, documentID, events.NewWorkflowActivated(activated, actorID))

	return activated, nil
}

func (w *Workflow) activate(ctx context.Context, uow persistence.UnitOfWork, actorID, documentID string) (*models.Workflow, error) {
	const op = "ActivateWorkflow"

	document, err := uow.Documents().ByID(ctx, documentID)
	if err != nil {
		if persistence.IsDocumentNotFound(err) {
			return nil, NewNotFoundError(op, "document not found: "+documentID, err)
		}

		return nil, fmt.Errorf("failed to load document %s: %w", documentID, err)
	}

	if document.CreatorID != actorID {
		return nil, NewPermissionError(op, "only the creator can activate the workflow of document "+documentID)
	}

	activated, err := w.activator.Activate(ctx, uow.Workflows(), documentID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return nil, NewNotFoundError(op, "no workflow for document "+documentID, err)
		}

		return nil, err
	}

	return activated, nil
}
