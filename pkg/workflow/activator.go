package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
)

// ActivationStore is the slice of a unit of work the activator needs.
type ActivationStore interface {
	ByDocumentID(ctx context.Context, documentID string) (*models.Workflow, error)
	SaveStep(ctx context.Context, step *models.WorkflowStep) error
}

// Activator sends the first step of a route to its participants.
type Activator struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewActivator(logger *slog.Logger) *Activator {
	return &Activator{
		logger: logger.With("module", "workflow_activator"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Activate marks the lowest-order step and its participants as SENDED and
// records the change in store. The caller commits. Calling it twice
// re-stamps the same step.
func (a *Activator) Activate(ctx context.Context, store ActivationStore, documentID string) (*models.Workflow, error) {
	workflow, err := store.ByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	if workflow == nil {
		return nil, persistence.NewDocumentWorkflowError("Activate", documentID, persistence.ErrWorkflowNotFound)
	}

	step := workflow.FirstStep()
	if step == nil {
		a.logger.DebugContext(ctx, "Workflow has no steps to activate", "document_id", documentID, "workflow_id", workflow.ID)

		return workflow, nil
	}

	now := a.now()

	step.IsActive = true
	step.Status = models.StatusSended
	step.StartedAt = &now

	for _, participant := range step.Participants {
		participant.Status = models.StatusSended
		participant.StartedAt = &now
	}

	if err := store.SaveStep(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to save activated step %s: %w", step.ID, err)
	}

	a.logger.InfoContext(ctx, "Activated workflow",
		"document_id", documentID,
		"workflow_id", workflow.ID,
		"step_id", step.ID,
		"step_type", step.StepType,
		"participants", len(step.Participants),
	)

	return workflow, nil
}
