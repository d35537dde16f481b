// Package workflow builds, activates and projects document approval routes.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/google/uuid"
)

// ErrRecipientUserRequired is returned when an assignment recipient names no
// user. Only users can execute an assignment step.
var ErrRecipientUserRequired = errors.New("assignment recipient must be a user")

// RoleDirectory lists the users currently holding a role.
type RoleDirectory interface {
	UserIDsByRole(ctx context.Context, role string) ([]string, error)
}

// StepData is one caller-supplied step: a type and the users acting in it.
type StepData struct {
	StepType models.StepType `json:"step_type" validate:"required"`
	UserIDs  []string        `json:"user_ids" validate:"required,min=1,dive,required"`
}

// BuildRequest carries everything needed to produce the initial route.
type BuildRequest struct {
	DocumentID   string
	DocumentType models.DocumentType
	Recipients   []*models.DocumentAddress
	Steps        []StepData
}

// Builder produces the initial, unpersisted and inactive route for a document.
type Builder struct {
	directory     RoleDirectory
	registrarRole string
	logger        *slog.Logger
}

func NewBuilder(directory RoleDirectory, registrarRole string, logger *slog.Logger) *Builder {
	return &Builder{
		directory:     directory,
		registrarRole: registrarRole,
		logger:        logger.With("module", "workflow_builder"),
	}
}

// Build dispatches on the document type. It fails when the directory does or
// when an assignment recipient has no user.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*models.Workflow, error) {
	var (
		steps []*models.WorkflowStep
		err   error
	)

	switch req.DocumentType {
	case models.DocumentTypeIncoming:
		steps, err = b.buildIncoming(ctx, req.Recipients)
	case models.DocumentTypeAssignment:
		steps, err = buildAssignment(req.Recipients)
	case models.DocumentTypeOutgoing,
		models.DocumentTypeAssignmentInternal,
		models.DocumentTypeProtocol,
		models.DocumentTypeOrder,
		models.DocumentTypeDirective,
		models.DocumentTypeNotes:
		steps = buildFromSteps(req.Steps)
	default:
		steps = buildFromSteps(req.Steps)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build workflow for document %s: %w", req.DocumentID, err)
	}

	workflow := &models.Workflow{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Steps:      steps,
		CreatedAt:  time.Now().UTC(),
	}

	for _, step := range steps {
		step.WorkflowID = workflow.ID
	}

	b.logger.DebugContext(ctx, "Built workflow",
		"document_id", req.DocumentID,
		"document_type", req.DocumentType,
		"workflow_id", workflow.ID,
		"steps", len(steps),
	)

	return workflow, nil
}

// buildIncoming routes through every registrar, then to the recipients for a decision.
func (b *Builder) buildIncoming(ctx context.Context, recipients []*models.DocumentAddress) ([]*models.WorkflowStep, error) {
	registrars, err := b.directory.UserIDsByRole(ctx, b.registrarRole)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrars: %w", err)
	}

	registration := newStep(models.StepTypeRegistration, 1)
	for _, userID := range registrars {
		registration.Participants = append(registration.Participants, newParticipant(registration.ID, userID))
	}

	decision := newStep(models.StepTypeDecision, 2)

	for _, recipient := range recipients {
		// organization and external-person addresses cannot act in a step
		if recipient.UserID == nil {
			continue
		}

		decision.Participants = append(decision.Participants, newParticipant(decision.ID, *recipient.UserID))
	}

	return []*models.WorkflowStep{registration, decision}, nil
}

// buildAssignment gives every recipient its own execution step, in submission order.
func buildAssignment(recipients []*models.DocumentAddress) ([]*models.WorkflowStep, error) {
	steps := make([]*models.WorkflowStep, 0, len(recipients))

	for i, recipient := range recipients {
		if recipient.UserID == nil {
			return nil, fmt.Errorf("recipient %d: %w", i, ErrRecipientUserRequired)
		}

		step := newStep(models.StepTypeExecution, i+1)

		participant := newParticipant(step.ID, *recipient.UserID)
		participant.Comment = recipient.Comment
		participant.IsResponsible = recipient.IsResponsible
		step.Participants = []*models.WorkflowParticipant{participant}

		steps = append(steps, step)
	}

	return steps, nil
}

func buildFromSteps(data []StepData) []*models.WorkflowStep {
	steps := make([]*models.WorkflowStep, 0, len(data))

	for i, entry := range data {
		step := newStep(entry.StepType, i+1)
		for _, userID := range entry.UserIDs {
			step.Participants = append(step.Participants, newParticipant(step.ID, userID))
		}

		steps = append(steps, step)
	}

	return steps
}

func newStep(stepType models.StepType, order int) *models.WorkflowStep {
	return &models.WorkflowStep{
		ID:           uuid.NewString(),
		StepType:     stepType,
		Status:       models.StatusWaiting,
		Order:        order,
		Participants: []*models.WorkflowParticipant{},
	}
}

func newParticipant(stepID, userID string) *models.WorkflowParticipant {
	return &models.WorkflowParticipant{
		ID:     uuid.NewString(),
		StepID: stepID,
		UserID: userID,
		Status: models.StatusWaiting,
	}
}
