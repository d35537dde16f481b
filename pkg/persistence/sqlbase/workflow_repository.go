package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
)

// WorkflowRepository stores routes, their steps and participants.
type WorkflowRepository struct {
	db     querier
	logger *slog.Logger
}

func newWorkflowRepository(db querier, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// Add inserts the workflow and its whole step tree.
func (r *WorkflowRepository) Add(ctx context.Context, workflow *models.Workflow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, document_id, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, workflow.ID, workflow.DocumentID, utcOrNil(workflow.StartedAt), utcOrNil(workflow.FinishedAt), workflow.CreatedAt.UTC())
	if err != nil {
		return persistence.NewWorkflowError("Add", workflow.ID, err)
	}

	for _, step := range workflow.Steps {
		err = r.insertStep(ctx, workflow.ID, step)
		if err != nil {
			return persistence.NewWorkflowError("Add", workflow.ID, err)
		}
	}

	r.logger.DebugContext(ctx, "Inserted workflow", "workflow_id", workflow.ID, "document_id", workflow.DocumentID, "steps", len(workflow.Steps))

	return nil
}

func (r *WorkflowRepository) insertStep(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_steps (id, workflow_id, step_type, status, step_order, is_active, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		step.ID,
		workflowID,
		string(step.StepType),
		string(step.Status),
		step.Order,
		step.IsActive,
		utcOrNil(step.StartedAt),
		utcOrNil(step.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert step %s: %w", step.ID, err)
	}

	for position, participant := range step.Participants {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO workflow_participants
				(id, step_id, user_id, status, started_at, finished_at, comment, deadline, is_responsible, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			participant.ID,
			step.ID,
			participant.UserID,
			string(participant.Status),
			utcOrNil(participant.StartedAt),
			utcOrNil(participant.FinishedAt),
			stringOrNil(participant.Comment),
			utcOrNil(participant.Deadline),
			participant.IsResponsible,
			position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s of step %s: %w", participant.UserID, step.ID, err)
		}
	}

	return nil
}

// ByDocumentID loads the document's workflow with steps sorted by order.
// It returns nil, nil when the document has no workflow.
func (r *WorkflowRepository) ByDocumentID(ctx context.Context, documentID string) (*models.Workflow, error) {
	var (
		workflow   models.Workflow
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			id
		  , document_id
		  , started_at
		  , finished_at
		  , created_at
		FROM workflows
		WHERE document_id = $1
	`, documentID).Scan(&workflow.ID, &workflow.DocumentID, &startedAt, &finishedAt, &workflow.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewDocumentWorkflowError("ByDocumentID", documentID, err)
	}

	workflow.StartedAt = timePtr(startedAt)
	workflow.FinishedAt = timePtr(finishedAt)
	workflow.CreatedAt = workflow.CreatedAt.UTC()

	workflow.Steps, err = r.loadSteps(ctx, workflow.ID)
	if err != nil {
		return nil, persistence.NewWorkflowError("ByDocumentID", workflow.ID, err)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, workflowID string) ([]*models.WorkflowStep, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id
		  , workflow_id
		  , step_type
		  , status
		  , step_order
		  , is_active
		  , started_at
		  , finished_at
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY step_order
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	steps := make([]*models.WorkflowStep, 0)
	byID := make(map[string]*models.WorkflowStep)

	for rows.Next() {
		var (
			step       models.WorkflowStep
			stepType   string
			status     string
			startedAt  sql.NullTime
			finishedAt sql.NullTime
		)

		err = rows.Scan(&step.ID, &step.WorkflowID, &stepType, &status, &step.Order, &step.IsActive, &startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		step.StepType = models.StepType(stepType)
		step.Status = models.Status(status)
		step.StartedAt = timePtr(startedAt)
		step.FinishedAt = timePtr(finishedAt)
		step.Participants = []*models.WorkflowParticipant{}

		steps = append(steps, &step)
		byID[step.ID] = &step
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	err = r.loadParticipants(ctx, workflowID, byID)
	if err != nil {
		return nil, err
	}

	return steps, nil
}

func (r *WorkflowRepository) loadParticipants(ctx context.Context, workflowID string, steps map[string]*models.WorkflowStep) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			p.id
		  , p.step_id
		  , p.user_id
		  , p.status
		  , p.started_at
		  , p.finished_at
		  , p.comment
		  , p.deadline
		  , p.is_responsible
		FROM workflow_participants p
		JOIN workflow_steps s ON s.id = p.step_id
		WHERE s.workflow_id = $1
		ORDER BY s.step_order, p.position
	`, workflowID)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var (
			participant models.WorkflowParticipant
			status      string
			startedAt   sql.NullTime
			finishedAt  sql.NullTime
			comment     sql.NullString
			deadline    sql.NullTime
		)

		err = rows.Scan(
			&participant.ID,
			&participant.StepID,
			&participant.UserID,
			&status,
			&startedAt,
			&finishedAt,
			&comment,
			&deadline,
			&participant.IsResponsible,
		)
		if err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}

		participant.Status = models.Status(status)
		participant.StartedAt = timePtr(startedAt)
		participant.FinishedAt = timePtr(finishedAt)
		participant.Comment = stringPtr(comment)
		participant.Deadline = timePtr(deadline)

		if step, ok := steps[participant.StepID]; ok {
			step.Participants = append(step.Participants, &participant)
		}
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("error iterating participants: %w", err)
	}

	return nil
}

// SaveStep writes the step's mutable columns and those of its participants.
func (r *WorkflowRepository) SaveStep(ctx context.Context, step *models.WorkflowStep) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workflow_steps
		SET status = $1, is_active = $2, started_at = $3, finished_at = $4
		WHERE id = $5
	`, string(step.Status), step.IsActive, utcOrNil(step.StartedAt), utcOrNil(step.FinishedAt), step.ID)
	if err != nil {
		return persistence.NewWorkflowError("SaveStep", step.WorkflowID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("SaveStep", step.WorkflowID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("SaveStep", step.WorkflowID, persistence.ErrStepNotFound)
	}

	for _, participant := range step.Participants {
		_, err = r.db.ExecContext(ctx, `
			UPDATE workflow_participants
			SET status = $1, started_at = $2, finished_at = $3, comment = $4, deadline = $5, is_responsible = $6
			WHERE id = $7
		`,
			string(participant.Status),
			utcOrNil(participant.StartedAt),
			utcOrNil(participant.FinishedAt),
			stringOrNil(participant.Comment),
			utcOrNil(participant.Deadline),
			participant.IsResponsible,
			participant.ID,
		)
		if err != nil {
			return persistence.NewWorkflowError("SaveStep", step.WorkflowID,
				fmt.Errorf("failed to update participant %s: %w", participant.ID, err))
		}
	}

	return nil
}
