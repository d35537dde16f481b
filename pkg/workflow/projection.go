package workflow

import (
	"time"

	"github.com/dukex/docflow/pkg/models"
)

// ViewerRole is the relation between a viewer and a document that decides
// which step's status the viewer sees.
type ViewerRole int

const (
	ViewerCreator ViewerRole = iota
	ViewerParticipant
)

// StepField is a step attribute a StatusRule can sort on.
type StepField int

const (
	FieldIsActive StepField = iota
	FieldStartedAt
	FieldFinishedAt
	FieldOrder
)

// Column returns the workflow_steps column backing the field.
func (f StepField) Column() string {
	switch f {
	case FieldIsActive:
		return "is_active"
	case FieldStartedAt:
		return "started_at"
	case FieldFinishedAt:
		return "finished_at"
	default:
		return "step_order"
	}
}

// SortKey orders candidate steps. Null timestamps always sort last.
type SortKey struct {
	Field      StepField
	Descending bool
}

// StatusRule picks, among the steps that are active or finished, the one whose
// status a viewer sees. The SQL renderer in sqlbase consumes the same values.
type StatusRule struct {
	Role                 ViewerRole
	RequireParticipation bool // only steps the viewer acts in
	OrderBy              []SortKey
}

var (
	// CreatorRule prefers the active step, then the most recently finished one.
	CreatorRule = StatusRule{
		Role: ViewerCreator,
		OrderBy: []SortKey{
			{Field: FieldIsActive, Descending: true},
			{Field: FieldFinishedAt, Descending: true},
			{Field: FieldOrder},
		},
	}

	// ParticipantRule prefers the most recently started step the viewer acts in.
	ParticipantRule = StatusRule{
		Role:                 ViewerParticipant,
		RequireParticipation: true,
		OrderBy: []SortKey{
			{Field: FieldStartedAt, Descending: true},
			{Field: FieldOrder},
		},
	}
)

// RuleFor returns the rule applied to role.
func RuleFor(role ViewerRole) StatusRule {
	if role == ViewerCreator {
		return CreatorRule
	}

	return ParticipantRule
}

// RoleOf classifies viewerID against the document.
func RoleOf(document *models.Document, viewerID string) ViewerRole {
	if document.CreatorID == viewerID {
		return ViewerCreator
	}

	return ViewerParticipant
}

// Select returns the step the rule picks for viewerID, or nil.
func (r StatusRule) Select(workflow *models.Workflow, viewerID string) *models.WorkflowStep {
	if workflow == nil {
		return nil
	}

	var best *models.WorkflowStep

	for _, step := range workflow.Steps {
		if !step.IsReached() {
			continue
		}

		if r.RequireParticipation && !step.HasParticipant(viewerID) {
			continue
		}

		if best == nil || r.less(step, best) {
			best = step
		}
	}

	return best
}

// less reports whether a sorts strictly before b.
func (r StatusRule) less(a, b *models.WorkflowStep) bool {
	for _, key := range r.OrderBy {
		cmp := compareField(key.Field, a, b)
		if key.Descending {
			cmp = -cmp
		}

		cmp = nullsLast(key.Field, a, b, cmp)
		if cmp != 0 {
			return cmp < 0
		}
	}

	return false
}

// StatusFor computes the status viewerID sees on document. The boolean is
// false when no step qualifies.
func StatusFor(document *models.Document, workflow *models.Workflow, viewerID string) (models.Status, bool) {
	step := RuleFor(RoleOf(document, viewerID)).Select(workflow, viewerID)
	if step == nil {
		return "", false
	}

	return step.Status, true
}

func compareField(field StepField, a, b *models.WorkflowStep) int {
	switch field {
	case FieldIsActive:
		return compareBool(a.IsActive, b.IsActive)
	case FieldStartedAt:
		return compareTime(a.StartedAt, b.StartedAt)
	case FieldFinishedAt:
		return compareTime(a.FinishedAt, b.FinishedAt)
	default:
		return a.Order - b.Order
	}
}

// nullsLast overrides cmp so that an unset timestamp sorts after a set one
// whatever the direction.
func nullsLast(field StepField, a, b *models.WorkflowStep, cmp int) int {
	var x, y *time.Time

	switch field {
	case FieldStartedAt:
		x, y = a.StartedAt, b.StartedAt
	case FieldFinishedAt:
		x, y = a.FinishedAt, b.FinishedAt
	default:
		return cmp
	}

	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return 1
	case y == nil:
		return -1
	default:
		return cmp
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func compareTime(a, b *time.Time) int {
	if a == nil || b == nil {
		return 0
	}

	return a.Compare(*b)
}
