package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/docflow/pkg/mocks"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func at(hours int) *time.Time {
	t := base.Add(time.Duration(hours) * time.Hour)

	return &t
}

type stepFixture struct {
	order    int
	status   models.Status
	active   bool
	started  *time.Time
	finished *time.Time
	users    []string
}

func routeOf(fixtures ...stepFixture) *models.Workflow {
	steps := make([]*models.WorkflowStep, 0, len(fixtures))

	for _, fixture := range fixtures {
		step := testutil.CreateTestStep(models.StepTypeAgreement, fixture.order, fixture.users...)
		step.Status = fixture.status
		step.IsActive = fixture.active
		step.StartedAt = fixture.started
		step.FinishedAt = fixture.finished
		steps = append(steps, step)
	}

	return testutil.CreateTestWorkflow("doc", steps...)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	document := &models.Document{ID: "doc", CreatorID: "creator"}

	tests := []struct {
		name     string
		workflow *models.Workflow
		viewer   string
		expected models.Status
		known    bool
	}{
		{
			name:     "no workflow",
			workflow: nil,
			viewer:   "creator",
		},
		{
			name:     "creator sees nothing before activation",
			workflow: routeOf(stepFixture{order: 1, status: models.StatusWaiting, users: []string{"u1"}}),
			viewer:   "creator",
		},
		{
			name: "creator sees the active step over finished ones",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusCompleted, started: at(0), finished: at(5)},
				stepFixture{order: 2, status: models.StatusInWork, active: true, started: at(6)},
				stepFixture{order: 3, status: models.StatusWaiting},
			),
			viewer:   "creator",
			expected: models.StatusInWork,
			known:    true,
		},
		{
			name: "creator sees the most recently finished step when none is active",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusCompleted, finished: at(2)},
				stepFixture{order: 2, status: models.StatusRejected, finished: at(9)},
				stepFixture{order: 3, status: models.StatusWaiting},
			),
			viewer:   "creator",
			expected: models.StatusRejected,
			known:    true,
		},
		{
			name: "creator does not need to participate",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusSended, active: true, started: at(1), users: []string{"u1"}},
			),
			viewer:   "creator",
			expected: models.StatusSended,
			known:    true,
		},
		{
			name: "creator tie broken by lowest order",
			workflow: routeOf(
				stepFixture{order: 4, status: models.StatusRevision, active: true},
				stepFixture{order: 2, status: models.StatusInWork, active: true},
			),
			viewer:   "creator",
			expected: models.StatusInWork,
			known:    true,
		},
		{
			name: "participant sees the most recently started step they act in",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusCompleted, started: at(1), finished: at(2), users: []string{"u1"}},
				stepFixture{order: 2, status: models.StatusInWork, active: true, started: at(3), users: []string{"u1"}},
				stepFixture{order: 3, status: models.StatusRejected, started: at(8), finished: at(9), users: []string{"u2"}},
			),
			viewer:   "u1",
			expected: models.StatusInWork,
			known:    true,
		},
		{
			name: "participant ignores steps that were not reached",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusSended, active: true, started: at(1), users: []string{"u2"}},
				stepFixture{order: 2, status: models.StatusWaiting, started: at(4), users: []string{"u1"}},
			),
			viewer: "u1",
		},
		{
			name: "participant unset start sorts last",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusRevision, finished: at(7), users: []string{"u1"}},
				stepFixture{order: 2, status: models.StatusCompleted, started: at(1), finished: at(2), users: []string{"u1"}},
			),
			viewer:   "u1",
			expected: models.StatusCompleted,
			known:    true,
		},
		{
			name: "participant tie broken by lowest order",
			workflow: routeOf(
				stepFixture{order: 5, status: models.StatusRejected, finished: at(2), users: []string{"u1"}},
				stepFixture{order: 3, status: models.StatusCompleted, finished: at(1), users: []string{"u1"}},
			),
			viewer:   "u1",
			expected: models.StatusCompleted,
			known:    true,
		},
		{
			name: "bystander sees nothing",
			workflow: routeOf(
				stepFixture{order: 1, status: models.StatusSended, active: true, started: at(1), users: []string{"u1"}},
			),
			viewer: "stranger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, known := StatusFor(document, tt.workflow, tt.viewer)

			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestStatusRules_OnlyReachedSteps(t *testing.T) {
	t.Parallel()

	workflow := routeOf(
		stepFixture{order: 1, status: models.StatusWaiting, started: at(10), users: []string{"u1"}},
		stepFixture{order: 2, status: models.StatusCompleted, finished: at(1), users: []string{"u1"}},
	)

	for _, rule := range []StatusRule{CreatorRule, ParticipantRule} {
		step := rule.Select(workflow, "u1")
		require.NotNil(t, step)
		assert.True(t, step.IsReached())
		assert.Equal(t, 2, step.Order)
	}
}

func TestRuleFor(t *testing.T) {
	t.Parallel()

	document := &models.Document{CreatorID: "creator"}

	assert.Equal(t, ViewerCreator, RoleOf(document, "creator"))
	assert.Equal(t, ViewerParticipant, RoleOf(document, "someone"))
	assert.Equal(t, CreatorRule.Role, RuleFor(ViewerCreator).Role)
	assert.True(t, RuleFor(ViewerParticipant).RequireParticipation)
	assert.Equal(t, "step_order", FieldOrder.Column())
}

func TestBuildActivateProject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	dir := &mocks.MockDirectory{}
	dir.On("UserIDsByRole", mock.Anything, registrarRole).Return([]string{"registrar"}, nil)

	document := testutil.CreateTestDocument(
		testutil.WithDocumentType(models.DocumentTypeIncoming),
		testutil.WithCreator("creator"),
		testutil.WithRecipient("head", true, nil),
	)

	workflow, err := NewBuilder(dir, registrarRole, testLogger()).Build(ctx, BuildRequest{
		DocumentID:   document.ID,
		DocumentType: document.DocumentType,
		Recipients:   document.Recipients(),
	})
	require.NoError(t, err)

	store := &mocks.MockWorkflowRepository{}
	store.On("ByDocumentID", mock.Anything, document.ID).Return(workflow, nil)
	store.On("SaveStep", mock.Anything, mock.Anything).Return(nil)

	_, err = NewActivator(testLogger()).Activate(ctx, store, document.ID)
	require.NoError(t, err)

	status, known := StatusFor(document, workflow, "creator")
	require.True(t, known)
	assert.Equal(t, models.StatusSended, status)

	status, known = StatusFor(document, workflow, "registrar")
	require.True(t, known)
	assert.Equal(t, models.StatusSended, status)

	_, known = StatusFor(document, workflow, "head")
	assert.False(t, known)
}
