package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/mocks"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/testutil"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflow(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	service := NewWorkflow(store, workflow.NewActivator(testLogger()), nil, otelhelper.NoopTracer(), testLogger())

	assert.NotNil(t, service)
	assert.Equal(t, store, service.persistence)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := &mocks.MockPersistence{}
	healthy.On("HealthCheck", mock.Anything).Return(nil)

	unhealthy := &mocks.MockPersistence{}
	unhealthy.On("HealthCheck", mock.Anything).Return(errors.New("database is locked"))

	message, ok := NewWorkflow(healthy, nil, nil, otelhelper.NoopTracer(), testLogger()).HealthCheck(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)

	message, ok = NewWorkflow(unhealthy, nil, nil, otelhelper.NoopTracer(), testLogger()).HealthCheck(context.Background())
	assert.False(t, ok)
	assert.Contains(t, message, "database is locked")

	message, ok = NewWorkflow(nil, nil, nil, otelhelper.NoopTracer(), testLogger()).HealthCheck(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer not initialized", message)
}

func TestWorkflow_Activate(t *testing.T) {
	svc := newTestServices(t)
	svc.allowPartyLookups()

	document := testutil.CreateTestDocument(testutil.WithCreator("creator"))
	route := testutil.CreateTestWorkflow(document.ID,
		testutil.CreateTestStep(models.StepTypeAgreement, 1, "bob", "carol"),
		testutil.CreateTestStep(models.StepTypeSigning, 2, "dave"),
	)

	uow, err := svc.store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Workflows().Add(context.Background(), route))
	require.NoError(t, uow.Commit())

	before, err := svc.documents.Get(context.Background(), user("bob"), document.ID)
	require.NoError(t, err)
	assert.Nil(t, before.Status)

	activated, err := svc.workflows.Activate(context.Background(), "creator", document.ID)
	require.NoError(t, err)
	assert.Equal(t, route.ID, activated.ID)

	first := activated.FirstStep()
	assert.True(t, first.IsActive)
	assert.Equal(t, models.StatusSended, first.Status)

	for _, viewer := range []string{"creator", "bob", "carol"} {
		view, err := svc.documents.Get(context.Background(), user(viewer), document.ID)
		require.NoError(t, err)
		require.NotNil(t, view.Status, viewer)
		assert.Equal(t, models.StatusSended, *view.Status, viewer)
	}

	view, err := svc.documents.Get(context.Background(), user("dave"), document.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Status)

	assert.Equal(t, []events.EventType{events.WorkflowActivatedEvent}, publishedTypes(svc.bus))
}

func TestWorkflow_ActivateWithoutWorkflow(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.workflows.Activate(context.Background(), "creator", "missing")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	document := testutil.CreateTestDocument(testutil.WithCreator("creator"))

	uow, err := svc.store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Commit())

	_, err = svc.workflows.Activate(context.Background(), "creator", document.ID)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	// the failed unit of work released the connection
	assert.NoError(t, svc.store.HealthCheck(context.Background()))
}

func TestWorkflow_ActivateRequiresCreator(t *testing.T) {
	svc := newTestServices(t)

	document := testutil.CreateTestDocument(testutil.WithCreator("creator"))
	route := testutil.CreateTestWorkflow(document.ID, testutil.CreateTestStep(models.StepTypeSigning, 1, "bob"))

	uow, err := svc.store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Workflows().Add(context.Background(), route))
	require.NoError(t, uow.Commit())

	_, err = svc.workflows.Activate(context.Background(), "bob", document.ID)
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))

	uow, err = svc.store.Begin(context.Background())
	require.NoError(t, err)

	stored, err := uow.Workflows().ByDocumentID(context.Background(), document.ID)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	assert.False(t, stored.FirstStep().IsActive)
	assert.Empty(t, publishedTypes(svc.bus))
}
