package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/mocks"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistory_RecordAndList(t *testing.T) {
	svc := newTestServices(t)
	svc.allowPartyLookups()
	ctx := context.Background()

	view, err := svc.documents.Create(ctx, user("creator"), CreateDocumentRequest{
		DocumentType: models.DocumentTypeOrder,
		Content:      "Order on vacations",
		PaperCount:   1,
		Recipients:   []AddressData{recipient("bob")},
		Workflow: []workflow.StepData{
			{StepType: models.StepTypeSigning, UserIDs: []string{"signer"}},
		},
	})
	require.NoError(t, err)

	created := events.NewDocumentCreated(&view.Document, "wf-1")

	recorded, err := svc.history.Record(ctx, created)
	require.NoError(t, err)
	assert.True(t, recorded)

	// redelivered events are recorded once
	recorded, err = svc.history.Record(ctx, created)
	require.NoError(t, err)
	assert.False(t, recorded)

	history, err := svc.history.List(ctx, user("bob"), view.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	assert.Equal(t, created.ID, history[0].ID)
	assert.Equal(t, string(events.DocumentCreatedEvent), history[0].EventType)
	assert.Equal(t, "creator", history[0].ActorID)

	var payload events.DocumentCreated
	require.NoError(t, json.Unmarshal(history[0].Payload, &payload))
	assert.Equal(t, view.SystemNumber, payload.SystemNumber)
	assert.Equal(t, []string{"bob"}, payload.RecipientIDs)
}

func TestHistory_ListUnknownDocument(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.history.List(context.Background(), user("bob"), uuid.NewString())
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestHistory_RecordFailure(t *testing.T) {
	t.Parallel()

	repository := &mocks.MockHistoryRepository{}
	repository.On("Append", mock.Anything, mock.Anything).Return(false, errors.New("disk full"))

	store := &mocks.MockPersistence{}
	store.On("History").Return(repository)

	history := NewHistory(store, otelhelper.NoopTracer(), testLogger())

	event := events.NewDocumentRegistered("doc-1", &models.RegistrationNumber{Prefix: "ВХ", Number: "000001", RegistratorID: "registrar"})

	recorded, err := history.Record(context.Background(), event)
	require.ErrorContains(t, err, "disk full")
	assert.False(t, recorded)

	appended := repository.Calls[0].Arguments.Get(1).(*models.DocumentEvent)
	assert.Equal(t, event.ID, appended.ID)
	assert.Equal(t, "doc-1", appended.DocumentID)
	assert.Equal(t, "registrar", appended.ActorID)
	assert.Equal(t, string(events.DocumentRegisteredEvent), appended.EventType)
}
