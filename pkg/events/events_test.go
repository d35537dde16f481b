package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/docflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewDocumentCreated(t *testing.T) {
	t.Parallel()

	document := &models.Document{
		ID:           "doc-1",
		DocumentType: models.DocumentTypeIncoming,
		SystemNumber: "INC-2026/10/15-0A1B2C3D",
		CreatorID:    "creator",
		Addresses: []*models.DocumentAddress{
			{PartyType: models.PartyTypeSender, UserID: strPtr("creator")},
			{PartyType: models.PartyTypeRecipient, UserID: strPtr("u1")},
			{PartyType: models.PartyTypeRecipient, OrganizationID: strPtr("org")},
		},
	}

	event := NewDocumentCreated(document, "wf-1")

	assert.Equal(t, DocumentCreatedEvent, event.GetType())
	assert.Equal(t, DocumentCreatedEvent, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "doc-1", event.DocumentID)
	assert.Equal(t, "creator", event.ActorID)
	assert.Equal(t, []string{"u1"}, event.RecipientIDs)

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"workflow_id":"wf-1"`)
	assert.Contains(t, string(payload), `"document_type":"INCOMING"`)
}

func TestNewWorkflowActivated(t *testing.T) {
	t.Parallel()

	t.Run("reports the first step", func(t *testing.T) {
		t.Parallel()

		workflow := &models.Workflow{
			ID:         "wf-1",
			DocumentID: "doc-1",
			Steps: []*models.WorkflowStep{
				{ID: "s2", Order: 2, StepType: models.StepTypeDecision},
				{ID: "s1", Order: 1, StepType: models.StepTypeRegistration, Participants: []*models.WorkflowParticipant{
					{UserID: "r1"}, {UserID: "r2"},
				}},
			},
		}

		event := NewWorkflowActivated(workflow, "creator")

		assert.Equal(t, WorkflowActivatedEvent, event.GetType())
		assert.Equal(t, "s1", event.StepID)
		assert.Equal(t, models.StepTypeRegistration, event.StepType)
		assert.Equal(t, []string{"r1", "r2"}, event.ParticipantIDs)
	})

	t.Run("empty workflow", func(t *testing.T) {
		t.Parallel()

		event := NewWorkflowActivated(&models.Workflow{ID: "wf-2", DocumentID: "doc-2"}, "")

		assert.Empty(t, event.StepID)
		assert.Empty(t, event.ParticipantIDs)
	})
}

func TestNewDocumentRegistered(t *testing.T) {
	t.Parallel()

	event := NewDocumentRegistered("doc-1", &models.RegistrationNumber{
		Prefix:        "ПОР",
		Number:        "000007",
		Postfix:       "",
		RegistratorID: "registrar",
	})

	assert.Equal(t, DocumentRegisteredEvent, event.GetType())
	assert.Equal(t, "ПОР-000007/", event.RegistrationNumber)
	assert.Equal(t, "registrar", event.ActorID)
}
