// Package events defines the notifications published as documents move through circulation.
package events

import (
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every docflow event.
const Topic = "docflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DocumentCreatedEvent    EventType = "document.created"
	WorkflowActivatedEvent  EventType = "workflow.activated"
	DocumentRegisteredEvent EventType = "document.registered"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	DocumentID string         `json:"document_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Header returns the fields every event shares.
func (e BaseEvent) Header() BaseEvent {
	return e
}

func newBaseEvent(eventType EventType, documentID, actorID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		DocumentID: documentID,
		ActorID:    actorID,
	}
}

type DocumentCreated struct {
	BaseEvent

	DocumentType models.DocumentType `json:"document_type"`
	SystemNumber string              `json:"system_number"`
	WorkflowID   string              `json:"workflow_id"`
	RecipientIDs []string            `json:"recipient_ids,omitempty"`
}

func (e DocumentCreated) GetType() EventType {
	return DocumentCreatedEvent
}

func NewDocumentCreated(document *models.Document, workflowID string) *DocumentCreated {
	var recipientIDs []string

	for _, recipient := range document.Recipients() {
		if recipient.UserID != nil {
			recipientIDs = append(recipientIDs, *recipient.UserID)
		}
	}

	return &DocumentCreated{
		BaseEvent:    newBaseEvent(DocumentCreatedEvent, document.ID, document.CreatorID),
		DocumentType: document.DocumentType,
		SystemNumber: document.SystemNumber,
		WorkflowID:   workflowID,
		RecipientIDs: recipientIDs,
	}
}

// WorkflowActivated announces that a step was sent to its participants.
type WorkflowActivated struct {
	BaseEvent

	WorkflowID     string          `json:"workflow_id"`
	StepID         string          `json:"step_id"`
	StepType       models.StepType `json:"step_type"`
	ParticipantIDs []string        `json:"participant_ids"`
}

func (e WorkflowActivated) GetType() EventType {
	return WorkflowActivatedEvent
}

func NewWorkflowActivated(workflow *models.Workflow, actorID string) *WorkflowActivated {
	event := &WorkflowActivated{
		BaseEvent:      newBaseEvent(WorkflowActivatedEvent, workflow.DocumentID, actorID),
		WorkflowID:     workflow.ID,
		ParticipantIDs: []string{},
	}

	if step := workflow.FirstStep(); step != nil {
		event.StepID = step.ID
		event.StepType = step.StepType

		for _, participant := range step.Participants {
			event.ParticipantIDs = append(event.ParticipantIDs, participant.UserID)
		}
	}

	return event
}

type DocumentRegistered struct {
	BaseEvent

	RegistrationNumber string `json:"registration_number"`
}

func (e DocumentRegistered) GetType() EventType {
	return DocumentRegisteredEvent
}

func NewDocumentRegistered(documentID string, number *models.RegistrationNumber) *DocumentRegistered {
	return &DocumentRegistered{
		BaseEvent:          newBaseEvent(DocumentRegisteredEvent, documentID, number.RegistratorID),
		RegistrationNumber: number.FullName(),
	}
}
