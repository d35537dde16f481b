// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"strings"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/google/uuid"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestDocument creates a Document with default values that can be overridden.
func CreateTestDocument(overrides ...func(*models.Document)) *models.Document {
	id := uuid.New().String()

	document := &models.Document{
		ID:           id,
		DocumentType: models.DocumentTypeOrder,
		SystemNumber: "ORD-2026/10/15-" + strings.ToUpper(id[:8]),
		Content:      "Test document",
		PaperCount:   1,
		CreatorID:    uuid.New().String(),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	for _, override := range overrides {
		override(document)
	}

	for _, address := range document.Addresses {
		address.DocumentID = document.ID
	}

	return document
}

// WithDocumentType sets the document type.
func WithDocumentType(documentType models.DocumentType) func(*models.Document) {
	return func(d *models.Document) {
		d.DocumentType = documentType
	}
}

// WithCreator sets the creator id.
func WithCreator(creatorID string) func(*models.Document) {
	return func(d *models.Document) {
		d.CreatorID = creatorID
	}
}

// WithSender adds a sender address for userID.
func WithSender(userID string) func(*models.Document) {
	return func(d *models.Document) {
		d.Addresses = append(d.Addresses, &models.DocumentAddress{
			ID:        uuid.New().String(),
			PartyType: models.PartyTypeSender,
			UserID:    Ptr(userID),
		})
	}
}

// WithRecipient adds a recipient address for userID.
func WithRecipient(userID string, responsible bool, comment *string) func(*models.Document) {
	return func(d *models.Document) {
		d.Addresses = append(d.Addresses, CreateTestRecipient(userID, responsible, comment))
	}
}

// WithOrganizationRecipient adds a recipient identified only by an organization.
func WithOrganizationRecipient(organizationID string) func(*models.Document) {
	return func(d *models.Document) {
		d.Addresses = append(d.Addresses, &models.DocumentAddress{
			ID:             uuid.New().String(),
			PartyType:      models.PartyTypeRecipient,
			OrganizationID: Ptr(organizationID),
		})
	}
}

// WithExternalSender adds a sender written by an external user on behalf of an organization.
func WithExternalSender(externalUserID, organizationID string) func(*models.Document) {
	return func(d *models.Document) {
		d.Addresses = append(d.Addresses, &models.DocumentAddress{
			ID:             uuid.New().String(),
			PartyType:      models.PartyTypeSender,
			ExternalUserID: Ptr(externalUserID),
			OrganizationID: Ptr(organizationID),
		})
	}
}

// WithLevels tags the document with confidentiality levels.
func WithLevels(levels ...models.ConfidentialityLevel) func(*models.Document) {
	return func(d *models.Document) {
		for _, level := range levels {
			d.Confidentials = append(d.Confidentials, &models.DocumentConfidential{
				ID:    uuid.New().String(),
				Level: level,
			})
		}
	}
}

// WithAccess grants userID read-only access until expiresAt (nil for no expiry).
func WithAccess(userID string, expiresAt *time.Time) func(*models.Document) {
	return func(d *models.Document) {
		d.Accesses = append(d.Accesses, &models.DocumentAccess{
			ID:         uuid.New().String(),
			UserID:     userID,
			AccessType: models.AccessTypeReadOnly,
			ExpiresAt:  expiresAt,
		})
	}
}

// CreateTestRecipient creates a recipient address for userID.
func CreateTestRecipient(userID string, responsible bool, comment *string) *models.DocumentAddress {
	return &models.DocumentAddress{
		ID:            uuid.New().String(),
		PartyType:     models.PartyTypeRecipient,
		UserID:        Ptr(userID),
		IsResponsible: responsible,
		Comment:       comment,
	}
}

// CreateTestStep creates a WAITING step at order with one participant per user id.
func CreateTestStep(stepType models.StepType, order int, userIDs ...string) *models.WorkflowStep {
	step := &models.WorkflowStep{
		ID:           uuid.New().String(),
		StepType:     stepType,
		Status:       models.StatusWaiting,
		Order:        order,
		Participants: []*models.WorkflowParticipant{},
	}

	for _, userID := range userIDs {
		step.Participants = append(step.Participants, &models.WorkflowParticipant{
			ID:     uuid.New().String(),
			StepID: step.ID,
			UserID: userID,
			Status: models.StatusWaiting,
		})
	}

	return step
}

// CreateTestWorkflow creates a workflow for documentID owning steps.
func CreateTestWorkflow(documentID string, steps ...*models.WorkflowStep) *models.Workflow {
	workflow := &models.Workflow{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Steps:      steps,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	for _, step := range steps {
		step.WorkflowID = workflow.ID
	}

	return workflow
}
