// Package persistence defines the storage contract for documents, their
// workflows and registrations.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/docflow/pkg/models"
)

// Persistence is the entry point of a storage backend.
type Persistence interface {
	// Begin opens a unit of work. Every write goes through one.
	Begin(ctx context.Context) (UnitOfWork, error)
	Documents() DocumentReader
	Accesses() AccessRepository
	History() HistoryRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// UnitOfWork groups the writes of one request so they commit or roll back together.
type UnitOfWork interface {
	Documents() DocumentWriter
	Workflows() WorkflowRepository
	Registrations() RegistrationRepository

	Commit() error
	Rollback() error
}

type WorkflowRepository interface {
	// Add inserts the workflow with all its steps and participants.
	Add(ctx context.Context, workflow *models.Workflow) error
	ByDocumentID(ctx context.Context, documentID string) (*models.Workflow, error)
	// SaveStep updates the step and its participants.
	SaveStep(ctx context.Context, step *models.WorkflowStep) error
}

type DocumentWriter interface {
	// Add inserts the document with its addresses, confidentials and accesses.
	Add(ctx context.Context, document *models.Document) error
	ByID(ctx context.Context, id string) (*models.Document, error)
}

// ListDocumentsOptions selects one page of the documents visible to a viewer.
type ListDocumentsOptions struct {
	Page         int
	PerPage      int
	DocumentType *models.DocumentType
}

// DocumentReader serves views with the viewer's projected status computed in the query.
type DocumentReader interface {
	View(ctx context.Context, id, viewerID string) (*models.DocumentView, error)
	List(ctx context.Context, viewerID string, opts ListDocumentsOptions) ([]*models.DocumentView, int, error)
}

type RegistrationRepository interface {
	Initialize(ctx context.Context, registration *models.DocumentRegistration) error
	ByDocumentID(ctx context.Context, documentID string) (*models.DocumentRegistration, error)
	// MaxNumber returns the highest issued number for prefix, or 0.
	MaxNumber(ctx context.Context, prefix string) (int, error)
	AssignNumber(ctx context.Context, documentID string, number *models.RegistrationNumber) error
}

type AccessRepository interface {
	// DeleteExpired removes read-only grants that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HistoryRepository stores the events recorded for each document.
type HistoryRepository interface {
	// Append stores event unless an event with the same id is already
	// stored, and reports whether it was new.
	Append(ctx context.Context, event *models.DocumentEvent) (bool, error)
	// ByDocumentID returns the events of a document, oldest first.
	ByDocumentID(ctx context.Context, documentID string) ([]*models.DocumentEvent, error)
}
