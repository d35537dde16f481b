package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates no workflow exists for the given document.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrDocumentNotFound indicates a document was not found by the given identifier.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrRegistrationNotFound indicates a document has no registration row.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrStepNotFound indicates an update targeted a step that does not exist.
	ErrStepNotFound = errors.New("workflow step not found")

	// ErrDuplicateSystemNumber indicates another document already holds the system number.
	ErrDuplicateSystemNumber = errors.New("system number already taken")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "ByDocumentID", "SaveStep", "Activate")
	WorkflowID string // Workflow ID if applicable
	DocumentID string // Owning document ID if applicable
	Err        error  // Underlying error
	Message    string // Additional context message
}

func (e *WorkflowError) Error() string {
	target := e.WorkflowID
	if target == "" {
		target = fmt.Sprintf("of document %s", e.DocumentID)
	}

	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for workflow %s: %s (%v)", e.Op, target, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, target, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NewDocumentWorkflowError creates a workflow error addressed by the owning document.
func NewDocumentWorkflowError(op, documentID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		DocumentID: documentID,
		Err:        err,
	}
}

// DocumentError wraps document-related errors with additional context.
type DocumentError struct {
	Op         string // Operation being performed
	DocumentID string // Document ID
	Err        error  // Underlying error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s operation failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDocumentError creates a new document error with context.
func NewDocumentError(op, documentID string, err error) *DocumentError {
	return &DocumentError{
		Op:         op,
		DocumentID: documentID,
		Err:        err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsDocumentNotFound checks if an error indicates a document was not found.
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

// IsRegistrationNotFound checks if an error indicates a registration was not found.
func IsRegistrationNotFound(err error) bool {
	return errors.Is(err, ErrRegistrationNotFound)
}

// IsDuplicateSystemNumber checks if an insert collided with an existing system number.
func IsDuplicateSystemNumber(err error) bool {
	return errors.Is(err, ErrDuplicateSystemNumber)
}
