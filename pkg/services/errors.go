// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/workflow"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest              = errors.New("invalid request")
	ErrInvalidStepType             = errors.New("invalid workflow step type")
	ErrStepUsersRequired           = errors.New("workflow step must list at least one user")
	ErrInvalidDocumentType         = errors.New("invalid document type")
	ErrRecipientIdentityRequired   = errors.New("recipient must have a user, external user or organization")
	ErrRecipientUserRequired       = workflow.ErrRecipientUserRequired
	ErrInvalidConfidentialityLevel = errors.New("invalid confidentiality level")

	// Not Found Errors (404 Not Found).
	ErrDocumentNotFound = persistence.ErrDocumentNotFound
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
	ErrUserNotFound     = errors.New("user not found")

	// Permission Errors (403 Forbidden).
	ErrPermissionDenied = errors.New("permission denied")

	// Conflict Errors (409 Conflict).
	ErrConflict = errors.New("conflict")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStepType) ||
		errors.Is(err, ErrStepUsersRequired) ||
		errors.Is(err, ErrInvalidDocumentType) ||
		errors.Is(err, ErrRecipientIdentityRequired) ||
		errors.Is(err, ErrRecipientUserRequired) ||
		errors.Is(err, ErrInvalidConfidentialityLevel)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsDocumentNotFound(err) ||
		persistence.IsWorkflowNotFound(err) ||
		errors.Is(err, ErrUserNotFound)
}

// IsPermissionDenied checks if an error should return HTTP 403.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUpstreamError checks if an error came from the user directory and should return HTTP 502.
func IsUpstreamError(err error) bool {
	return directory.IsUpstreamUnavailable(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewPermissionError creates a permission error with context.
func NewPermissionError(op, message string) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    "PERMISSION_DENIED",
		Message: message,
		Err:     ErrPermissionDenied,
	}
}

// NewNotFoundError creates a not-found error with context.
func NewNotFoundError(op, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    "NOT_FOUND",
		Message: message,
		Err:     err,
	}
}

// NewConflictError creates a conflict error with context. cause stays
// reachable through errors.Is.
func NewConflictError(op, message string, cause error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    "CONFLICT",
		Message: message,
		Err:     errors.Join(ErrConflict, cause),
	}
}
