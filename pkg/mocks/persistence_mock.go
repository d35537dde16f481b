package mocks

import (
	"context"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Begin(ctx context.Context) (persistence.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(persistence.UnitOfWork), args.Error(1)
}

func (m *MockPersistence) Documents() persistence.DocumentReader {
	args := m.Called()

	return args.Get(0).(persistence.DocumentReader)
}

func (m *MockPersistence) Accesses() persistence.AccessRepository {
	args := m.Called()

	return args.Get(0).(persistence.AccessRepository)
}

func (m *MockPersistence) History() persistence.HistoryRepository {
	args := m.Called()

	return args.Get(0).(persistence.HistoryRepository)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of persistence.UnitOfWork interface.
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Documents() persistence.DocumentWriter {
	args := m.Called()

	return args.Get(0).(persistence.DocumentWriter)
}

func (m *MockUnitOfWork) Workflows() persistence.WorkflowRepository {
	args := m.Called()

	return args.Get(0).(persistence.WorkflowRepository)
}

func (m *MockUnitOfWork) Registrations() persistence.RegistrationRepository {
	args := m.Called()

	return args.Get(0).(persistence.RegistrationRepository)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()

	return args.Error(0)
}

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository interface.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Add(ctx context.Context, workflow *models.Workflow) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockWorkflowRepository) ByDocumentID(ctx context.Context, documentID string) (*models.Workflow, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) SaveStep(ctx context.Context, step *models.WorkflowStep) error {
	args := m.Called(ctx, step)

	return args.Error(0)
}

// MockDocumentWriter is a mock implementation of persistence.DocumentWriter interface.
type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) Add(ctx context.Context, document *models.Document) error {
	args := m.Called(ctx, document)

	return args.Error(0)
}

func (m *MockDocumentWriter) ByID(ctx context.Context, id string) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Document), args.Error(1)
}

// MockDocumentReader is a mock implementation of persistence.DocumentReader interface.
type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) View(ctx context.Context, id, viewerID string) (*models.DocumentView, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.DocumentView), args.Error(1)
}

func (m *MockDocumentReader) List(ctx context.Context, viewerID string, opts persistence.ListDocumentsOptions) ([]*models.DocumentView, int, error) {
	args := m.Called(ctx, viewerID, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]*models.DocumentView), args.Int(1), args.Error(2)
}

// MockRegistrationRepository is a mock implementation of persistence.RegistrationRepository interface.
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Initialize(ctx context.Context, registration *models.DocumentRegistration) error {
	args := m.Called(ctx, registration)

	return args.Error(0)
}

func (m *MockRegistrationRepository) ByDocumentID(ctx context.Context, documentID string) (*models.DocumentRegistration, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.DocumentRegistration), args.Error(1)
}

func (m *MockRegistrationRepository) MaxNumber(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)

	return args.Int(0), args.Error(1)
}

func (m *MockRegistrationRepository) AssignNumber(ctx context.Context, documentID string, number *models.RegistrationNumber) error {
	args := m.Called(ctx, documentID, number)

	return args.Error(0)
}

// MockAccessRepository is a mock implementation of persistence.AccessRepository interface.
type MockAccessRepository struct {
	mock.Mock
}

func (m *MockAccessRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)

	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository is a mock implementation of persistence.HistoryRepository interface.
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, event *models.DocumentEvent) (bool, error) {
	args := m.Called(ctx, event)

	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryRepository) ByDocumentID(ctx context.Context, documentID string) ([]*models.DocumentEvent, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.DocumentEvent), args.Error(1)
}
