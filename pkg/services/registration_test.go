package services

import (
	"context"
	"testing"

	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		documentType models.DocumentType
		expected     string
	}{
		{documentType: models.DocumentTypeIncoming, expected: "ВХ"},
		{documentType: models.DocumentTypeOutgoing, expected: "ИСХ-ВСМ"},
		{documentType: models.DocumentTypeAssignment, expected: "ПОР"},
		{documentType: models.DocumentTypeOrder, expected: ""},
		{documentType: models.DocumentTypeNotes, expected: ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.documentType), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, RegistrationPrefix(tt.documentType))
		})
	}
}

func TestRegistrationPostfix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		levels   []models.ConfidentialityLevel
		expected string
	}{
		{name: "no levels"},
		{name: "confidential", levels: []models.ConfidentialityLevel{models.ConfidentialityConfidential}, expected: "-К"},
		{name: "commercial secret", levels: []models.ConfidentialityLevel{models.ConfidentialityCommercialSecret}, expected: "-КТ"},
		{name: "personal data", levels: []models.ConfidentialityLevel{models.ConfidentialityPersonalData}, expected: "-ПД"},
		{name: "official use only", levels: []models.ConfidentialityLevel{models.ConfidentialityOfficialUseOnly}, expected: "-ДСП"},
		{
			name:     "first level wins",
			levels:   []models.ConfidentialityLevel{models.ConfidentialityOfficialUseOnly, models.ConfidentialityConfidential},
			expected: "-ДСП",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, RegistrationPostfix(tt.levels))
		})
	}
}

func TestRegistration_Register(t *testing.T) {
	svc := newTestServices(t)
	svc.directory.On("UserIDsByRole", mock.Anything, registrarRole).Return([]string{"reg-1"}, nil)
	svc.allowPartyLookups()

	creator := user("creator", string(models.ConfidentialityConfidential))
	registrar := user("reg-1", registrarRole)

	first, err := svc.documents.Create(context.Background(), creator, incomingRequest())
	require.NoError(t, err)

	second, err := svc.documents.Create(context.Background(), creator, incomingRequest())
	require.NoError(t, err)

	number, err := svc.registration.Register(context.Background(), registrar, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "ВХ-000001/-К", number.FullName())
	assert.Equal(t, "reg-1", number.RegistratorID)

	number, err = svc.registration.Register(context.Background(), registrar, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "ВХ-000002/-К", number.FullName())

	view, err := svc.documents.Get(context.Background(), creator, second.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Ptr("ВХ-000002/-К"), view.RegistrationNumber)

	assert.Contains(t, publishedTypes(svc.bus), events.DocumentRegisteredEvent)
}

func TestRegistration_RegisterWithoutRegistrationRow(t *testing.T) {
	svc := newTestServices(t)

	document := testutil.CreateTestDocument(testutil.WithDocumentType(models.DocumentTypeOutgoing))

	uow, err := svc.store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Commit())

	number, err := svc.registration.Register(context.Background(), user("reg-1", registrarRole), document.ID)
	require.NoError(t, err)
	assert.Equal(t, "ИСХ-ВСМ-000001/", number.FullName())
}

func TestRegistration_RegisterFailures(t *testing.T) {
	svc := newTestServices(t)

	document := testutil.CreateTestDocument()

	uow, err := svc.store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Commit())

	tests := []struct {
		name       string
		user       string
		roles      []string
		documentID string
		check      func(error) bool
	}{
		{
			name:       "registrar role missing",
			user:       "creator",
			documentID: document.ID,
			check:      IsPermissionDenied,
		},
		{
			name:       "unknown document",
			user:       "reg-1",
			roles:      []string{registrarRole},
			documentID: "missing",
			check:      IsNotFoundError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.registration.Register(context.Background(), user(tt.user, tt.roles...), tt.documentID)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error class: %v", err)
		})
	}

	svc.bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
