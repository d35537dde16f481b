package models

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseEnums(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parse func(string) error
		good  string
	}{
		{"status", func(v string) error { _, err := ParseStatus(v); return err }, "SENDED"},
		{"step type", func(v string) error { _, err := ParseStepType(v); return err }, "REGISTRATION"},
		{"document type", func(v string) error { _, err := ParseDocumentType(v); return err }, "ASSIGNMENT_INTERNAL"},
		{"party type", func(v string) error { _, err := ParsePartyType(v); return err }, "RECIPIENT"},
		{"confidentiality", func(v string) error { _, err := ParseConfidentialityLevel(v); return err }, string(ConfidentialityPersonalData)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, tt.parse(tt.good))

			err := tt.parse("NOPE")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownValue)

			var enumErr *EnumError
			require.True(t, errors.As(err, &enumErr))
			assert.Equal(t, "NOPE", enumErr.Value)
		})
	}
}

func TestDocumentTypeFromSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug     string
		expected DocumentType
		wantErr  bool
	}{
		{"incoming-correspondence", DocumentTypeIncoming, false},
		{"outgoing-correspondence", DocumentTypeOutgoing, false},
		{"assignment", DocumentTypeAssignment, false},
		{"order", DocumentTypeOrder, false},
		{"protocol", DocumentTypeProtocol, false},
		{"directive", DocumentTypeDirective, false},
		{"notes", "", true},
		{"INCOMING", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			t.Parallel()

			got, err := DocumentTypeFromSlug(tt.slug)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownValue)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWorkflow_FirstStep(t *testing.T) {
	t.Parallel()

	t.Run("empty workflow", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, (&Workflow{}).FirstStep())
	})

	t.Run("lowest order wins regardless of position", func(t *testing.T) {
		t.Parallel()

		workflow := &Workflow{Steps: []*WorkflowStep{
			{ID: "c", Order: 5},
			{ID: "a", Order: 2},
			{ID: "b", Order: 3},
		}}

		first := workflow.FirstStep()
		require.NotNil(t, first)
		assert.Equal(t, "a", first.ID)
	})
}

func TestWorkflow_SortSteps(t *testing.T) {
	t.Parallel()

	workflow := &Workflow{Steps: []*WorkflowStep{
		{ID: "third", Order: 3},
		{ID: "first", Order: 1},
		{ID: "second", Order: 2},
	}}

	workflow.SortSteps()

	ids := make([]string, 0, len(workflow.Steps))
	for _, step := range workflow.Steps {
		ids = append(ids, step.ID)
	}

	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

func TestWorkflowStep_HasParticipantAndReached(t *testing.T) {
	t.Parallel()

	finished := time.Now()
	step := &WorkflowStep{Participants: []*WorkflowParticipant{{UserID: "u1"}, {UserID: "u2"}}}

	assert.True(t, step.HasParticipant("u2"))
	assert.False(t, step.HasParticipant("u3"))
	assert.False(t, step.IsReached())

	step.FinishedAt = &finished
	assert.True(t, step.IsReached())

	step.FinishedAt = nil
	step.IsActive = true
	assert.True(t, step.IsReached())
}

func TestDocument_RecipientsAndLevels(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Addresses: []*DocumentAddress{
			{ID: "s", PartyType: PartyTypeSender},
			{ID: "r1", PartyType: PartyTypeRecipient},
			{ID: "r2", PartyType: PartyTypeRecipient},
		},
		Confidentials: []*DocumentConfidential{{Level: ConfidentialityConfidential}},
	}

	recipients := doc.Recipients()
	require.Len(t, recipients, 2)
	assert.Equal(t, "r1", recipients[0].ID)
	assert.Equal(t, "r2", recipients[1].ID)
	assert.Equal(t, []ConfidentialityLevel{ConfidentialityConfidential}, doc.Levels())
}

func TestDocument_Validation(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	valid := &Document{
		ID:           "doc-1",
		DocumentType: DocumentTypeOrder,
		Content:      "text",
		PaperCount:   1,
		CreatorID:    "user-1",
		Addresses: []*DocumentAddress{
			{PartyType: PartyTypeSender, UserID: strPtr("user-1")},
		},
	}
	require.NoError(t, validate.Struct(valid))

	invalid := *valid
	invalid.PaperCount = 0
	invalid.Addresses = []*DocumentAddress{{PartyType: "OBSERVER"}}

	err := validate.Struct(&invalid)
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
	}

	assert.ElementsMatch(t, []string{"PaperCount", "PartyType"}, fields)
}

func TestDocumentAddress_HasIdentity(t *testing.T) {
	t.Parallel()

	assert.False(t, (&DocumentAddress{}).HasIdentity())
	assert.True(t, (&DocumentAddress{OrganizationID: strPtr("org")}).HasIdentity())
	assert.True(t, (&DocumentAddress{ExternalUserID: strPtr("ext")}).HasIdentity())
}

func TestRegistrationNumber_FullName(t *testing.T) {
	t.Parallel()

	number := &RegistrationNumber{Prefix: "ВХ", Number: "000042", Postfix: "-К"}
	assert.Equal(t, "ВХ-000042/-К", number.FullName())

	assert.False(t, (*DocumentRegistration)(nil).IsRegistered())
	assert.True(t, (&DocumentRegistration{Number: number}).IsRegistered())
}

func TestSystemNumberPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INC", SystemNumberPrefix(DocumentTypeIncoming))
	assert.Equal(t, "ASS", SystemNumberPrefix(DocumentTypeAssignmentInternal))
	assert.Equal(t, "ORD", SystemNumberPrefix(DocumentTypeOrder))
}
