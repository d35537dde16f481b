package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var registrationPrefixes = map[models.DocumentType]string{
	models.DocumentTypeIncoming:   "ВХ",
	models.DocumentTypeOutgoing:   "ИСХ-ВСМ",
	models.DocumentTypeAssignment: "ПОР",
}

var registrationPostfixes = map[models.ConfidentialityLevel]string{
	models.ConfidentialityConfidential:     "-К",
	models.ConfidentialityCommercialSecret: "-КТ",
	models.ConfidentialityPersonalData:     "-ПД",
	models.ConfidentialityOfficialUseOnly:  "-ДСП",
}

// RegistrationPrefix returns the number prefix for a document type, empty for
// types without one.
func RegistrationPrefix(documentType models.DocumentType) string {
	return registrationPrefixes[documentType]
}

// RegistrationPostfix returns the postfix of the first level that has one.
func RegistrationPostfix(levels []models.ConfidentialityLevel) string {
	for _, level := range levels {
		if postfix, ok := registrationPostfixes[level]; ok {
			return postfix
		}
	}

	return ""
}

// Registration issues internal registration numbers.
type Registration struct {
	persistence   persistence.Persistence
	publisher     eventbus.EventPublisher
	registrarRole string
	tracer        trace.Tracer
	logger        *slog.Logger
	now           func() time.Time
}

// NewRegistration creates a new registration service.
func NewRegistration(
	persistence persistence.Persistence,
	publisher eventbus.EventPublisher,
	registrarRole string,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Registration {
	return &Registration{
		persistence:   persistence,
		publisher:     publisher,
		registrarRole: registrarRole,
		tracer:        tracer,
		logger:        logger.With("module", "registration_service"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Register issues the next number for the document's prefix and links it to
// the document. Registering again issues a fresh number.
func (r *Registration) Register(ctx context.Context, user *directory.User, documentID string) (_ *models.RegistrationNumber, err error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "services.Registration.Register",
		attribute.String(otelhelper.DocumentIDKey, documentID),
		attribute.String(otelhelper.ViewerIDKey, user.ID),
	)
	defer span.End()

	defer func() {
		if err != nil {
			otelhelper.SetError(span, err)
		}
	}()

	if !user.HasRole(r.registrarRole) {
		return nil, NewPermissionError("RegisterDocument", "registering documents requires role "+r.registrarRole)
	}

	uow, err := r.persistence.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rollbackErr := uow.Rollback(); rollbackErr != nil {
			r.logger.ErrorContext(ctx, "Failed to roll back registration", "document_id", documentID, "error", rollbackErr)
		}
	}()

	document, err := uow.Documents().ByID(ctx, documentID)
	if err != nil {
		if persistence.IsDocumentNotFound(err) {
			return nil, NewNotFoundError("RegisterDocument", "document not found: "+documentID, err)
		}

		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if err = r.ensureRegistration(ctx, uow, documentID); err != nil {
		return nil, err
	}

	prefix := RegistrationPrefix(document.DocumentType)

	highest, err := uow.Registrations().MaxNumber(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to read highest number for prefix %q: %w", prefix, err)
	}

	number := &models.RegistrationNumber{
		ID:            uuid.NewString(),
		Prefix:        prefix,
		Number:        fmt.Sprintf("%06d", highest+1),
		Postfix:       RegistrationPostfix(document.Levels()),
		RegistratorID: user.ID,
		CreatedAt:     r.now(),
	}

	if err = uow.Registrations().AssignNumber(ctx, documentID, number); err != nil {
		return nil, fmt.Errorf("failed to assign registration number: %w", err)
	}

	if err = uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration of document %s: %w", documentID, err)
	}

	r.logger.InfoContext(ctx, "Registered document",
		"document_id", documentID,
		"registration_number", number.FullName(),
		"registrator_id", user.ID,
	)

	publish(ctx, r.publisher, r.logger, documentID, events.NewDocumentRegistered(documentID, number))

	return number, nil
}

// ensureRegistration creates the registration row of documents stored without one.
func (r *Registration) ensureRegistration(ctx context.Context, uow persistence.UnitOfWork, documentID string) error {
	_, err := uow.Registrations().ByDocumentID(ctx, documentID)
	if err == nil {
		return nil
	}

	if !persistence.IsRegistrationNotFound(err) {
		return fmt.Errorf("failed to load registration: %w", err)
	}

	err = uow.Registrations().Initialize(ctx, &models.DocumentRegistration{
		ID:         uuid.NewString(),
		DocumentID: documentID,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize registration: %w", err)
	}

	return nil
}
