package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 50
)

// AddressData identifies one sender or recipient of a new document.
type AddressData struct {
	UserID         *string `json:"user_id,omitempty"`
	ExternalUserID *string `json:"external_user_id,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	IsResponsible  bool    `json:"is_responsible"`
	Comment        *string `json:"comment,omitempty" validate:"omitempty,max=255"`
}

func (a AddressData) hasIdentity() bool {
	return a.UserID != nil || a.ExternalUserID != nil || a.OrganizationID != nil
}

// ExternalRegistration is the number a document already carries from its sender.
type ExternalRegistration struct {
	ExternalNumber         string     `json:"external_number" validate:"required,max=50"`
	ExternalRegistrationAt *time.Time `json:"external_registration_at,omitempty"`
}

// CreateDocumentRequest is everything a creator submits for a new document.
type CreateDocumentRequest struct {
	DocumentType          models.DocumentType           `json:"document_type" validate:"required"`
	Content               string                        `json:"content" validate:"required"`
	PaperCount            int                           `json:"paper_count" validate:"min=1"`
	AttachmentDescription *string                       `json:"attachment_count,omitempty" validate:"omitempty,max=100"`
	Deadline              *time.Time                    `json:"deadline,omitempty"`
	ConfidentialityLevels []models.ConfidentialityLevel `json:"confidentiality_level,omitempty"`
	WhiteList             []string                      `json:"white_list,omitempty" validate:"dive,required"`
	AccessExpiresAt       *time.Time                    `json:"access_expires_at,omitempty"`
	ExternalRegistration  *ExternalRegistration         `json:"external_registration,omitempty"`
	Sender                *AddressData                  `json:"sender,omitempty"`
	Recipients            []AddressData                 `json:"recipients" validate:"required,min=1,dive"`
	Workflow              []workflow.StepData           `json:"workflow,omitempty"`
}

// ListDocumentsRequest selects one page of documents, optionally of one type.
type ListDocumentsRequest struct {
	Page         int
	PerPage      int
	DocumentType *models.DocumentType
}

// ListDocumentsResponse contains one page of views and the paging totals.
type ListDocumentsResponse struct {
	Data        []*DocumentDetails `json:"data"`
	Total       int                `json:"total"`
	LastPage    int                `json:"lastPage"`
	PerPage     int                `json:"perPage"`
	CurrentPage int                `json:"currentPage"`
}

// Document creates documents and serves their viewer-dependent views.
type Document struct {
	persistence persistence.Persistence
	directory   directory.Directory
	builder     *workflow.Builder
	activator   *workflow.Activator
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time

	systemNumber func(models.DocumentType, time.Time) string
}

// NewDocument creates a new document service.
func NewDocument(
	persistence persistence.Persistence,
	dir directory.Directory,
	builder *workflow.Builder,
	activator *workflow.Activator,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Document {
	return &Document{
		persistence: persistence,
		directory:   dir,
		builder:     builder,
		activator:   activator,
		publisher:   publisher,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tracer:      tracer,
		logger:      logger.With("module", "document_service"),
		now:         func() time.Time { return time.Now().UTC() },

		systemNumber: systemNumber,
	}
}

// Create stores a new document with its addresses, confidentiality tags,
// whitelist grants and registration row, then builds and activates its
// workflow. Everything commits together.
func (d *Document) Create(ctx context.Context, creator *directory.User, req CreateDocumentRequest) (*models.DocumentView, error) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "services.Document.Create",
		attribute.String(otelhelper.DocumentTypeKey, string(req.DocumentType)),
		attribute.String(otelhelper.ViewerIDKey, creator.ID),
	)
	defer span.End()

	if err := d.validateCreate(req); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if err := d.checkLevels(ctx, creator, req); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	document := d.newDocument(creator, req)
	span.SetAttributes(attribute.String(otelhelper.DocumentIDKey, document.ID))

	activated, err := d.storeWithFreeNumber(ctx, document, req)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, activated.ID))

	d.publish(ctx, document.ID, events.NewDocumentCreated(document, activated.ID))
	d.publish(ctx, document.ID, events.NewWorkflowActivated(activated, creator.ID))

	d.logger.InfoContext(ctx, "Created document",
		"document_id", document.ID,
		"document_type", document.DocumentType,
		"system_number", document.SystemNumber,
		"creator_id", creator.ID,
		"workflow_id", activated.ID,
	)

	view, err := d.persistence.Documents().View(ctx, document.ID, creator.ID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load created document: %w", err)
	}

	return view, nil
}

// maxSystemNumberAttempts bounds how many system numbers Create draws for one document.
const maxSystemNumberAttempts = 5

// storeWithFreeNumber runs store, drawing a new system number each time the
// current one is already taken.
func (d *Document) storeWithFreeNumber(ctx context.Context, document *models.Document, req CreateDocumentRequest) (*models.Workflow, error) {
	for attempt := 1; ; attempt++ {
		activated, err := d.store(ctx, document, req)
		if err == nil || !persistence.IsDuplicateSystemNumber(err) {
			return activated, err
		}

		if attempt == maxSystemNumberAttempts {
			return nil, NewConflictError("CreateDocument",
				fmt.Sprintf("no free system number after %d attempts", attempt), err)
		}

		d.logger.WarnContext(ctx, "System number taken, drawing another",
			"document_id", document.ID,
			"system_number", document.SystemNumber,
			"attempt", attempt,
		)

		document.SystemNumber = d.systemNumber(document.DocumentType, document.CreatedAt)
	}
}

// store runs the writes of Create in one unit of work.
func (d *Document) store(ctx context.Context, document *models.Document, req CreateDocumentRequest) (_ *models.Workflow, err error) {
	uow, err := d.persistence.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rollbackErr := uow.Rollback(); rollbackErr != nil {
			d.logger.ErrorContext(ctx, "Failed to roll back document creation", "document_id", document.ID, "error", rollbackErr)
		}
	}()

	if err = uow.Documents().Add(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to add document: %w", err)
	}

	registration := &models.DocumentRegistration{
		ID:         uuid.NewString(),
		DocumentID: document.ID,
	}
	if req.ExternalRegistration != nil {
		registration.ExternalRegistrationNumber = &req.ExternalRegistration.ExternalNumber
		registration.ExternalRegistrationAt = req.ExternalRegistration.ExternalRegistrationAt
	}

	if err = uow.Registrations().Initialize(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to initialize registration: %w", err)
	}

	route, err := d.builder.Build(ctx, workflow.BuildRequest{
		DocumentID:   document.ID,
		DocumentType: document.DocumentType,
		Recipients:   document.Recipients(),
		Steps:        req.Workflow,
	})
	if err != nil {
		return nil, err
	}

	if err = uow.Workflows().Add(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to add workflow: %w", err)
	}

	activated, err := d.activator.Activate(ctx, uow.Workflows(), document.ID)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit document %s: %w", document.ID, err)
	}

	return activated, nil
}

func (d *Document) validateCreate(req CreateDocumentRequest) error {
	const op = "CreateDocument"

	if !req.DocumentType.IsValid() {
		return NewValidationError(op, "INVALID_DOCUMENT_TYPE", fmt.Sprintf("unknown document type %q", req.DocumentType), ErrInvalidDocumentType)
	}

	if err := d.validate.Struct(req); err != nil {
		return NewValidationError(op, "VALIDATION_FAILED", err.Error(), errors.Join(ErrInvalidRequest, err))
	}

	for _, level := range req.ConfidentialityLevels {
		if !level.IsValid() {
			return NewValidationError(op, "INVALID_CONFIDENTIALITY_LEVEL", fmt.Sprintf("unknown confidentiality level %q", level), ErrInvalidConfidentialityLevel)
		}
	}

	if req.Sender != nil && !req.Sender.hasIdentity() {
		return NewValidationError(op, "SENDER_IDENTITY_REQUIRED", "sender must have a user, external user or organization", ErrRecipientIdentityRequired)
	}

	for i, recipient := range req.Recipients {
		if !recipient.hasIdentity() {
			return NewValidationError(op, "RECIPIENT_IDENTITY_REQUIRED", fmt.Sprintf("recipient %d has no identity", i), ErrRecipientIdentityRequired)
		}

		if req.DocumentType == models.DocumentTypeAssignment && recipient.UserID == nil {
			return NewValidationError(op, "RECIPIENT_USER_REQUIRED", fmt.Sprintf("recipient %d of an assignment has no user", i), ErrRecipientUserRequired)
		}
	}

	// incoming and assignment routes come from the recipients
	if req.DocumentType == models.DocumentTypeIncoming || req.DocumentType == models.DocumentTypeAssignment {
		return nil
	}

	for i, step := range req.Workflow {
		if !step.StepType.IsValid() {
			return NewValidationError(op, "INVALID_STEP_TYPE", fmt.Sprintf("step %d has unknown type %q", i, step.StepType), ErrInvalidStepType)
		}

		if len(step.UserIDs) == 0 {
			return NewValidationError(op, "STEP_USERS_REQUIRED", fmt.Sprintf("step %d lists no users", i), ErrStepUsersRequired)
		}
	}

	return nil
}

// checkLevels requires the creator to hold every requested level and each
// whitelisted user to hold at least one of them.
func (d *Document) checkLevels(ctx context.Context, creator *directory.User, req CreateDocumentRequest) error {
	const op = "CreateDocument"

	roles := make([]string, 0, len(req.ConfidentialityLevels))

	for _, level := range req.ConfidentialityLevels {
		if !creator.HasRole(string(level)) {
			return NewPermissionError(op, fmt.Sprintf("creator does not hold confidentiality level %s", level))
		}

		roles = append(roles, string(level))
	}

	if len(req.WhiteList) == 0 {
		return nil
	}

	users, err := d.directory.Users(ctx, req.WhiteList)
	if err != nil {
		return fmt.Errorf("failed to resolve whitelisted users: %w", err)
	}

	for _, userID := range req.WhiteList {
		user, ok := users[userID]
		if !ok {
			return NewNotFoundError(op, fmt.Sprintf("whitelisted user %s not found", userID), ErrUserNotFound)
		}

		if !user.HasAnyRole(roles...) {
			return NewPermissionError(op, fmt.Sprintf("whitelisted user %s holds none of the document's confidentiality levels", userID))
		}
	}

	return nil
}

func (d *Document) newDocument(creator *directory.User, req CreateDocumentRequest) *models.Document {
	now := d.now()

	document := &models.Document{
		ID:                    uuid.NewString(),
		DocumentType:          req.DocumentType,
		SystemNumber:          d.systemNumber(req.DocumentType, now),
		Content:               req.Content,
		PaperCount:            req.PaperCount,
		AttachmentDescription: req.AttachmentDescription,
		Deadline:              req.Deadline,
		CreatorID:             creator.ID,
		CreatedAt:             now,
	}

	for _, recipient := range req.Recipients {
		document.Addresses = append(document.Addresses, newAddress(document.ID, models.PartyTypeRecipient, recipient))
	}

	creatorID := creator.ID

	sender := AddressData{UserID: &creatorID}
	if req.Sender != nil {
		sender = *req.Sender
	}

	document.Addresses = append(document.Addresses, newAddress(document.ID, models.PartyTypeSender, sender))

	for _, level := range req.ConfidentialityLevels {
		document.Confidentials = append(document.Confidentials, &models.DocumentConfidential{
			ID:         uuid.NewString(),
			DocumentID: document.ID,
			Level:      level,
		})
	}

	for _, userID := range req.WhiteList {
		document.Accesses = append(document.Accesses, &models.DocumentAccess{
			ID:         uuid.NewString(),
			DocumentID: document.ID,
			UserID:     userID,
			AccessType: models.AccessTypeReadOnly,
			ExpiresAt:  req.AccessExpiresAt,
		})
	}

	return document
}

func newAddress(documentID string, partyType models.PartyType, data AddressData) *models.DocumentAddress {
	return &models.DocumentAddress{
		ID:             uuid.NewString(),
		DocumentID:     documentID,
		PartyType:      partyType,
		UserID:         data.UserID,
		ExternalUserID: data.ExternalUserID,
		OrganizationID: data.OrganizationID,
		IsResponsible:  data.IsResponsible,
		Comment:        data.Comment,
	}
}

// systemNumber renders "<TYP>-YYYY/MM/DD-<8 hex>", e.g. "INC-2026/10/15-9F3A01BC".
func systemNumber(documentType models.DocumentType, at time.Time) string {
	random := make([]byte, 4)
	_, _ = rand.Read(random)

	return fmt.Sprintf("%s-%s-%s",
		models.SystemNumberPrefix(documentType),
		at.Format("2006/01/02"),
		strings.ToUpper(hex.EncodeToString(random)),
	)
}

// Get returns the document as seen by viewer.
func (d *Document) Get(ctx context.Context, viewer *directory.User, id string) (*DocumentDetails, error) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "services.Document.Get",
		attribute.String(otelhelper.DocumentIDKey, id),
		attribute.String(otelhelper.ViewerIDKey, viewer.ID),
	)
	defer span.End()

	view, err := d.persistence.Documents().View(ctx, id, viewer.ID)
	if err != nil {
		otelhelper.SetError(span, err)

		if persistence.IsDocumentNotFound(err) {
			return nil, NewNotFoundError("GetDocument", "document not found: "+id, err)
		}

		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	details, err := d.resolveParties(ctx, []*models.DocumentView{view})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return details[0], nil
}

// List returns one page of documents, newest first, as seen by viewer.
func (d *Document) List(ctx context.Context, viewer *directory.User, req ListDocumentsRequest) (*ListDocumentsResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "services.Document.List",
		attribute.String(otelhelper.ViewerIDKey, viewer.ID),
	)
	defer span.End()

	if err := normalizeListRequest(&req); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	views, total, err := d.persistence.Documents().List(ctx, viewer.ID, persistence.ListDocumentsOptions{
		Page:         req.Page,
		PerPage:      req.PerPage,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	details, err := d.resolveParties(ctx, views)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return &ListDocumentsResponse{
		Data:        details,
		Total:       total,
		LastPage:    lastPage(total, req.PerPage),
		PerPage:     req.PerPage,
		CurrentPage: req.Page,
	}, nil
}

// normalizeListRequest fills defaults and caps per_page at MaxPerPage.
func normalizeListRequest(req *ListDocumentsRequest) error {
	const op = "ListDocuments"

	if req.Page < 0 || req.PerPage < 0 {
		return NewValidationError(op, "INVALID_PAGINATION", "page and per_page must be positive", ErrInvalidRequest)
	}

	if req.DocumentType != nil && !req.DocumentType.IsValid() {
		return NewValidationError(op, "INVALID_DOCUMENT_TYPE", fmt.Sprintf("unknown document type %q", *req.DocumentType), ErrInvalidDocumentType)
	}

	if req.Page == 0 {
		req.Page = DefaultPage
	}

	if req.PerPage == 0 {
		req.PerPage = DefaultPerPage
	}

	req.PerPage = min(req.PerPage, MaxPerPage)

	return nil
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}

	return (total + perPage - 1) / perPage
}

func (d *Document) publish(ctx context.Context, documentID string, event eventbus.Event) {
	publish(ctx, d.publisher, d.logger, documentID, event)
}

// publish sends event keyed by document. The write it announces is already
// committed, so a failure is only logged.
func publish(ctx context.Context, publisher eventbus.EventPublisher, logger *slog.Logger, documentID string, event eventbus.Event) {
	if publisher == nil {
		return
	}

	if err := publisher.Publish(ctx, documentID, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			"document_id", documentID,
			"event_type", event.GetType(),
			"error", err,
		)
	}
}
