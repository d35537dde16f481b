// Package web provides HTTP handlers and REST API endpoints for document circulation.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	documentService     *services.Document
	workflowService     *services.Workflow
	registrationService *services.Registration
	historyService      *services.History
	validator           *validator.Validate
}

func NewAPIHandlers(
	documentService *services.Document,
	workflowService *services.Workflow,
	registrationService *services.Registration,
	historyService *services.History,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		documentService:     documentService,
		workflowService:     workflowService,
		registrationService: registrationService,
		historyService:      historyService,
		validator:           validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Docflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Docflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// CreateDocument handles POST /correspondence/:slug.
func (h *APIHandlers) CreateDocument(c fiber.Ctx) error {
	documentType, err := models.DocumentTypeFromSlug(c.Params("slug"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := validateJSONSchema(createDocumentValidator, c.Body()); err != nil {
		return badRequest(c, err.Error())
	}

	var req CreateDocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := h.documentService.Create(requestContext(c), CurrentUser(c), req.ToService(documentType))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListDocuments handles GET /correspondence.
func (h *APIHandlers) ListDocuments(c fiber.Ctx) error {
	req, err := parseListDocumentsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.documentService.List(requestContext(c), CurrentUser(c), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// parseListDocumentsRequest parses page, per_page and document_type.
func parseListDocumentsRequest(c fiber.Ctx) (*services.ListDocumentsRequest, error) {
	req := &services.ListDocumentsRequest{}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, err
		}

		req.Page = page
	}

	if perPageStr := c.Query("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil {
			return nil, err
		}

		req.PerPage = perPage
	}

	if typeStr := c.Query("document_type"); typeStr != "" {
		documentType, err := models.ParseDocumentType(typeStr)
		if err != nil {
			return nil, err
		}

		req.DocumentType = &documentType
	}

	return req, nil
}

// GetDocument handles GET /correspondence/:id/detail.
func (h *APIHandlers) GetDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	view, err := h.documentService.Get(requestContext(c), CurrentUser(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

// GetDocumentHistory handles GET /correspondence/:id/history.
func (h *APIHandlers) GetDocumentHistory(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	history, err := h.historyService.List(requestContext(c), CurrentUser(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(history)
}

// RegisterDocument handles POST /correspondence/:id/registration.
func (h *APIHandlers) RegisterDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	number, err := h.registrationService.Register(requestContext(c), CurrentUser(c), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NewRegistrationResponse(id, number))
}

// ActivateWorkflow handles POST /correspondence/:id/workflow/activate.
func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	activated, err := h.workflowService.Activate(requestContext(c), CurrentUser(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(activated)
}
