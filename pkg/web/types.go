// Package web provides HTTP request and response types for the correspondence API.
package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/services"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/xeipuuv/gojsonschema"
)

// AddressRequest is one sender or recipient in a create request.
type AddressRequest struct {
	UserID         *string `json:"user_id,omitempty"          validate:"omitempty,uuid"`
	OrganizationID *string `json:"organization_id,omitempty"  validate:"omitempty,uuid"`
	ExternalUserID *string `json:"external_user_id,omitempty" validate:"omitempty,uuid"`
	IsResponsible  bool    `json:"is_responsible"`
	Comment        *string `json:"comment,omitempty"          validate:"omitempty,max=255"`
}

// ExternalRegistrationRequest carries the number assigned by the sender's office.
type ExternalRegistrationRequest struct {
	ExternalNumber         string     `json:"external_number"                    validate:"required,max=50"`
	ExternalRegistrationAt *time.Time `json:"external_registration_at,omitempty"`
}

// StepRequest is one caller-defined workflow step.
type StepRequest struct {
	StepType string   `json:"step_type"`
	UserIDs  []string `json:"user_ids"  validate:"dive,uuid"`
}

// CreateDocumentRequest represents the request body for creating a new document.
// The document type comes from the URL slug.
type CreateDocumentRequest struct {
	Content              string                       `json:"content"                         validate:"required"`
	PaperCount           *int                         `json:"paper_count,omitempty"           validate:"omitempty,min=1"`
	AttachmentCount      *string                      `json:"attachment_count,omitempty"      validate:"omitempty,max=100"`
	Deadline             *time.Time                   `json:"deadline,omitempty"`
	ConfidentialityLevel []string                     `json:"confidentiality_level,omitempty"`
	WhiteList            []string                     `json:"white_list,omitempty"            validate:"dive,uuid"`
	AccessExpiresAt      *time.Time                   `json:"access_expires_at,omitempty"`
	ExternalRegistration *ExternalRegistrationRequest `json:"external_registration,omitempty"`
	Sender               *AddressRequest              `json:"sender,omitempty"`
	Recipients           []AddressRequest             `json:"recipients"                      validate:"required,min=1,dive"`
	Workflow             []StepRequest                `json:"workflow,omitempty"              validate:"dive"`
}

// ToService converts the request into the service input for documentType.
func (r CreateDocumentRequest) ToService(documentType models.DocumentType) services.CreateDocumentRequest {
	req := services.CreateDocumentRequest{
		DocumentType:          documentType,
		Content:               r.Content,
		PaperCount:            1,
		AttachmentDescription: r.AttachmentCount,
		Deadline:              r.Deadline,
		WhiteList:             r.WhiteList,
		AccessExpiresAt:       r.AccessExpiresAt,
	}

	if r.PaperCount != nil {
		req.PaperCount = *r.PaperCount
	}

	for _, level := range r.ConfidentialityLevel {
		req.ConfidentialityLevels = append(req.ConfidentialityLevels, models.ConfidentialityLevel(level))
	}

	if r.ExternalRegistration != nil {
		req.ExternalRegistration = &services.ExternalRegistration{
			ExternalNumber:         r.ExternalRegistration.ExternalNumber,
			ExternalRegistrationAt: r.ExternalRegistration.ExternalRegistrationAt,
		}
	}

	if r.Sender != nil {
		sender := r.Sender.toService()
		req.Sender = &sender
	}

	for _, recipient := range r.Recipients {
		req.Recipients = append(req.Recipients, recipient.toService())
	}

	for _, step := range r.Workflow {
		req.Workflow = append(req.Workflow, workflow.StepData{
			StepType: models.StepType(step.StepType),
			UserIDs:  step.UserIDs,
		})
	}

	return req
}

func (a AddressRequest) toService() services.AddressData {
	return services.AddressData{
		UserID:         a.UserID,
		ExternalUserID: a.ExternalUserID,
		OrganizationID: a.OrganizationID,
		IsResponsible:  a.IsResponsible,
		Comment:        a.Comment,
	}
}

// RegistrationResponse is the number issued to a document.
type RegistrationResponse struct {
	DocumentID         string    `json:"document_id"`
	RegistrationNumber string    `json:"registration_number"`
	Prefix             string    `json:"prefix"`
	Number             string    `json:"number"`
	Postfix            string    `json:"postfix"`
	RegistratorID      string    `json:"registrator_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewRegistrationResponse builds the response for a freshly issued number.
func NewRegistrationResponse(documentID string, number *models.RegistrationNumber) RegistrationResponse {
	return RegistrationResponse{
		DocumentID:         documentID,
		RegistrationNumber: number.FullName(),
		Prefix:             number.Prefix,
		Number:             number.Number,
		Postfix:            number.Postfix,
		RegistratorID:      number.RegistratorID,
		CreatedAt:          number.CreatedAt,
	}
}

// createDocumentSchema checks the shape of a create body before it is decoded.
// Value rules such as known step types are left to the services.
const createDocumentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["content", "recipients"],
	"properties": {
		"content": {"type": "string", "minLength": 1},
		"paper_count": {"type": ["integer", "null"], "minimum": 1},
		"attachment_count": {"type": ["string", "null"], "maxLength": 100},
		"deadline": {"type": ["string", "null"], "format": "date-time"},
		"confidentiality_level": {"type": ["array", "null"], "items": {"type": "string"}},
		"white_list": {"type": ["array", "null"], "items": {"type": "string"}},
		"access_expires_at": {"type": ["string", "null"], "format": "date-time"},
		"external_registration": {
			"type": ["object", "null"],
			"required": ["external_number"],
			"properties": {
				"external_number": {"type": "string", "minLength": 1, "maxLength": 50},
				"external_registration_at": {"type": ["string", "null"], "format": "date-time"}
			}
		},
		"sender": {"anyOf": [{"type": "null"}, {"$ref": "#/definitions/address"}]},
		"recipients": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/address"}},
		"workflow": {"type": ["array", "null"], "items": {"$ref": "#/definitions/step"}}
	},
	"definitions": {
		"address": {
			"type": "object",
			"properties": {
				"user_id": {"type": ["string", "null"]},
				"organization_id": {"type": ["string", "null"]},
				"external_user_id": {"type": ["string", "null"]},
				"is_responsible": {"type": "boolean"},
				"comment": {"type": ["string", "null"], "maxLength": 255},
				"party_type": {"enum": ["SENDER", "RECIPIENT"]}
			}
		},
		"step": {
			"type": "object",
			"required": ["step_type", "user_ids"],
			"properties": {
				"step_type": {"type": "string"},
				"user_ids": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

var createDocumentValidator = mustSchema(createDocumentSchema)

func mustSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Errorf("invalid JSON schema: %w", err))
	}

	return compiled
}

// validateJSONSchema checks body against schema and joins every violation.
func validateJSONSchema(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}
