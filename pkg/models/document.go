package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DocumentType is the kind of document being circulated.
type DocumentType string

const (
	DocumentTypeIncoming           DocumentType = "INCOMING"
	DocumentTypeOutgoing           DocumentType = "OUTGOING"
	DocumentTypeAssignment         DocumentType = "ASSIGNMENT"
	DocumentTypeAssignmentInternal DocumentType = "ASSIGNMENT_INTERNAL"
	DocumentTypeProtocol           DocumentType = "PROTOCOL"
	DocumentTypeOrder              DocumentType = "ORDER"
	DocumentTypeDirective          DocumentType = "DIRECTIVE"
	DocumentTypeNotes              DocumentType = "NOTES"
)

var documentTypes = []DocumentType{
	DocumentTypeIncoming,
	DocumentTypeOutgoing,
	DocumentTypeAssignment,
	DocumentTypeAssignmentInternal,
	DocumentTypeProtocol,
	DocumentTypeOrder,
	DocumentTypeDirective,
	DocumentTypeNotes,
}

// documentSlugs maps the URL slugs accepted by the API to document types.
var documentSlugs = map[string]DocumentType{
	"incoming-correspondence": DocumentTypeIncoming,
	"outgoing-correspondence": DocumentTypeOutgoing,
	"assignment":              DocumentTypeAssignment,
	"order":                   DocumentTypeOrder,
	"protocol":                DocumentTypeProtocol,
	"directive":               DocumentTypeDirective,
}

func (t DocumentType) IsValid() bool {
	return slices.Contains(documentTypes, t)
}

// ParseDocumentType converts a raw value into a DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	documentType := DocumentType(value)
	if !documentType.IsValid() {
		return "", &EnumError{Kind: "document type", Value: value}
	}

	return documentType, nil
}

// DocumentTypeFromSlug resolves an API slug such as "incoming-correspondence".
func DocumentTypeFromSlug(slug string) (DocumentType, error) {
	documentType, ok := documentSlugs[slug]
	if !ok {
		return "", &EnumError{Kind: "document slug", Value: slug}
	}

	return documentType, nil
}

// PartyType tells senders and recipients apart.
type PartyType string

const (
	PartyTypeSender    PartyType = "SENDER"
	PartyTypeRecipient PartyType = "RECIPIENT"
)

func (p PartyType) IsValid() bool {
	return p == PartyTypeSender || p == PartyTypeRecipient
}

// ParsePartyType converts a raw value into a PartyType.
func ParsePartyType(value string) (PartyType, error) {
	partyType := PartyType(value)
	if !partyType.IsValid() {
		return "", &EnumError{Kind: "party type", Value: value}
	}

	return partyType, nil
}

// ConfidentialityLevel is a privacy tag. Its value doubles as the directory
// role a user must hold to work with documents carrying it.
type ConfidentialityLevel string

const (
	ConfidentialityOfficialUseOnly  ConfidentialityLevel = "ROLE_VSM_DOCFLOW_PRIVACY_LEVEL_OFFICIAL_USE_ONLY"
	ConfidentialityConfidential     ConfidentialityLevel = "ROLE_VSM_DOCFLOW_PRIVACY_LEVEL_CONFIDENTIAL"
	ConfidentialityCommercialSecret ConfidentialityLevel = "ROLE_VSM_DOCFLOW_PRIVACY_LEVEL_COMMERCIAL_SECRET"
	ConfidentialityPersonalData     ConfidentialityLevel = "ROLE_VSM_DOCFLOW_PRIVACY_LEVEL_PERSONAL_DATA"
)

var confidentialityLevels = []ConfidentialityLevel{
	ConfidentialityOfficialUseOnly,
	ConfidentialityConfidential,
	ConfidentialityCommercialSecret,
	ConfidentialityPersonalData,
}

func (l ConfidentialityLevel) IsValid() bool {
	return slices.Contains(confidentialityLevels, l)
}

// ParseConfidentialityLevel converts a raw value into a ConfidentialityLevel.
func ParseConfidentialityLevel(value string) (ConfidentialityLevel, error) {
	level := ConfidentialityLevel(value)
	if !level.IsValid() {
		return "", &EnumError{Kind: "confidentiality level", Value: value}
	}

	return level, nil
}

// AccessType is the kind of grant a whitelisted user receives.
type AccessType string

const AccessTypeReadOnly AccessType = "READONLY"

// Document is the circulated record. The workflow hangs off it by DocumentID.
type Document struct {
	ID                    string                  `json:"id" validate:"required"`
	DocumentType          DocumentType            `json:"document_type" validate:"required"`
	SystemNumber          string                  `json:"system_number"`
	Content               string                  `json:"content" validate:"required"`
	PaperCount            int                     `json:"paper_count" validate:"min=1"`
	AttachmentDescription *string                 `json:"attachment_description,omitempty" validate:"omitempty,max=100"`
	Deadline              *time.Time              `json:"deadline,omitempty"`
	CreatorID             string                  `json:"creator_id" validate:"required"`
	CreatedAt             time.Time               `json:"created_at"`
	Addresses             []*DocumentAddress      `json:"addresses" validate:"dive"`
	Confidentials         []*DocumentConfidential `json:"confidentials"`
	Accesses              []*DocumentAccess       `json:"accesses"`
}

// Recipients returns the recipient addresses in submission order.
func (d *Document) Recipients() []*DocumentAddress {
	var recipients []*DocumentAddress

	for _, address := range d.Addresses {
		if address.PartyType == PartyTypeRecipient {
			recipients = append(recipients, address)
		}
	}

	return recipients
}

// Levels returns the confidentiality levels attached to the document.
func (d *Document) Levels() []ConfidentialityLevel {
	levels := make([]ConfidentialityLevel, 0, len(d.Confidentials))
	for _, confidential := range d.Confidentials {
		levels = append(levels, confidential.Level)
	}

	return levels
}

// DocumentAddress is one sender or recipient. At least one of UserID,
// ExternalUserID and OrganizationID identifies the party.
type DocumentAddress struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	PartyType      PartyType `json:"party_type" validate:"required,oneof=SENDER RECIPIENT"`
	UserID         *string   `json:"user_id,omitempty"`
	ExternalUserID *string   `json:"external_user_id,omitempty"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	IsResponsible  bool      `json:"is_responsible"`
	Comment        *string   `json:"comment,omitempty" validate:"omitempty,max=255"`
}

// HasIdentity reports whether any identity column is set.
func (a *DocumentAddress) HasIdentity() bool {
	return a.UserID != nil || a.ExternalUserID != nil || a.OrganizationID != nil
}

// DocumentConfidential tags a document with one confidentiality level.
type DocumentConfidential struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"document_id"`
	Level      ConfidentialityLevel `json:"level"`
}

// DocumentAccess is a read-only whitelist grant, optionally expiring.
type DocumentAccess struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	UserID     string     `json:"user_id"`
	AccessType AccessType `json:"access_type"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// RegistrationNumber is an issued registration number.
type RegistrationNumber struct {
	ID            string    `json:"id"`
	Prefix        string    `json:"prefix"`
	Number        string    `json:"number"`
	Postfix       string    `json:"postfix"`
	RegistratorID string    `json:"registrator_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// FullName renders the number as printed on the document.
func (n *RegistrationNumber) FullName() string {
	return fmt.Sprintf("%s-%s/%s", n.Prefix, n.Number, n.Postfix)
}

// DocumentRegistration links a document to its internal and external numbers.
type DocumentRegistration struct {
	ID                         string              `json:"id"`
	DocumentID                 string              `json:"document_id"`
	Number                     *RegistrationNumber `json:"number,omitempty"`
	ExternalRegistrationNumber *string             `json:"external_registration_number,omitempty"`
	ExternalRegistrationAt     *time.Time          `json:"external_registration_at,omitempty"`
}

// IsRegistered reports whether an internal number has been issued.
func (r *DocumentRegistration) IsRegistered() bool {
	return r != nil && r.Number != nil
}

// DocumentView is the read model returned to a viewer. Status is nil when the
// viewer has no qualifying step.
type DocumentView struct {
	Document
	Status             *Status `json:"status"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
}

// SystemNumberPrefix is the first three letters of the document type.
func SystemNumberPrefix(documentType DocumentType) string {
	name := strings.ToUpper(string(documentType))
	if len(name) > 3 {
		return name[:3]
	}

	return name
}
