package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
)

const documentColumns = `
			d.id
		  , d.document_type
		  , d.system_number
		  , d.content
		  , d.paper_count
		  , d.attachment_description
		  , d.deadline
		  , d.creator_id
		  , d.created_at`

// DocumentRepository writes documents inside a unit of work and serves
// viewer-specific reads.
type DocumentRepository struct {
	db              querier
	logger          *slog.Logger
	rules           StatusRules
	uniqueViolation UniqueViolation
}

func newDocumentRepository(db querier, logger *slog.Logger, rules StatusRules, uniqueViolation UniqueViolation) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger, rules: rules, uniqueViolation: uniqueViolation}
}

// Add inserts the document row with its addresses, confidentials and accesses.
func (r *DocumentRepository) Add(ctx context.Context, document *models.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, document_type, system_number, content, paper_count, attachment_description, deadline, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		document.ID,
		string(document.DocumentType),
		document.SystemNumber,
		document.Content,
		document.PaperCount,
		stringOrNil(document.AttachmentDescription),
		utcOrNil(document.Deadline),
		document.CreatorID,
		document.CreatedAt.UTC(),
	)
	if err != nil {
		// system_number is the only unique column besides the generated id
		if r.uniqueViolation != nil && r.uniqueViolation(err) {
			err = fmt.Errorf("%w: %s", persistence.ErrDuplicateSystemNumber, document.SystemNumber)
		}

		return persistence.NewDocumentError("Add", document.ID, err)
	}

	for position, address := range document.Addresses {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO document_addresses
				(id, document_id, party_type, user_id, external_user_id, organization_id, is_responsible, comment, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			address.ID,
			document.ID,
			string(address.PartyType),
			stringOrNil(address.UserID),
			stringOrNil(address.ExternalUserID),
			stringOrNil(address.OrganizationID),
			address.IsResponsible,
			stringOrNil(address.Comment),
			position,
		)
		if err != nil {
			return persistence.NewDocumentError("Add", document.ID, fmt.Errorf("failed to insert address: %w", err))
		}
	}

	for _, confidential := range document.Confidentials {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO document_confidentials (id, document_id, level)
			VALUES ($1, $2, $3)
		`, confidential.ID, document.ID, string(confidential.Level))
		if err != nil {
			return persistence.NewDocumentError("Add", document.ID, fmt.Errorf("failed to insert confidential: %w", err))
		}
	}

	for _, access := range document.Accesses {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO document_accesses (id, document_id, user_id, access_type, expires_at)
			VALUES ($1, $2, $3, $4, $5)
		`, access.ID, document.ID, access.UserID, string(access.AccessType), utcOrNil(access.ExpiresAt))
		if err != nil {
			return persistence.NewDocumentError("Add", document.ID, fmt.Errorf("failed to insert access: %w", err))
		}
	}

	r.logger.DebugContext(ctx, "Inserted document",
		"document_id", document.ID,
		"document_type", document.DocumentType,
		"addresses", len(document.Addresses),
	)

	return nil
}

// ByID loads a document with its children.
func (r *DocumentRepository) ByID(ctx context.Context, id string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx, "SELECT"+documentColumns+" FROM documents d WHERE d.id = $1", id)

	document, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("ByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, persistence.NewDocumentError("ByID", id, err)
	}

	err = r.loadChildren(ctx, map[string]*models.Document{document.ID: document})
	if err != nil {
		return nil, persistence.NewDocumentError("ByID", id, err)
	}

	return document, nil
}

// View loads one document as seen by viewerID.
func (r *DocumentRepository) View(ctx context.Context, id, viewerID string) (*models.DocumentView, error) {
	query := r.viewQuery(" WHERE d.id = $2")

	view, err := scanView(r.db.QueryRowContext(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("View", id, persistence.ErrDocumentNotFound)
		}

		return nil, persistence.NewDocumentError("View", id, err)
	}

	err = r.loadChildren(ctx, map[string]*models.Document{view.ID: &view.Document})
	if err != nil {
		return nil, persistence.NewDocumentError("View", id, err)
	}

	return view, nil
}

// List returns one page of documents, newest first, with the total count
// matching the filter.
func (r *DocumentRepository) List(ctx context.Context, viewerID string, opts persistence.ListDocumentsOptions) ([]*models.DocumentView, int, error) {
	var (
		total     int
		filter    string
		countArgs []any
	)

	if opts.DocumentType != nil {
		filter = " WHERE d.document_type = $1"
		countArgs = append(countArgs, string(*opts.DocumentType))
	}

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents d"+filter, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	// placeholders are numbered in the order they appear
	args := []any{viewerID}

	if opts.DocumentType != nil {
		args = append(args, string(*opts.DocumentType))
		filter = " WHERE d.document_type = $2"
	}

	args = append(args, opts.PerPage, (opts.Page-1)*opts.PerPage)

	query := r.viewQuery(filter) +
		" ORDER BY d.created_at DESC, d.id" +
		" LIMIT " + placeholders(len(args)-1, 1) +
		" OFFSET " + placeholders(len(args), 1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query documents: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	views := make([]*models.DocumentView, 0, opts.PerPage)
	byID := make(map[string]*models.Document)

	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan document: %w", err)
		}

		views = append(views, view)
		byID[view.ID] = &view.Document
	}

	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("error iterating documents: %w", err)
	}

	err = r.loadChildren(ctx, byID)
	if err != nil {
		return nil, 0, err
	}

	return views, total, nil
}

// viewQuery selects document views for the viewer bound to $1.
func (r *DocumentRepository) viewQuery(where string) string {
	return "SELECT" + documentColumns + `
		  , ` + StatusExpression(r.rules, "d", "$1") + ` AS status
		  , rn.prefix
		  , rn.number
		  , rn.postfix
		FROM documents d
		LEFT JOIN document_registrations reg ON reg.document_id = d.id
		LEFT JOIN registration_numbers rn ON rn.id = reg.registration_number_id` + where
}

type scanner interface {
	Scan(dest ...any) error
}

func documentDest(document *models.Document, documentType *string, attachment *sql.NullString, deadline *sql.NullTime) []any {
	return []any{
		&document.ID,
		documentType,
		&document.SystemNumber,
		&document.Content,
		&document.PaperCount,
		attachment,
		deadline,
		&document.CreatorID,
		&document.CreatedAt,
	}
}

func fillDocument(document *models.Document, documentType string, attachment sql.NullString, deadline sql.NullTime) {
	document.DocumentType = models.DocumentType(documentType)
	document.AttachmentDescription = stringPtr(attachment)
	document.Deadline = timePtr(deadline)
	document.CreatedAt = document.CreatedAt.UTC()
	document.Addresses = []*models.DocumentAddress{}
	document.Confidentials = []*models.DocumentConfidential{}
	document.Accesses = []*models.DocumentAccess{}
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		document     models.Document
		documentType string
		attachment   sql.NullString
		deadline     sql.NullTime
	)

	err := row.Scan(documentDest(&document, &documentType, &attachment, &deadline)...)
	if err != nil {
		return nil, err
	}

	fillDocument(&document, documentType, attachment, deadline)

	return &document, nil
}

func scanView(row scanner) (*models.DocumentView, error) {
	var (
		view         models.DocumentView
		documentType string
		attachment   sql.NullString
		deadline     sql.NullTime
		status       sql.NullString
		prefix       sql.NullString
		number       sql.NullString
		postfix      sql.NullString
	)

	dest := documentDest(&view.Document, &documentType, &attachment, &deadline)
	dest = append(dest, &status, &prefix, &number, &postfix)

	err := row.Scan(dest...)
	if err != nil {
		return nil, err
	}

	fillDocument(&view.Document, documentType, attachment, deadline)

	if status.Valid {
		projected := models.Status(status.String)
		view.Status = &projected
	}

	if number.Valid {
		fullName := (&models.RegistrationNumber{
			Prefix:  prefix.String,
			Number:  number.String,
			Postfix: postfix.String,
		}).FullName()
		view.RegistrationNumber = &fullName
	}

	return &view, nil
}

// loadChildren fills addresses, confidentials and accesses for every
// document in one query per child table.
func (r *DocumentRepository) loadChildren(ctx context.Context, documents map[string]*models.Document) error {
	if len(documents) == 0 {
		return nil
	}

	ids := make([]any, 0, len(documents))
	for id := range documents {
		ids = append(ids, id)
	}

	in := placeholders(1, len(ids))

	err := r.loadAddresses(ctx, documents, in, ids)
	if err != nil {
		return err
	}

	err = r.loadConfidentials(ctx, documents, in, ids)
	if err != nil {
		return err
	}

	return r.loadAccesses(ctx, documents, in, ids)
}

func (r *DocumentRepository) loadAddresses(ctx context.Context, documents map[string]*models.Document, in string, ids []any) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id
		  , document_id
		  , party_type
		  , user_id
		  , external_user_id
		  , organization_id
		  , is_responsible
		  , comment
		FROM document_addresses
		WHERE document_id IN (`+in+`)
		ORDER BY document_id, position
	`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query addresses: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var (
			address        models.DocumentAddress
			partyType      string
			userID         sql.NullString
			externalUserID sql.NullString
			organizationID sql.NullString
			comment        sql.NullString
		)

		err = rows.Scan(&address.ID, &address.DocumentID, &partyType, &userID, &externalUserID, &organizationID, &address.IsResponsible, &comment)
		if err != nil {
			return fmt.Errorf("failed to scan address: %w", err)
		}

		address.PartyType = models.PartyType(partyType)
		address.UserID = stringPtr(userID)
		address.ExternalUserID = stringPtr(externalUserID)
		address.OrganizationID = stringPtr(organizationID)
		address.Comment = stringPtr(comment)

		document := documents[address.DocumentID]
		document.Addresses = append(document.Addresses, &address)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("error iterating addresses: %w", err)
	}

	return nil
}

func (r *DocumentRepository) loadConfidentials(ctx context.Context, documents map[string]*models.Document, in string, ids []any) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, level
		FROM document_confidentials
		WHERE document_id IN (`+in+`)
		ORDER BY document_id, level
	`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query confidentials: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var (
			confidential models.DocumentConfidential
			level        string
		)

		err = rows.Scan(&confidential.ID, &confidential.DocumentID, &level)
		if err != nil {
			return fmt.Errorf("failed to scan confidential: %w", err)
		}

		confidential.Level = models.ConfidentialityLevel(level)

		document := documents[confidential.DocumentID]
		document.Confidentials = append(document.Confidentials, &confidential)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("error iterating confidentials: %w", err)
	}

	return nil
}

func (r *DocumentRepository) loadAccesses(ctx context.Context, documents map[string]*models.Document, in string, ids []any) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, user_id, access_type, expires_at
		FROM document_accesses
		WHERE document_id IN (`+in+`)
		ORDER BY document_id, user_id
	`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query accesses: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var (
			access     models.DocumentAccess
			accessType string
			expiresAt  sql.NullTime
		)

		err = rows.Scan(&access.ID, &access.DocumentID, &access.UserID, &accessType, &expiresAt)
		if err != nil {
			return fmt.Errorf("failed to scan access: %w", err)
		}

		access.AccessType = models.AccessType(accessType)
		access.ExpiresAt = timePtr(expiresAt)

		document := documents[access.DocumentID]
		document.Accesses = append(document.Accesses, &access)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("error iterating accesses: %w", err)
	}

	return nil
}
