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

// RegistrationRepository issues registration numbers and links them to documents.
type RegistrationRepository struct {
	db     querier
	logger *slog.Logger
}

func newRegistrationRepository(db querier, logger *slog.Logger) *RegistrationRepository {
	return &RegistrationRepository{db: db, logger: logger}
}

// Initialize creates the document's registration row without an internal number.
func (r *RegistrationRepository) Initialize(ctx context.Context, registration *models.DocumentRegistration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO document_registrations
			(id, document_id, registration_number_id, external_registration_number, external_registration_at)
		VALUES ($1, $2, NULL, $3, $4)
	`,
		registration.ID,
		registration.DocumentID,
		stringOrNil(registration.ExternalRegistrationNumber),
		utcOrNil(registration.ExternalRegistrationAt),
	)
	if err != nil {
		return persistence.NewDocumentError("InitializeRegistration", registration.DocumentID, err)
	}

	return nil
}

func (r *RegistrationRepository) ByDocumentID(ctx context.Context, documentID string) (*models.DocumentRegistration, error) {
	var (
		registration    models.DocumentRegistration
		externalNumber  sql.NullString
		externalAt      sql.NullTime
		numberID        sql.NullString
		prefix          sql.NullString
		number          sql.NullString
		postfix         sql.NullString
		registratorID   sql.NullString
		numberCreatedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			reg.id
		  , reg.document_id
		  , reg.external_registration_number
		  , reg.external_registration_at
		  , rn.id
		  , rn.prefix
		  , rn.number
		  , rn.postfix
		  , rn.registrator_id
		  , rn.created_at
		FROM document_registrations reg
		LEFT JOIN registration_numbers rn ON rn.id = reg.registration_number_id
		WHERE reg.document_id = $1
	`, documentID).Scan(
		&registration.ID,
		&registration.DocumentID,
		&externalNumber,
		&externalAt,
		&numberID,
		&prefix,
		&number,
		&postfix,
		&registratorID,
		&numberCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("RegistrationByDocumentID", documentID, persistence.ErrRegistrationNotFound)
		}

		return nil, persistence.NewDocumentError("RegistrationByDocumentID", documentID, err)
	}

	registration.ExternalRegistrationNumber = stringPtr(externalNumber)
	registration.ExternalRegistrationAt = timePtr(externalAt)

	if numberID.Valid {
		registration.Number = &models.RegistrationNumber{
			ID:            numberID.String,
			Prefix:        prefix.String,
			Number:        number.String,
			Postfix:       postfix.String,
			RegistratorID: registratorID.String,
			CreatedAt:     numberCreatedAt.Time.UTC(),
		}
	}

	return &registration, nil
}

// MaxNumber compares numbers numerically, so "000010" beats "000009".
func (r *RegistrationRepository) MaxNumber(ctx context.Context, prefix string) (int, error) {
	var highest int

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(number AS INTEGER)), 0)
		FROM registration_numbers
		WHERE prefix = $1
	`, prefix).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("failed to query max registration number for prefix %q: %w", prefix, err)
	}

	return highest, nil
}

// AssignNumber stores number and links it to the document's registration row.
func (r *RegistrationRepository) AssignNumber(ctx context.Context, documentID string, number *models.RegistrationNumber) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registration_numbers (id, prefix, number, postfix, registrator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, number.ID, number.Prefix, number.Number, number.Postfix, number.RegistratorID, number.CreatedAt.UTC())
	if err != nil {
		return persistence.NewDocumentError("AssignNumber", documentID, fmt.Errorf("failed to insert registration number: %w", err))
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE document_registrations
		SET registration_number_id = $1
		WHERE document_id = $2
	`, number.ID, documentID)
	if err != nil {
		return persistence.NewDocumentError("AssignNumber", documentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewDocumentError("AssignNumber", documentID, err)
	}

	if affected == 0 {
		return persistence.NewDocumentError("AssignNumber", documentID, persistence.ErrRegistrationNotFound)
	}

	r.logger.DebugContext(ctx, "Assigned registration number", "document_id", documentID, "number", number.FullName())

	return nil
}
