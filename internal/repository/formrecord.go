package repository

import (
	"context"
	"errors"
	"fmt"

	"org-cleanse/internal/db"
	"org-cleanse/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FormRecordRepository struct {
	pool *pgxpool.Pool
}

func NewFormRecordRepository(pool *pgxpool.Pool) *FormRecordRepository {
	return &FormRecordRepository{pool: pool}
}

const formRecordColumns = `
	id, external_code, designation, url, customer, created_at, updated_at`

func scanFormRecord(row pgx.Row) (*domain.FormRecord, error) {
	var f domain.FormRecord
	err := row.Scan(
		&f.ID, &f.ExternalCode, &f.Designation, &f.URL, &f.Customer,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Upsert inserts the form record or refreshes the row with the same
// external code.
func (r *FormRecordRepository) Upsert(ctx context.Context, record *domain.FormRecord) (*domain.FormRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO form_records (external_code, designation, url, customer)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_code) DO UPDATE SET
			designation = EXCLUDED.designation,
			url = COALESCE(EXCLUDED.url, form_records.url),
			customer = COALESCE(EXCLUDED.customer, form_records.customer),
			updated_at = NOW()
		RETURNING `+formRecordColumns,
		record.ExternalCode, record.Designation, record.URL, record.Customer,
	)

	saved, err := scanFormRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert form record: %w", err)
	}
	return saved, nil
}

// Get retrieves a form record by ID
func (r *FormRecordRepository) Get(ctx context.Context, id uuid.UUID) (*domain.FormRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+formRecordColumns+` FROM form_records WHERE id = $1`, id)

	record, err := scanFormRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get form record: %w", err)
	}
	return record, nil
}

// List returns all form records in insertion order.
func (r *FormRecordRepository) List(ctx context.Context) ([]*domain.FormRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+formRecordColumns+` FROM form_records ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list form records: %w", err)
	}
	defer rows.Close()

	return collectFormRecords(rows)
}

// ListUnlinked returns form records not yet linked to any facility.
// Suggestion candidates are pre-filtered to these, since a record maps
// to at most one facility.
func (r *FormRecordRepository) ListUnlinked(ctx context.Context) ([]*domain.FormRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+formRecordColumns+` FROM form_records f
		WHERE NOT EXISTS (
			SELECT 1 FROM organization_forms lk WHERE lk.form_record_id = f.id
		)
		ORDER BY f.created_at, f.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked form records: %w", err)
	}
	defer rows.Close()

	return collectFormRecords(rows)
}

func collectFormRecords(rows pgx.Rows) ([]*domain.FormRecord, error) {
	var records []*domain.FormRecord
	for rows.Next() {
		record, err := scanFormRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read form records: %w", err)
	}
	return records, nil
}

// Link ties the form record to the facility, replacing any previous
// link of that record.
func (r *FormRecordRepository) Link(ctx context.Context, organizationID, formRecordID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO organization_forms (organization_id, form_record_id)
		VALUES ($1, $2)
		ON CONFLICT (form_record_id) DO UPDATE SET organization_id = EXCLUDED.organization_id`,
		organizationID, formRecordID)
	if err != nil {
		return fmt.Errorf("failed to link form record: %w", err)
	}
	return nil
}

// Unlink removes the form record's facility link, if any.
func (r *FormRecordRepository) Unlink(ctx context.Context, formRecordID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM organization_forms WHERE form_record_id = $1`, formRecordID)
	if err != nil {
		return fmt.Errorf("failed to unlink form record: %w", err)
	}
	return nil
}

// FormLink pairs a form record with its linked facility, for export.
type FormLink struct {
	Record         domain.FormRecord
	OrganizationID *uuid.UUID
	FacilityName   *string
}

// ListWithLinks returns every form record together with its facility,
// when one is linked.
func (r *FormRecordRepository) ListWithLinks(ctx context.Context) ([]FormLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.external_code, f.designation, f.url, f.customer,
		       f.created_at, f.updated_at, lk.organization_id, o.name
		FROM form_records f
		LEFT JOIN organization_forms lk ON lk.form_record_id = f.id
		LEFT JOIN organizations o ON o.id = lk.organization_id
		ORDER BY f.created_at, f.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list form links: %w", err)
	}
	defer rows.Close()

	var links []FormLink
	for rows.Next() {
		var l FormLink
		err := rows.Scan(
			&l.Record.ID, &l.Record.ExternalCode, &l.Record.Designation,
			&l.Record.URL, &l.Record.Customer,
			&l.Record.CreatedAt, &l.Record.UpdatedAt,
			&l.OrganizationID, &l.FacilityName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read form links: %w", err)
	}
	return links, nil
}
