// Package repository implements persistence for the cleansing entities
// on top of pgx. Imports are upserts: re-uploading a CSV refreshes
// existing rows instead of duplicating them.
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

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

const organizationColumns = `
	id, name, street, zip_code, city, org_type,
	is_ambulant, is_stationaer, is_validated, parent_org_id,
	general_contact, phone, email, invoice_email, application_email,
	created_at, updated_at`

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var o domain.Organization
	var orgType *string
	err := row.Scan(
		&o.ID, &o.Name, &o.Street, &o.ZipCode, &o.City, &orgType,
		&o.IsAmbulant, &o.IsStationaer, &o.IsValidated, &o.ParentOrgID,
		&o.GeneralContact, &o.Phone, &o.Email, &o.InvoiceEmail, &o.ApplicationEmail,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orgType != nil {
		t := domain.OrgType(*orgType)
		o.Type = &t
	}
	return &o, nil
}

// Upsert inserts the organization or refreshes an existing row with the
// same name/zip/city. Classification, validation and assignment state of
// an existing row survive re-import.
func (r *OrganizationRepository) Upsert(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (
			name, street, zip_code, city,
			general_contact, phone, email, invoice_email, application_email
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name, zip_code, city) DO UPDATE SET
			street = EXCLUDED.street,
			general_contact = COALESCE(EXCLUDED.general_contact, organizations.general_contact),
			phone = COALESCE(EXCLUDED.phone, organizations.phone),
			email = COALESCE(EXCLUDED.email, organizations.email),
			invoice_email = COALESCE(EXCLUDED.invoice_email, organizations.invoice_email),
			application_email = COALESCE(EXCLUDED.application_email, organizations.application_email),
			updated_at = NOW()
		RETURNING `+organizationColumns,
		org.Name, org.Street, org.ZipCode, org.City,
		org.GeneralContact, org.Phone, org.Email, org.InvoiceEmail, org.ApplicationEmail,
	)

	saved, err := scanOrganization(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert organization: %w", err)
	}
	return saved, nil
}

// Get retrieves an organization by ID
func (r *OrganizationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// List returns all organizations in insertion order.
func (r *OrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	return collectOrganizations(rows)
}

// ListByType returns all organizations with the given classification.
func (r *OrganizationRepository) ListByType(ctx context.Context, t domain.OrgType) ([]*domain.Organization, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE org_type = $1 ORDER BY created_at, id`,
		string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations by type: %w", err)
	}
	defer rows.Close()

	return collectOrganizations(rows)
}

// ListUnassignedFacilities returns facilities without a parent reference.
func (r *OrganizationRepository) ListUnassignedFacilities(ctx context.Context) ([]*domain.Organization, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations
		 WHERE org_type = 'facility' AND parent_org_id IS NULL
		 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned facilities: %w", err)
	}
	defer rows.Close()

	return collectOrganizations(rows)
}

func collectOrganizations(rows pgx.Rows) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organizations: %w", err)
	}
	return orgs, nil
}

// UpdateFieldsRequest carries the editable organization fields.
type UpdateFieldsRequest struct {
	Name             string
	Street           string
	ZipCode          string
	City             string
	IsAmbulant       bool
	IsStationaer     bool
	GeneralContact   *string
	Phone            *string
	Email            *string
	InvoiceEmail     *string
	ApplicationEmail *string
}

// UpdateFields updates the editable fields of an organization.
func (r *OrganizationRepository) UpdateFields(ctx context.Context, id uuid.UUID, req UpdateFieldsRequest) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organizations SET
			name = $2, street = $3, zip_code = $4, city = $5,
			is_ambulant = $6, is_stationaer = $7,
			general_contact = $8, phone = $9, email = $10,
			invoice_email = $11, application_email = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+organizationColumns,
		id, req.Name, req.Street, req.ZipCode, req.City,
		req.IsAmbulant, req.IsStationaer,
		req.GeneralContact, req.Phone, req.Email,
		req.InvoiceEmail, req.ApplicationEmail,
	)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// SetClassification tags the organization. Classifying away from
// facility clears any parent reference; classifying away from parent
// detaches its facilities.
func (r *OrganizationRepository) SetClassification(ctx context.Context, id uuid.UUID, t domain.OrgType) (*domain.Organization, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if t != domain.OrgTypeParent {
		if _, err := tx.Exec(ctx,
			`UPDATE organizations SET parent_org_id = NULL, updated_at = NOW() WHERE parent_org_id = $1`,
			id); err != nil {
			return nil, fmt.Errorf("failed to detach facilities: %w", err)
		}
	}

	parentClear := ""
	if t != domain.OrgTypeFacility {
		parentClear = ", parent_org_id = NULL"
	}

	row := tx.QueryRow(ctx,
		`UPDATE organizations SET org_type = $2`+parentClear+`, updated_at = NOW()
		 WHERE id = $1 RETURNING `+organizationColumns,
		id, string(t))

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to classify organization: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit classification: %w", err)
	}
	return org, nil
}

// SetValidated marks the organization's validation flag.
func (r *OrganizationRepository) SetValidated(ctx context.Context, id uuid.UUID, validated bool) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE organizations SET is_validated = $2, updated_at = NOW()
		 WHERE id = $1 RETURNING `+organizationColumns,
		id, validated)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set validation flag: %w", err)
	}
	return org, nil
}

// SetParent assigns or clears (nil) the facility's parent organization.
func (r *OrganizationRepository) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*domain.Organization, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE organizations SET parent_org_id = $2, updated_at = NOW()
		 WHERE id = $1 RETURNING `+organizationColumns,
		id, parentID)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set parent organization: %w", err)
	}
	return org, nil
}
