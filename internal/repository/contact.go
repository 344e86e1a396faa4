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

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const contactColumns = `
	id, first_name, last_name, email, note, department, created_at, updated_at`

func scanContact(row pgx.Row) (*domain.ContactPerson, error) {
	var c domain.ContactPerson
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Note, &c.Department,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts the contact or refreshes an existing row with the same
// email and name.
func (r *ContactRepository) Upsert(ctx context.Context, contact *domain.ContactPerson) (*domain.ContactPerson, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contact_persons (first_name, last_name, email, note, department)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email, first_name, last_name) DO UPDATE SET
			note = COALESCE(EXCLUDED.note, contact_persons.note),
			department = COALESCE(EXCLUDED.department, contact_persons.department),
			updated_at = NOW()
		RETURNING `+contactColumns,
		contact.FirstName, contact.LastName, contact.Email, contact.Note, contact.Department,
	)

	saved, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}
	return saved, nil
}

// Get retrieves a contact by ID
func (r *ContactRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ContactPerson, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contact_persons WHERE id = $1`, id)

	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// List returns all contacts in insertion order.
func (r *ContactRepository) List(ctx context.Context) ([]*domain.ContactPerson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contact_persons ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.ContactPerson
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	return contacts, nil
}

// AssignedContactIDs returns the ids of contacts already assigned to any
// facility. The suggestion engine excludes these.
func (r *ContactRepository) AssignedContactIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT contact_id FROM organization_contacts`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned contacts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignments: %w", err)
	}
	return ids, nil
}

// Assign links the contact to the facility, replacing any previous
// assignment of that contact.
func (r *ContactRepository) Assign(ctx context.Context, organizationID, contactID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO organization_contacts (organization_id, contact_id)
		VALUES ($1, $2)
		ON CONFLICT (contact_id) DO UPDATE SET organization_id = EXCLUDED.organization_id`,
		organizationID, contactID)
	if err != nil {
		return fmt.Errorf("failed to assign contact: %w", err)
	}
	return nil
}

// Unassign removes the contact's facility assignment, if any.
func (r *ContactRepository) Unassign(ctx context.Context, contactID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM organization_contacts WHERE contact_id = $1`, contactID)
	if err != nil {
		return fmt.Errorf("failed to unassign contact: %w", err)
	}
	return nil
}

// ContactAssignment pairs a contact with its assigned facility, for
// export.
type ContactAssignment struct {
	Contact        domain.ContactPerson
	OrganizationID *uuid.UUID
	FacilityName   *string
}

// ListWithAssignments returns every contact together with its facility,
// when one is assigned.
func (r *ContactRepository) ListWithAssignments(ctx context.Context) ([]ContactAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, c.note, c.department,
		       c.created_at, c.updated_at, oc.organization_id, o.name
		FROM contact_persons c
		LEFT JOIN organization_contacts oc ON oc.contact_id = c.id
		LEFT JOIN organizations o ON o.id = oc.organization_id
		ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact assignments: %w", err)
	}
	defer rows.Close()

	var assignments []ContactAssignment
	for rows.Next() {
		var a ContactAssignment
		err := rows.Scan(
			&a.Contact.ID, &a.Contact.FirstName, &a.Contact.LastName,
			&a.Contact.Email, &a.Contact.Note, &a.Contact.Department,
			&a.Contact.CreatedAt, &a.Contact.UpdatedAt,
			&a.OrganizationID, &a.FacilityName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contact assignments: %w", err)
	}
	return assignments, nil
}
