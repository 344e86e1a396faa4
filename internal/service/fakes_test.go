package service

import (
	"context"

	"github.com/google/uuid"

	"org-cleanse/internal/db"
	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"
)

// fakeOrgRepo is an in-memory stand-in for the organization repository.
// Insertion order is preserved so suggestion ordering is deterministic.
type fakeOrgRepo struct {
	orgs []*domain.Organization
}

func (f *fakeOrgRepo) add(org *domain.Organization) *domain.Organization {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	f.orgs = append(f.orgs, org)
	return org
}

func (f *fakeOrgRepo) Get(_ context.Context, id uuid.UUID) (*domain.Organization, error) {
	for _, org := range f.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeOrgRepo) List(_ context.Context) ([]*domain.Organization, error) {
	return f.orgs, nil
}

func (f *fakeOrgRepo) ListByType(_ context.Context, t domain.OrgType) ([]*domain.Organization, error) {
	var out []*domain.Organization
	for _, org := range f.orgs {
		if org.Type != nil && *org.Type == t {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) ListUnassignedFacilities(_ context.Context) ([]*domain.Organization, error) {
	var out []*domain.Organization
	for _, org := range f.orgs {
		if org.IsFacility() && org.ParentOrgID == nil {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*domain.Organization, error) {
	org, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.ParentOrgID = parentID
	return org, nil
}

func (f *fakeOrgRepo) SetClassification(ctx context.Context, id uuid.UUID, t domain.OrgType) (*domain.Organization, error) {
	org, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Type = &t
	return org, nil
}

func (f *fakeOrgRepo) SetValidated(ctx context.Context, id uuid.UUID, validated bool) (*domain.Organization, error) {
	org, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.IsValidated = validated
	return org, nil
}

func (f *fakeOrgRepo) UpdateFields(ctx context.Context, id uuid.UUID, req repository.UpdateFieldsRequest) (*domain.Organization, error) {
	org, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Name = req.Name
	org.Street = req.Street
	org.ZipCode = req.ZipCode
	org.City = req.City
	org.IsAmbulant = req.IsAmbulant
	org.IsStationaer = req.IsStationaer
	org.GeneralContact = req.GeneralContact
	org.Phone = req.Phone
	org.Email = req.Email
	org.InvoiceEmail = req.InvoiceEmail
	org.ApplicationEmail = req.ApplicationEmail
	return org, nil
}

func (f *fakeOrgRepo) Upsert(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	for _, existing := range f.orgs {
		if existing.Name == org.Name && existing.ZipCode == org.ZipCode && existing.City == org.City {
			existing.Street = org.Street
			return existing, nil
		}
	}
	return f.add(org), nil
}

// fakeContactRepo stores contacts plus a contact-to-facility map.
type fakeContactRepo struct {
	contacts []*domain.ContactPerson
	assigned map[uuid.UUID]uuid.UUID
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{assigned: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeContactRepo) add(contact *domain.ContactPerson) *domain.ContactPerson {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	f.contacts = append(f.contacts, contact)
	return contact
}

func (f *fakeContactRepo) Get(_ context.Context, id uuid.UUID) (*domain.ContactPerson, error) {
	for _, c := range f.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeContactRepo) List(_ context.Context) ([]*domain.ContactPerson, error) {
	return f.contacts, nil
}

func (f *fakeContactRepo) AssignedContactIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.assigned))
	for id := range f.assigned {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeContactRepo) Assign(_ context.Context, organizationID, contactID uuid.UUID) error {
	f.assigned[contactID] = organizationID
	return nil
}

func (f *fakeContactRepo) Unassign(_ context.Context, contactID uuid.UUID) error {
	delete(f.assigned, contactID)
	return nil
}

func (f *fakeContactRepo) Upsert(_ context.Context, contact *domain.ContactPerson) (*domain.ContactPerson, error) {
	for _, existing := range f.contacts {
		if existing.Email == contact.Email &&
			existing.FirstName == contact.FirstName &&
			existing.LastName == contact.LastName {
			existing.Note = contact.Note
			return existing, nil
		}
	}
	return f.add(contact), nil
}

// fakeFormRepo stores form records plus a record-to-facility map.
type fakeFormRepo struct {
	records []*domain.FormRecord
	linked  map[uuid.UUID]uuid.UUID
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{linked: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeFormRepo) add(record *domain.FormRecord) *domain.FormRecord {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)
	return record
}

func (f *fakeFormRepo) Get(_ context.Context, id uuid.UUID) (*domain.FormRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeFormRepo) ListUnlinked(_ context.Context) ([]*domain.FormRecord, error) {
	var out []*domain.FormRecord
	for _, r := range f.records {
		if _, ok := f.linked[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFormRepo) Link(_ context.Context, organizationID, formRecordID uuid.UUID) error {
	f.linked[formRecordID] = organizationID
	return nil
}

func (f *fakeFormRepo) Unlink(_ context.Context, formRecordID uuid.UUID) error {
	delete(f.linked, formRecordID)
	return nil
}

func (f *fakeFormRepo) Upsert(_ context.Context, record *domain.FormRecord) (*domain.FormRecord, error) {
	for _, existing := range f.records {
		if existing.ExternalCode == record.ExternalCode {
			existing.Designation = record.Designation
			return existing, nil
		}
	}
	return f.add(record), nil
}

func orgTypePtr(t domain.OrgType) *domain.OrgType { return &t }
