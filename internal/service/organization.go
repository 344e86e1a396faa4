package service

import (
	"context"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"

	"github.com/google/uuid"
)

type orgRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	Upsert(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	List(ctx context.Context) ([]*domain.Organization, error)
	ListByType(ctx context.Context, t domain.OrgType) ([]*domain.Organization, error)
	UpdateFields(ctx context.Context, id uuid.UUID, req repository.UpdateFieldsRequest) (*domain.Organization, error)
	SetClassification(ctx context.Context, id uuid.UUID, t domain.OrgType) (*domain.Organization, error)
	SetValidated(ctx context.Context, id uuid.UUID, validated bool) (*domain.Organization, error)
	SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*domain.Organization, error)
}

type contactAssignRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ContactPerson, error)
	Assign(ctx context.Context, organizationID, contactID uuid.UUID) error
	Unassign(ctx context.Context, contactID uuid.UUID) error
}

type formLinkRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.FormRecord, error)
	Link(ctx context.Context, organizationID, formRecordID uuid.UUID) error
	Unlink(ctx context.Context, formRecordID uuid.UUID) error
}

// OrganizationService enforces the assignment rules the matching engine
// deliberately leaves to callers: parents must be parent-classified,
// assignment targets must be facilities.
type OrganizationService struct {
	orgs     orgRepo
	contacts contactAssignRepo
	forms    formLinkRepo
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(orgs orgRepo, contacts contactAssignRepo, forms formLinkRepo) *OrganizationService {
	return &OrganizationService{orgs: orgs, contacts: contacts, forms: forms}
}

// Get retrieves one organization.
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return s.orgs.Get(ctx, id)
}

// Create upserts a single organization. Re-posting the same
// name/zip/city triple updates the record instead of duplicating it.
func (s *OrganizationService) Create(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	return s.orgs.Upsert(ctx, org)
}

// List returns all organizations, optionally filtered by type.
func (s *OrganizationService) List(ctx context.Context, t *domain.OrgType) ([]*domain.Organization, error) {
	if t != nil {
		return s.orgs.ListByType(ctx, *t)
	}
	return s.orgs.List(ctx)
}

// UpdateFields edits an organization's fields.
func (s *OrganizationService) UpdateFields(ctx context.Context, id uuid.UUID, req repository.UpdateFieldsRequest) (*domain.Organization, error) {
	return s.orgs.UpdateFields(ctx, id, req)
}

// Classify tags an organization as parent, facility or inactive.
func (s *OrganizationService) Classify(ctx context.Context, id uuid.UUID, t domain.OrgType) (*domain.Organization, error) {
	return s.orgs.SetClassification(ctx, id, t)
}

// Validate marks an organization's validation flag.
func (s *OrganizationService) Validate(ctx context.Context, id uuid.UUID, validated bool) (*domain.Organization, error) {
	return s.orgs.SetValidated(ctx, id, validated)
}

// AssignParent sets (or clears, with nil) the parent of a facility. The
// target must be a facility and the parent must be parent-classified;
// the hierarchy is a single level, so a parent cannot itself have a
// parent.
func (s *OrganizationService) AssignParent(ctx context.Context, facilityID uuid.UUID, parentID *uuid.UUID) (*domain.Organization, error) {
	facility, err := s.orgs.Get(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !facility.IsFacility() {
		return nil, ErrNotFacility
	}

	if parentID != nil {
		parent, err := s.orgs.Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsParent() {
			return nil, ErrNotParent
		}
	}

	return s.orgs.SetParent(ctx, facilityID, parentID)
}

// AssignContact links a contact to a facility, replacing any previous
// assignment of that contact.
func (s *OrganizationService) AssignContact(ctx context.Context, facilityID, contactID uuid.UUID) error {
	facility, err := s.orgs.Get(ctx, facilityID)
	if err != nil {
		return err
	}
	if !facility.IsFacility() {
		return ErrNotFacility
	}
	if _, err := s.contacts.Get(ctx, contactID); err != nil {
		return err
	}
	return s.contacts.Assign(ctx, facilityID, contactID)
}

// UnassignContact removes a contact's facility assignment.
func (s *OrganizationService) UnassignContact(ctx context.Context, contactID uuid.UUID) error {
	if _, err := s.contacts.Get(ctx, contactID); err != nil {
		return err
	}
	return s.contacts.Unassign(ctx, contactID)
}

// LinkForm ties a form record to a facility. A record links to at most
// one facility; linking again moves it.
func (s *OrganizationService) LinkForm(ctx context.Context, facilityID, formRecordID uuid.UUID) error {
	facility, err := s.orgs.Get(ctx, facilityID)
	if err != nil {
		return err
	}
	if !facility.IsFacility() {
		return ErrNotFacility
	}
	if _, err := s.forms.Get(ctx, formRecordID); err != nil {
		return err
	}
	return s.forms.Link(ctx, facilityID, formRecordID)
}

// UnlinkForm removes a form record's facility link.
func (s *OrganizationService) UnlinkForm(ctx context.Context, formRecordID uuid.UUID) error {
	if _, err := s.forms.Get(ctx, formRecordID); err != nil {
		return err
	}
	return s.forms.Unlink(ctx, formRecordID)
}
