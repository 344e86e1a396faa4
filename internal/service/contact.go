package service

import (
	"context"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"

	"github.com/google/uuid"
)

type contactRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ContactPerson, error)
	ListWithAssignments(ctx context.Context) ([]repository.ContactAssignment, error)
	Upsert(ctx context.Context, contact *domain.ContactPerson) (*domain.ContactPerson, error)
}

// ContactService exposes the contact catalog to the HTTP layer.
// Assignment rules live on OrganizationService.
type ContactService struct {
	contacts contactRepo
}

// NewContactService creates a new contact service.
func NewContactService(contacts contactRepo) *ContactService {
	return &ContactService{contacts: contacts}
}

// Get retrieves one contact.
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*domain.ContactPerson, error) {
	return s.contacts.Get(ctx, id)
}

// List returns every contact with its facility assignment, when any.
func (s *ContactService) List(ctx context.Context) ([]repository.ContactAssignment, error) {
	return s.contacts.ListWithAssignments(ctx)
}

// Create upserts a single contact. Re-posting the same person updates
// the mutable fields instead of duplicating the record.
func (s *ContactService) Create(ctx context.Context, contact *domain.ContactPerson) (*domain.ContactPerson, error) {
	return s.contacts.Upsert(ctx, contact)
}
