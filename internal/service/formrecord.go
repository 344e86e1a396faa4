package service

import (
	"context"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"

	"github.com/google/uuid"
)

type formRecordRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.FormRecord, error)
	ListWithLinks(ctx context.Context) ([]repository.FormLink, error)
	Upsert(ctx context.Context, record *domain.FormRecord) (*domain.FormRecord, error)
}

// FormRecordService exposes the form-record catalog to the HTTP layer.
// Linking rules live on OrganizationService.
type FormRecordService struct {
	forms formRecordRepo
}

// NewFormRecordService creates a new form-record service.
func NewFormRecordService(forms formRecordRepo) *FormRecordService {
	return &FormRecordService{forms: forms}
}

// Get retrieves one form record.
func (s *FormRecordService) Get(ctx context.Context, id uuid.UUID) (*domain.FormRecord, error) {
	return s.forms.Get(ctx, id)
}

// List returns every form record with its facility link, when any.
func (s *FormRecordService) List(ctx context.Context) ([]repository.FormLink, error) {
	return s.forms.ListWithLinks(ctx)
}

// Create upserts a single form record keyed by its external code.
func (s *FormRecordService) Create(ctx context.Context, record *domain.FormRecord) (*domain.FormRecord, error) {
	return s.forms.Upsert(ctx, record)
}
