package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"
)

type exportOrgRepo interface {
	List(ctx context.Context) ([]*domain.Organization, error)
}

type exportContactRepo interface {
	ListWithAssignments(ctx context.Context) ([]repository.ContactAssignment, error)
}

type exportFormRepo interface {
	ListWithLinks(ctx context.Context) ([]repository.FormLink, error)
}

// ExportService writes the cleansed dataset back out as CSV for the
// downstream CRM import.
type ExportService struct {
	orgs     exportOrgRepo
	contacts exportContactRepo
	forms    exportFormRepo
}

// NewExportService creates a new export service.
func NewExportService(orgs exportOrgRepo, contacts exportContactRepo, forms exportFormRepo) *ExportService {
	return &ExportService{orgs: orgs, contacts: contacts, forms: forms}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolCell(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}

// ExportOrganizations writes every organization with its classification,
// parent name and validation state.
func (s *ExportService) ExportOrganizations(ctx context.Context, w io.Writer) error {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return err
	}

	names := make(map[uuid.UUID]string, len(orgs))
	for _, org := range orgs {
		names[org.ID] = org.Name
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"name", "street", "zip_code", "city", "type",
		"parent_organization", "ambulant", "stationaer", "validated",
		"phone", "email",
	}); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, org := range orgs {
		orgType := ""
		if org.Type != nil {
			orgType = string(*org.Type)
		}
		parentName := ""
		if org.ParentOrgID != nil {
			parentName = names[*org.ParentOrgID]
		}
		record := []string{
			org.Name, org.Street, org.ZipCode, org.City, orgType,
			parentName, boolCell(org.IsAmbulant), boolCell(org.IsStationaer),
			boolCell(org.IsValidated), deref(org.Phone), deref(org.Email),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write organization row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportContacts writes every contact with the facility it is assigned
// to, when any.
func (s *ExportService) ExportContacts(ctx context.Context, w io.Writer) error {
	assignments, err := s.contacts.ListWithAssignments(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"first_name", "last_name", "email", "department", "note", "facility",
	}); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, a := range assignments {
		record := []string{
			a.Contact.FirstName, a.Contact.LastName, a.Contact.Email,
			deref(a.Contact.Department), deref(a.Contact.Note),
			deref(a.FacilityName),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write contact row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFormRecords writes every form record with the facility it is
// linked to, when any.
func (s *ExportService) ExportFormRecords(ctx context.Context, w io.Writer) error {
	links, err := s.forms.ListWithLinks(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"code", "designation", "url", "customer", "facility",
	}); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, l := range links {
		record := []string{
			l.Record.ExternalCode, l.Record.Designation,
			deref(l.Record.URL), deref(l.Record.Customer),
			deref(l.FacilityName),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write form-record row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
