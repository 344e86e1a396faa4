package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"org-cleanse/internal/domain"
	"org-cleanse/internal/logger"
)

// OrgColumnMapping names the CSV columns holding organization fields.
// Name is required; the rest may be empty when the file lacks them.
type OrgColumnMapping struct {
	Name             string `json:"name"`
	Street           string `json:"street"`
	ZipCode          string `json:"zip_code"`
	City             string `json:"city"`
	GeneralContact   string `json:"general_contact"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	InvoiceEmail     string `json:"invoice_email"`
	ApplicationEmail string `json:"application_email"`
}

// ContactColumnMapping names the CSV columns holding contact fields.
type ContactColumnMapping struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Note       string `json:"note"`
	Department string `json:"department"`
}

// FormColumnMapping names the CSV columns holding form-record fields.
type FormColumnMapping struct {
	Code        string `json:"code"`
	URL         string `json:"url"`
	Designation string `json:"designation"`
	Customer    string `json:"customer"`
}

// ParsedCSV is a parsed upload: the header row plus one map per data
// row, keyed by header.
type ParsedCSV struct {
	Headers []string
	Rows    []map[string]string
}

// ParseCSV reads an uploaded file. The delimiter is sniffed from the
// header line: exports in this domain come comma- or semicolon-
// separated depending on the tool's locale.
func ParseCSV(r io.Reader) (*ParsedCSV, error) {
	br := bufio.NewReader(r)

	headerLine, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	delimiter := sniffDelimiter(string(headerLine))

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return &ParsedCSV{}, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &ParsedCSV{Headers: headers, Rows: rows}, nil
}

func sniffDelimiter(headerLine string) rune {
	if i := strings.IndexAny(headerLine, "\r\n"); i >= 0 {
		headerLine = headerLine[:i]
	}
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

// findColumn returns the first header containing any of the keywords,
// case-insensitively.
func findColumn(headers []string, keywords ...string) string {
	for _, header := range headers {
		lower := strings.ToLower(header)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return header
			}
		}
	}
	return ""
}

// DetectOrgColumns guesses the organization column mapping from the
// header row. The keyword sets cover the German and English exports the
// workflow sees in practice.
func DetectOrgColumns(headers []string) OrgColumnMapping {
	return OrgColumnMapping{
		Name:    findColumn(headers, "name", "bezeichnung", "organisation", "firma"),
		Street:  findColumn(headers, "straße", "strasse", "street", "adresse"),
		ZipCode: findColumn(headers, "plz", "postleitzahl", "zip"),
		City:    findColumn(headers, "stadt", "ort", "city", "gemeinde"),
	}
}

// DetectContactColumns guesses the contact column mapping.
func DetectContactColumns(headers []string) ContactColumnMapping {
	return ContactColumnMapping{
		FirstName:  findColumn(headers, "vorname", "first"),
		LastName:   findColumn(headers, "nachname", "last", "surname"),
		Email:      findColumn(headers, "mail"),
		Note:       findColumn(headers, "notiz", "note", "bemerkung"),
		Department: findColumn(headers, "abteilung", "department"),
	}
}

// DetectFormColumns guesses the form-record column mapping.
func DetectFormColumns(headers []string) FormColumnMapping {
	return FormColumnMapping{
		Code:        findColumn(headers, "id", "flow"),
		URL:         findColumn(headers, "url", "link"),
		Designation: findColumn(headers, "bezeichnung", "name", "titel", "description"),
		Customer:    findColumn(headers, "kunde", "customer"),
	}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type importOrgRepo interface {
	Upsert(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
}

type importContactRepo interface {
	Upsert(ctx context.Context, contact *domain.ContactPerson) (*domain.ContactPerson, error)
}

type importFormRepo interface {
	Upsert(ctx context.Context, record *domain.FormRecord) (*domain.FormRecord, error)
}

// ImportService converts parsed CSV rows to entities and upserts them.
type ImportService struct {
	orgs     importOrgRepo
	contacts importContactRepo
	forms    importFormRepo
}

// NewImportService creates a new import service.
func NewImportService(orgs importOrgRepo, contacts importContactRepo, forms importFormRepo) *ImportService {
	return &ImportService{orgs: orgs, contacts: contacts, forms: forms}
}

func optional(row map[string]string, column string) *string {
	if column == "" {
		return nil
	}
	value := row[column]
	if value == "" {
		return nil
	}
	return &value
}

// ImportOrganizations upserts one organization per row. Rows without a
// name are skipped.
func (s *ImportService) ImportOrganizations(ctx context.Context, parsed *ParsedCSV, mapping OrgColumnMapping) (*ImportResult, error) {
	if mapping.Name == "" {
		return nil, fmt.Errorf("organization import requires a name column")
	}

	result := &ImportResult{}
	for _, row := range parsed.Rows {
		name := row[mapping.Name]
		if name == "" {
			result.Skipped++
			continue
		}

		org := &domain.Organization{
			Name:             name,
			Street:           row[mapping.Street],
			ZipCode:          row[mapping.ZipCode],
			City:             row[mapping.City],
			GeneralContact:   optional(row, mapping.GeneralContact),
			Phone:            optional(row, mapping.Phone),
			Email:            optional(row, mapping.Email),
			InvoiceEmail:     optional(row, mapping.InvoiceEmail),
			ApplicationEmail: optional(row, mapping.ApplicationEmail),
		}
		if _, err := s.orgs.Upsert(ctx, org); err != nil {
			return nil, fmt.Errorf("failed to import organization %q: %w", name, err)
		}
		result.Imported++
	}

	logger.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("organization import finished")
	return result, nil
}

// ImportContacts upserts one contact per row. Rows without an email are
// skipped.
func (s *ImportService) ImportContacts(ctx context.Context, parsed *ParsedCSV, mapping ContactColumnMapping) (*ImportResult, error) {
	if mapping.Email == "" {
		return nil, fmt.Errorf("contact import requires an email column")
	}

	result := &ImportResult{}
	for _, row := range parsed.Rows {
		email := row[mapping.Email]
		if email == "" {
			result.Skipped++
			continue
		}

		contact := &domain.ContactPerson{
			FirstName:  row[mapping.FirstName],
			LastName:   row[mapping.LastName],
			Email:      email,
			Note:       optional(row, mapping.Note),
			Department: optional(row, mapping.Department),
		}
		if _, err := s.contacts.Upsert(ctx, contact); err != nil {
			return nil, fmt.Errorf("failed to import contact %q: %w", email, err)
		}
		result.Imported++
	}

	logger.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("contact import finished")
	return result, nil
}

// ImportFormRecords upserts one form record per row. Rows without a
// code are skipped; blank designations become "Unbekannt" so the record
// stays visible in the UI.
func (s *ImportService) ImportFormRecords(ctx context.Context, parsed *ParsedCSV, mapping FormColumnMapping) (*ImportResult, error) {
	if mapping.Code == "" || mapping.Designation == "" {
		return nil, fmt.Errorf("form-record import requires code and designation columns")
	}

	result := &ImportResult{}
	for _, row := range parsed.Rows {
		code := row[mapping.Code]
		if code == "" {
			result.Skipped++
			continue
		}

		designation := row[mapping.Designation]
		if designation == "" {
			designation = "Unbekannt"
		}

		record := &domain.FormRecord{
			ExternalCode: code,
			Designation:  designation,
			URL:          optional(row, mapping.URL),
			Customer:     optional(row, mapping.Customer),
		}
		if _, err := s.forms.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to import form record %q: %w", code, err)
		}
		result.Imported++
	}

	logger.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("form-record import finished")
	return result, nil
}
