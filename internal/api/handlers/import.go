package handlers

import (
	"mime/multipart"
	"net/http"

	"org-cleanse/internal/api"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler handles CSV upload HTTP requests
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// parseUpload reads the multipart "file" field into a ParsedCSV.
func parseUpload(c *gin.Context) (*service.ParsedCSV, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		api.SendBadRequest(c, "Missing file upload")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		api.SendInternalError(c, err.Error())
		return nil, false
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	parsed, err := service.ParseCSV(file)
	if err != nil {
		api.SendValidationError(c, "Could not parse CSV file", err.Error())
		return nil, false
	}
	return parsed, true
}

// column reads a column-mapping form field, falling back to the
// detected value when the field is absent.
func column(c *gin.Context, field, detected string) string {
	if v := c.PostForm(field); v != "" {
		return v
	}
	return detected
}

// DetectColumnsResponse reports the headers found in an upload and the
// column mappings guessed for each import kind.
type DetectColumnsResponse struct {
	Headers       []string                     `json:"headers"`
	Organizations service.OrgColumnMapping     `json:"organizations"`
	Contacts      service.ContactColumnMapping `json:"contacts"`
	FormRecords   service.FormColumnMapping    `json:"form_records"`
	RowCount      int                          `json:"row_count"`
}

// DetectColumns previews an upload without importing anything.
func (h *ImportHandler) DetectColumns(c *gin.Context) {
	parsed, ok := parseUpload(c)
	if !ok {
		return
	}

	api.SendSuccess(c, http.StatusOK, DetectColumnsResponse{
		Headers:       parsed.Headers,
		Organizations: service.DetectOrgColumns(parsed.Headers),
		Contacts:      service.DetectContactColumns(parsed.Headers),
		FormRecords:   service.DetectFormColumns(parsed.Headers),
		RowCount:      len(parsed.Rows),
	}, nil)
}

// ImportOrganizations imports an organization CSV. Column mappings may
// be overridden with form fields (name_column, street_column, ...).
func (h *ImportHandler) ImportOrganizations(c *gin.Context) {
	parsed, ok := parseUpload(c)
	if !ok {
		return
	}

	detected := service.DetectOrgColumns(parsed.Headers)
	mapping := service.OrgColumnMapping{
		Name:             column(c, "name_column", detected.Name),
		Street:           column(c, "street_column", detected.Street),
		ZipCode:          column(c, "zip_column", detected.ZipCode),
		City:             column(c, "city_column", detected.City),
		GeneralContact:   c.PostForm("general_contact_column"),
		Phone:            c.PostForm("phone_column"),
		Email:            c.PostForm("email_column"),
		InvoiceEmail:     c.PostForm("invoice_email_column"),
		ApplicationEmail: c.PostForm("application_email_column"),
	}

	result, err := h.importService.ImportOrganizations(c.Request.Context(), parsed, mapping)
	if err != nil {
		api.SendValidationError(c, "Import failed", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, result, nil)
}

// ImportContacts imports a contact CSV.
func (h *ImportHandler) ImportContacts(c *gin.Context) {
	parsed, ok := parseUpload(c)
	if !ok {
		return
	}

	detected := service.DetectContactColumns(parsed.Headers)
	mapping := service.ContactColumnMapping{
		FirstName:  column(c, "first_name_column", detected.FirstName),
		LastName:   column(c, "last_name_column", detected.LastName),
		Email:      column(c, "email_column", detected.Email),
		Note:       column(c, "note_column", detected.Note),
		Department: column(c, "department_column", detected.Department),
	}

	result, err := h.importService.ImportContacts(c.Request.Context(), parsed, mapping)
	if err != nil {
		api.SendValidationError(c, "Import failed", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, result, nil)
}

// ImportFormRecords imports a form-record CSV.
func (h *ImportHandler) ImportFormRecords(c *gin.Context) {
	parsed, ok := parseUpload(c)
	if !ok {
		return
	}

	detected := service.DetectFormColumns(parsed.Headers)
	mapping := service.FormColumnMapping{
		Code:        column(c, "code_column", detected.Code),
		URL:         column(c, "url_column", detected.URL),
		Designation: column(c, "designation_column", detected.Designation),
		Customer:    column(c, "customer_column", detected.Customer),
	}

	result, err := h.importService.ImportFormRecords(c.Request.Context(), parsed, mapping)
	if err != nil {
		api.SendValidationError(c, "Import failed", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, result, nil)
}
