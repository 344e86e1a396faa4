package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"org-cleanse/internal/api"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler serves CSV downloads of the cleansed dataset.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) sendCSV(c *gin.Context, filename string, write func(ctx context.Context, w io.Writer) error) {
	var buf bytes.Buffer
	if err := write(c.Request.Context(), &buf); err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportOrganizations downloads the organization export.
func (h *ExportHandler) ExportOrganizations(c *gin.Context) {
	h.sendCSV(c, "organizations.csv", h.exportService.ExportOrganizations)
}

// ExportContacts downloads the contact export.
func (h *ExportHandler) ExportContacts(c *gin.Context) {
	h.sendCSV(c, "contacts.csv", h.exportService.ExportContacts)
}

// ExportFormLinks downloads the form-record export.
func (h *ExportHandler) ExportFormLinks(c *gin.Context) {
	h.sendCSV(c, "form-links.csv", h.exportService.ExportFormRecords)
}
