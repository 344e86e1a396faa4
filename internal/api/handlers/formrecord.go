package handlers

import (
	"net/http"
	"time"

	"org-cleanse/internal/api"
	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FormRecordHandler handles form-record HTTP requests
type FormRecordHandler struct {
	formService *service.FormRecordService
	orgService  *service.OrganizationService
	validator   *validator.Validate
}

// NewFormRecordHandler creates a new form-record handler
func NewFormRecordHandler(formService *service.FormRecordService, orgService *service.OrganizationService) *FormRecordHandler {
	return &FormRecordHandler{
		formService: formService,
		orgService:  orgService,
		validator:   validator.New(),
	}
}

// FormRecordResponse is the wire model for form records, including the
// facility the record is linked to, when any.
type FormRecordResponse struct {
	ID           string    `json:"id"`
	ExternalCode string    `json:"external_code"`
	Designation  string    `json:"designation"`
	URL          *string   `json:"url,omitempty"`
	Customer     *string   `json:"customer,omitempty"`
	FacilityID   *string   `json:"facility_id"`
	FacilityName *string   `json:"facility_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func formRecordToResponse(record *domain.FormRecord) FormRecordResponse {
	return FormRecordResponse{
		ID:           record.ID.String(),
		ExternalCode: record.ExternalCode,
		Designation:  record.Designation,
		URL:          record.URL,
		Customer:     record.Customer,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func formLinkToResponse(link repository.FormLink) FormRecordResponse {
	resp := formRecordToResponse(&link.Record)
	if link.OrganizationID != nil {
		id := link.OrganizationID.String()
		resp.FacilityID = &id
	}
	resp.FacilityName = link.FacilityName
	return resp
}

// ListFormRecords returns every form record with its link state.
func (h *FormRecordHandler) ListFormRecords(c *gin.Context) {
	links, err := h.formService.List(c.Request.Context())
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	out := make([]FormRecordResponse, len(links))
	for i, link := range links {
		out[i] = formLinkToResponse(link)
	}
	api.SendSuccess(c, http.StatusOK, out, &api.Meta{Count: len(out)})
}

// CreateFormRecordRequest is the create payload.
type CreateFormRecordRequest struct {
	ExternalCode string  `json:"external_code" validate:"required,max=255"`
	Designation  string  `json:"designation" validate:"required,max=255"`
	URL          *string `json:"url,omitempty" validate:"omitempty,url"`
	Customer     *string `json:"customer,omitempty" validate:"omitempty,max=255"`
}

// CreateFormRecord upserts one form record.
func (h *FormRecordHandler) CreateFormRecord(c *gin.Context) {
	var req CreateFormRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	record, err := h.formService.Create(c.Request.Context(), &domain.FormRecord{
		ExternalCode: req.ExternalCode,
		Designation:  req.Designation,
		URL:          req.URL,
		Customer:     req.Customer,
	})
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusCreated, formRecordToResponse(record), nil)
}

// LinkFormRecordRequest sets or clears a record's facility link.
type LinkFormRecordRequest struct {
	OrganizationID *string `json:"organization_id" validate:"omitempty,uuid"`
}

// LinkFormRecord links the record to a facility, or removes the link
// when organization_id is null.
func (h *FormRecordHandler) LinkFormRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LinkFormRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	var err error
	if req.OrganizationID == nil {
		err = h.orgService.UnlinkForm(ctx, id)
	} else {
		var orgID uuid.UUID
		orgID, err = uuid.Parse(*req.OrganizationID)
		if err != nil {
			api.SendBadRequest(c, "Invalid organization_id")
			return
		}
		err = h.orgService.LinkForm(ctx, orgID, id)
	}
	if err != nil {
		sendContactError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, gin.H{"form_record_id": id.String()}, nil)
}
