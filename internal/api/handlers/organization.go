// Package handlers contains the gin HTTP handlers for the cleansing
// wizard's API surface.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"org-cleanse/internal/api"
	"org-cleanse/internal/db"
	"org-cleanse/internal/domain"
	"org-cleanse/internal/repository"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrganizationHandler handles organization-related HTTP requests
type OrganizationHandler struct {
	orgService *service.OrganizationService
	validator  *validator.Validate
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		validator:  validator.New(),
	}
}

// OrganizationResponse is the wire model for organizations.
type OrganizationResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Street           string    `json:"street"`
	ZipCode          string    `json:"zip_code"`
	City             string    `json:"city"`
	Type             *string   `json:"type"`
	IsAmbulant       bool      `json:"is_ambulant"`
	IsStationaer     bool      `json:"is_stationaer"`
	IsValidated      bool      `json:"is_validated"`
	ParentOrgID      *string   `json:"parent_org_id"`
	GeneralContact   *string   `json:"general_contact,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Email            *string   `json:"email,omitempty"`
	InvoiceEmail     *string   `json:"invoice_email,omitempty"`
	ApplicationEmail *string   `json:"application_email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func organizationToResponse(org *domain.Organization) OrganizationResponse {
	var orgType *string
	if org.Type != nil {
		t := string(*org.Type)
		orgType = &t
	}
	var parentID *string
	if org.ParentOrgID != nil {
		id := org.ParentOrgID.String()
		parentID = &id
	}
	return OrganizationResponse{
		ID:               org.ID.String(),
		Name:             org.Name,
		Street:           org.Street,
		ZipCode:          org.ZipCode,
		City:             org.City,
		Type:             orgType,
		IsAmbulant:       org.IsAmbulant,
		IsStationaer:     org.IsStationaer,
		IsValidated:      org.IsValidated,
		ParentOrgID:      parentID,
		GeneralContact:   org.GeneralContact,
		Phone:            org.Phone,
		Email:            org.Email,
		InvoiceEmail:     org.InvoiceEmail,
		ApplicationEmail: org.ApplicationEmail,
		CreatedAt:        org.CreatedAt,
		UpdatedAt:        org.UpdatedAt,
	}
}

func organizationsToResponse(orgs []*domain.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, len(orgs))
	for i, org := range orgs {
		out[i] = organizationToResponse(org)
	}
	return out
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		api.SendBadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// sendOrgError maps service and repository errors onto the envelope.
func sendOrgError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		api.SendNotFound(c, "Organization")
	case errors.Is(err, service.ErrNotFacility):
		api.SendConflict(c, "Organization is not classified as a facility")
	case errors.Is(err, service.ErrNotParent):
		api.SendConflict(c, "Organization is not classified as a parent")
	default:
		api.SendInternalError(c, err.Error())
	}
}

// OrganizationRequest is the create/update payload.
type OrganizationRequest struct {
	Name             string  `json:"name" validate:"required,min=1,max=255"`
	Street           string  `json:"street" validate:"max=255"`
	ZipCode          string  `json:"zip_code" validate:"max=16"`
	City             string  `json:"city" validate:"max=255"`
	IsAmbulant       bool    `json:"is_ambulant"`
	IsStationaer     bool    `json:"is_stationaer"`
	GeneralContact   *string `json:"general_contact,omitempty" validate:"omitempty,max=255"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=64"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	InvoiceEmail     *string `json:"invoice_email,omitempty" validate:"omitempty,email"`
	ApplicationEmail *string `json:"application_email,omitempty" validate:"omitempty,email"`
}

// ListOrganizations returns all organizations, optionally filtered by
// ?type=parent|facility|inactive.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	var filter *domain.OrgType
	if raw := c.Query("type"); raw != "" {
		t := domain.OrgType(raw)
		if !t.Valid() {
			api.SendBadRequest(c, "Unknown organization type: "+raw)
			return
		}
		filter = &t
	}

	orgs, err := h.orgService.List(c.Request.Context(), filter)
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationsToResponse(orgs), &api.Meta{Count: len(orgs)})
}

// GetOrganization returns a single organization by id.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	org, err := h.orgService.Get(c.Request.Context(), id)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationToResponse(org), nil)
}

// CreateOrganization upserts one organization.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), &domain.Organization{
		Name:             req.Name,
		Street:           req.Street,
		ZipCode:          req.ZipCode,
		City:             req.City,
		IsAmbulant:       req.IsAmbulant,
		IsStationaer:     req.IsStationaer,
		GeneralContact:   req.GeneralContact,
		Phone:            req.Phone,
		Email:            req.Email,
		InvoiceEmail:     req.InvoiceEmail,
		ApplicationEmail: req.ApplicationEmail,
	})
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusCreated, organizationToResponse(org), nil)
}

// UpdateOrganization edits the editable fields of an organization.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	org, err := h.orgService.UpdateFields(c.Request.Context(), id, repository.UpdateFieldsRequest{
		Name:             req.Name,
		Street:           req.Street,
		ZipCode:          req.ZipCode,
		City:             req.City,
		IsAmbulant:       req.IsAmbulant,
		IsStationaer:     req.IsStationaer,
		GeneralContact:   req.GeneralContact,
		Phone:            req.Phone,
		Email:            req.Email,
		InvoiceEmail:     req.InvoiceEmail,
		ApplicationEmail: req.ApplicationEmail,
	})
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationToResponse(org), nil)
}

// ClassifyRequest tags an organization.
type ClassifyRequest struct {
	Type string `json:"type" validate:"required,oneof=parent facility inactive"`
}

// ClassifyOrganization sets the organization's classification.
func (h *OrganizationHandler) ClassifyOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	org, err := h.orgService.Classify(c.Request.Context(), id, domain.OrgType(req.Type))
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationToResponse(org), nil)
}

// ValidateRequest toggles the validated flag.
type ValidateRequest struct {
	Validated *bool `json:"validated" validate:"required"`
}

// ValidateOrganization marks an organization as (un)validated.
func (h *OrganizationHandler) ValidateOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	org, err := h.orgService.Validate(c.Request.Context(), id, *req.Validated)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationToResponse(org), nil)
}

// AssignParentRequest sets or clears a facility's parent.
type AssignParentRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// AssignParent assigns (or, with null, clears) the parent of a facility.
func (h *OrganizationHandler) AssignParent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			api.SendBadRequest(c, "Invalid parent_id")
			return
		}
		parentID = &parsed
	}

	org, err := h.orgService.AssignParent(c.Request.Context(), id, parentID)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, organizationToResponse(org), nil)
}
