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

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	contactService *service.ContactService
	orgService     *service.OrganizationService
	validator      *validator.Validate
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *service.ContactService, orgService *service.OrganizationService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		orgService:     orgService,
		validator:      validator.New(),
	}
}

// ContactResponse is the wire model for contacts, including the
// facility the contact is assigned to, when any.
type ContactResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Note         *string   `json:"note,omitempty"`
	Department   *string   `json:"department,omitempty"`
	FacilityID   *string   `json:"facility_id"`
	FacilityName *string   `json:"facility_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func contactToResponse(contact *domain.ContactPerson) ContactResponse {
	return ContactResponse{
		ID:         contact.ID.String(),
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Email:      contact.Email,
		Note:       contact.Note,
		Department: contact.Department,
		CreatedAt:  contact.CreatedAt,
		UpdatedAt:  contact.UpdatedAt,
	}
}

func assignmentToResponse(a repository.ContactAssignment) ContactResponse {
	resp := contactToResponse(&a.Contact)
	if a.OrganizationID != nil {
		id := a.OrganizationID.String()
		resp.FacilityID = &id
	}
	resp.FacilityName = a.FacilityName
	return resp
}

// ListContacts returns every contact with its assignment state.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	assignments, err := h.contactService.List(c.Request.Context())
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	out := make([]ContactResponse, len(assignments))
	for i, a := range assignments {
		out[i] = assignmentToResponse(a)
	}
	api.SendSuccess(c, http.StatusOK, out, &api.Meta{Count: len(out)})
}

// CreateContactRequest is the create payload.
type CreateContactRequest struct {
	FirstName  string  `json:"first_name" validate:"max=255"`
	LastName   string  `json:"last_name" validate:"max=255"`
	Email      string  `json:"email" validate:"required,email"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=1000"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=255"`
}

// CreateContact upserts one contact.
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), &domain.ContactPerson{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Note:       req.Note,
		Department: req.Department,
	})
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusCreated, contactToResponse(contact), nil)
}

// AssignContactRequest sets or clears a contact's facility.
type AssignContactRequest struct {
	OrganizationID *string `json:"organization_id" validate:"omitempty,uuid"`
}

// AssignContact assigns the contact to a facility, or removes the
// assignment when organization_id is null.
func (h *ContactHandler) AssignContact(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignContactRequest
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
		err = h.orgService.UnassignContact(ctx, id)
	} else {
		var orgID uuid.UUID
		orgID, err = uuid.Parse(*req.OrganizationID)
		if err != nil {
			api.SendBadRequest(c, "Invalid organization_id")
			return
		}
		err = h.orgService.AssignContact(ctx, orgID, id)
	}
	if err != nil {
		sendContactError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, gin.H{"contact_id": id.String()}, nil)
}

func sendContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		api.SendNotFound(c, "Resource")
	case errors.Is(err, service.ErrNotFacility):
		api.SendConflict(c, "Organization is not classified as a facility")
	default:
		api.SendInternalError(c, err.Error())
	}
}
