package handlers

import (
	"net/http"
	"strconv"

	"org-cleanse/internal/api"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
)

// MatchHandler serves suggestion lists and bulk auto-assignment.
type MatchHandler struct {
	suggestService *service.SuggestService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(suggestService *service.SuggestService) *MatchHandler {
	return &MatchHandler{suggestService: suggestService}
}

// parseLimit reads ?limit=; zero means "use the configured default".
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		api.SendBadRequest(c, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}

// ParentMatches returns parent candidates for a facility.
func (h *MatchHandler) ParentMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	matches, err := h.suggestService.ParentSuggestions(c.Request.Context(), id, limit)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, matches, &api.Meta{Count: len(matches)})
}

// ContactMatches returns unassigned contact candidates for a facility.
func (h *MatchHandler) ContactMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	matches, err := h.suggestService.ContactSuggestions(c.Request.Context(), id)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, matches, &api.Meta{Count: len(matches)})
}

// FormMatches returns unlinked form-record candidates for a facility.
func (h *MatchHandler) FormMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	matches, err := h.suggestService.FormSuggestions(c.Request.Context(), id, limit)
	if err != nil {
		sendOrgError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, matches, &api.Meta{Count: len(matches)})
}

// AutoAssignRequest tunes the bulk run. Threshold zero uses the
// configured default.
type AutoAssignRequest struct {
	Threshold int `json:"threshold" binding:"omitempty,min=0,max=100"`
}

// AutoAssign runs bulk parent assignment over all unassigned facilities.
func (h *MatchHandler) AutoAssign(c *gin.Context) {
	var req AutoAssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			api.SendValidationError(c, "Invalid request body", err.Error())
			return
		}
	}

	report, err := h.suggestService.AutoAssignParents(c.Request.Context(), req.Threshold)
	if err != nil {
		api.SendInternalError(c, err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, report, nil)
}
