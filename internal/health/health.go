// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"org-cleanse/internal/api"
	"org-cleanse/internal/db"

	"github.com/gin-gonic/gin"
)

// Handler serves the health endpoints.
type Handler struct {
	database *db.Database
	timeout  time.Duration
	started  time.Time
}

// NewHandler creates a health handler. timeout bounds the database
// probe on the readiness endpoint.
func NewHandler(database *db.Database, timeout time.Duration) *Handler {
	return &Handler{
		database: database,
		timeout:  timeout,
		started:  time.Now(),
	}
}

// Live reports process liveness without touching dependencies.
func (h *Handler) Live(c *gin.Context) {
	api.SendSuccess(c, http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}, nil)
}

// Ready reports readiness, probing the database connection.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.database.HealthCheck(ctx); err != nil {
		api.SendError(c, http.StatusServiceUnavailable, api.ErrCodeInternal,
			"Database is not reachable", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}
