package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler exposes the liveness/readiness endpoint.
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(ErrCodeInternal, "database unreachable"))
			return
		}
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "ok"}))
}
