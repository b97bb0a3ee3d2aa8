package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/services"
)

// EntityHandler exposes administrative entity lifecycle operations.
type EntityHandler struct {
	entityService services.EntityServiceInterface
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(entityService services.EntityServiceInterface) *EntityHandler {
	return &EntityHandler{entityService: entityService}
}

// RegisterEntityRequest is the payload for entity registration
type RegisterEntityRequest struct {
	ID         string `json:"id" binding:"required"`
	OwnerID    string `json:"owner_id"`
	OwnerToken string `json:"owner_token"`
}

// EntityResponse describes a registered entity
type EntityResponse struct {
	Class      string `json:"class"`
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id,omitempty"`
	OwnerToken string `json:"owner_token,omitempty"`
}

// Register handles POST /api/v1/:class
func (h *EntityHandler) Register(c *gin.Context) {
	class, err := entities.ParseResourceClass(c.Param("class"))
	if err != nil {
		respondError(c, ErrCodeNotFound, "resource not found")
		return
	}

	var req RegisterEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ErrCodeInvalidJSON, "invalid request body")
		return
	}

	entity, err := h.entityService.Register(c.Request.Context(), GetRequester(c), class, req.ID, req.OwnerID, req.OwnerToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSuccessResponse(EntityResponse{
		Class:      string(entity.Class),
		ID:         entity.ID,
		OwnerID:    entity.OwnerID,
		OwnerToken: entity.OwnerToken,
	}))
}

// Remove handles DELETE /api/v1/:class/:id
func (h *EntityHandler) Remove(c *gin.Context) {
	class, id, ok := parseEntityPath(c)
	if !ok {
		return
	}

	if err := h.entityService.Remove(c.Request.Context(), GetRequester(c), class, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"deleted": true}))
}
