package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/services"
)

// MetadataHandler exposes read and write operations on the public and
// private metadata maps of an entity.
type MetadataHandler struct {
	metadataService services.MetadataServiceInterface
}

// NewMetadataHandler creates a new MetadataHandler
func NewMetadataHandler(metadataService services.MetadataServiceInterface) *MetadataHandler {
	return &MetadataHandler{metadataService: metadataService}
}

// UpdateMetadataRequest is the payload for metadata upserts
type UpdateMetadataRequest struct {
	Items []entities.MetadataItem `json:"items"`
}

// DeleteMetadataRequest is the payload for metadata key deletion
type DeleteMetadataRequest struct {
	Keys []string `json:"keys"`
}

// MetadataResponse carries one partition of an entity's metadata
type MetadataResponse struct {
	Class     string            `json:"class"`
	ID        string            `json:"id"`
	Partition string            `json:"partition"`
	Metadata  map[string]string `json:"metadata"`
}

// Get handles GET /api/v1/:class/:id/metadata and /private-metadata
func (h *MetadataHandler) Get(partition entities.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, id, ok := parseEntityPath(c)
		if !ok {
			return
		}

		metadata, err := h.metadataService.Read(c.Request.Context(), GetRequester(c), class, id, partition)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, NewSuccessResponse(MetadataResponse{
			Class:     string(class),
			ID:        id,
			Partition: string(partition),
			Metadata:  metadata,
		}))
	}
}

// Update handles POST /api/v1/:class/:id/metadata and /private-metadata
func (h *MetadataHandler) Update(partition entities.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, id, ok := parseEntityPath(c)
		if !ok {
			return
		}

		var req UpdateMetadataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrCodeInvalidJSON, "invalid request body")
			return
		}
		if err := entities.ValidateItems(req.Items); err != nil {
			respondError(c, ErrCodeValidation, err.Error())
			return
		}

		metadata, err := h.metadataService.Update(c.Request.Context(), GetRequester(c), class, id, partition, req.Items)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, NewSuccessResponse(MetadataResponse{
			Class:     string(class),
			ID:        id,
			Partition: string(partition),
			Metadata:  metadata,
		}))
	}
}

// Delete handles DELETE /api/v1/:class/:id/metadata and /private-metadata
func (h *MetadataHandler) Delete(partition entities.Partition) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, id, ok := parseEntityPath(c)
		if !ok {
			return
		}

		var req DeleteMetadataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, ErrCodeInvalidJSON, "invalid request body")
			return
		}
		if err := entities.ValidateKeys(req.Keys); err != nil {
			respondError(c, ErrCodeValidation, err.Error())
			return
		}

		metadata, err := h.metadataService.Delete(c.Request.Context(), GetRequester(c), class, id, partition, req.Keys)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, NewSuccessResponse(MetadataResponse{
			Class:     string(class),
			ID:        id,
			Partition: string(partition),
			Metadata:  metadata,
		}))
	}
}

// parseEntityPath extracts and validates the class and ID path parameters.
// Unknown classes are reported as not found, same as missing entities.
func parseEntityPath(c *gin.Context) (entities.ResourceClass, string, bool) {
	class, err := entities.ParseResourceClass(c.Param("class"))
	if err != nil {
		respondError(c, ErrCodeNotFound, "resource not found")
		return "", "", false
	}

	id := c.Param("id")
	if id == "" {
		respondError(c, ErrCodeValidation, "entity ID is required")
		return "", "", false
	}

	return class, id, true
}
