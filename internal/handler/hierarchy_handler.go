package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/response"
)

type hierarchyService interface {
	GetUserHierarchy(ctx context.Context, userID string) (*models.UserHierarchy, error)
}

// HierarchyHandler exposes scope introspection for list endpoints.
type HierarchyHandler struct {
	service hierarchyService
}

// NewHierarchyHandler builds a new handler.
func NewHierarchyHandler(service hierarchyService) *HierarchyHandler {
	return &HierarchyHandler{service: service}
}

// Get godoc
// @Summary Resolve the caller's organizational scope
// @Tags Hierarchy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hierarchy [get]
func (h *HierarchyHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	hierarchy, err := h.service.GetUserHierarchy(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, hierarchy, nil)
}
