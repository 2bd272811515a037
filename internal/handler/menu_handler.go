package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/response"
)

type menuService interface {
	BuildMenu(ctx context.Context, role, locale string) ([]models.MenuItem, error)
}

// MenuHandler serves the per-session navigation tree.
type MenuHandler struct {
	service menuService
}

// NewMenuHandler builds a new handler.
func NewMenuHandler(service menuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// Get godoc
// @Summary Build the navigation menu for the caller's role
// @Tags Menu
// @Produce json
// @Param locale query string false "Label locale (en, km)"
// @Success 200 {object} response.Envelope
// @Router /menu [get]
func (h *MenuHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tree, err := h.service.BuildMenu(c.Request.Context(), claims.Role, c.Query("locale"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tree, nil)
}
