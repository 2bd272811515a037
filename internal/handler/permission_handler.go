package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	"github.com/noah-isme/edu-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/response"
)

type permissionService interface {
	CanAccessPage(ctx context.Context, role, pageName string) (bool, error)
	CanPerformAction(ctx context.Context, role, pageName, action string) (bool, error)
	ActionsForPage(ctx context.Context, role, pageName string) (map[string]bool, error)
	AvailableActions() []string
	BulkUpdate(ctx context.Context, req service.BulkPermissionRequest, actor *models.JWTClaims) error
}

// PermissionHandler exposes the resolver and the admin bulk update.
type PermissionHandler struct {
	service permissionService
}

// NewPermissionHandler builds a new handler.
func NewPermissionHandler(service permissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

// CheckPage godoc
// @Summary Check page access for the caller's role
// @Tags Permissions
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} response.Envelope
// @Router /permissions/pages/{page} [get]
func (h *PermissionHandler) CheckPage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	allowed, err := h.service.CanAccessPage(c.Request.Context(), claims.Role, c.Param("page"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"page": c.Param("page"), "allowed": allowed}, nil)
}

// CheckAction godoc
// @Summary Check a single action on a page for the caller's role
// @Tags Permissions
// @Produce json
// @Param page path string true "Page name"
// @Param action path string true "Action name"
// @Success 200 {object} response.Envelope
// @Router /permissions/pages/{page}/actions/{action} [get]
func (h *PermissionHandler) CheckAction(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	allowed, err := h.service.CanPerformAction(c.Request.Context(), claims.Role, c.Param("page"), c.Param("action"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"page":    c.Param("page"),
		"action":  c.Param("action"),
		"allowed": allowed,
	}, nil)
}

// ListActions godoc
// @Summary Resolve every action on a page for the caller's role
// @Tags Permissions
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} response.Envelope
// @Router /permissions/pages/{page}/actions [get]
func (h *PermissionHandler) ListActions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	actions, err := h.service.ActionsForPage(c.Request.Context(), claims.Role, c.Param("page"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"page": c.Param("page"), "actions": actions}, nil)
}

// AvailableActions godoc
// @Summary List the fixed action set
// @Tags Permissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /permissions/actions [get]
func (h *PermissionHandler) AvailableActions(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.AvailableActions(), nil)
}

// BulkUpdate godoc
// @Summary Apply a transactional batch of permission rows for one role
// @Tags Permissions
// @Accept json
// @Produce json
// @Param payload body service.BulkPermissionRequest true "Bulk permission payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /permissions/bulk [put]
func (h *PermissionHandler) BulkUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.BulkPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.BulkUpdate(c.Request.Context(), req, claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
