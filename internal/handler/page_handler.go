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

type pageService interface {
	Get(ctx context.Context, name string) (*models.Page, error)
	List(ctx context.Context) ([]models.Page, error)
	Create(ctx context.Context, req service.CreatePageRequest, actor *models.JWTClaims) (*models.Page, error)
	Update(ctx context.Context, name string, req service.UpdatePageRequest, actor *models.JWTClaims) (*models.Page, error)
}

// PageHandler exposes the page catalog admin surface.
type PageHandler struct {
	service pageService
}

// NewPageHandler builds a new handler.
func NewPageHandler(service pageService) *PageHandler {
	return &PageHandler{service: service}
}

// List godoc
// @Summary List the page catalog
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages [get]
func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

// Get godoc
// @Summary Get page by name
// @Tags Pages
// @Produce json
// @Param name path string true "Page name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{name} [get]
func (h *PageHandler) Get(c *gin.Context) {
	page, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Create godoc
// @Summary Register a page
// @Tags Pages
// @Accept json
// @Produce json
// @Param payload body service.CreatePageRequest true "Create page payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pages [post]
func (h *PageHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	page, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, page)
}

// Update godoc
// @Summary Update a page
// @Tags Pages
// @Accept json
// @Produce json
// @Param name path string true "Page name"
// @Param payload body service.UpdatePageRequest true "Update page payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pages/{name} [put]
func (h *PageHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	page, err := h.service.Update(c.Request.Context(), c.Param("name"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, page, nil)
}
