package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, *models.Pagination, error)
	Summary(ctx context.Context) (*models.AuditSummary, error)
	ExportCSV(ctx context.Context, filter models.AuditFilter) ([]byte, error)
	ExportPDF(ctx context.Context, filter models.AuditFilter) ([]byte, error)
}

// AuditHandler serves the admin reporting view over the audit trail.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler builds a new handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary List audit entries
// @Tags Audit
// @Produce json
// @Param actor_id query string false "Filter by acting user"
// @Param entity_type query string false "Filter by entity type"
// @Param action_type query string false "Filter by action type"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, pagination)
}

// Summary godoc
// @Summary Roll up recent audit activity by action type
// @Tags Audit
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /audit/summary [get]
func (h *AuditHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportCSV godoc
// @Summary Export the filtered audit trail as CSV
// @Tags Audit
// @Produce text/csv
// @Success 200 {file} file
// @Router /audit/export/csv [get]
func (h *AuditHandler) ExportCSV(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="audit-trail.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export the filtered audit trail as PDF
// @Tags Audit
// @Produce application/pdf
// @Success 200 {file} file
// @Router /audit/export/pdf [get]
func (h *AuditHandler) ExportPDF(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.ExportPDF(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="audit-trail.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

func parseAuditFilter(c *gin.Context) (models.AuditFilter, error) {
	filter := models.AuditFilter{
		ActorID:    c.Query("actor_id"),
		EntityType: c.Query("entity_type"),
		ActionType: c.Query("action_type"),
	}

	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339")
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339")
		}
		filter.To = &ts
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
		}
		filter.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "page_size must be a positive integer")
		}
		filter.PageSize = size
	}

	return filter, nil
}
