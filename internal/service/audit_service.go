package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/export"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int, error)
	Summary(ctx context.Context, since time.Time) (*models.AuditSummary, error)
}

// AuditService exposes the reporting view over the append-only trail.
type AuditService struct {
	repo          auditRepository
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	summaryWindow time.Duration
	exportMaxRows int
	logger        *zap.Logger
}

// NewAuditService creates an instance of AuditService.
func NewAuditService(repo auditRepository, csv *export.CSVExporter, pdf *export.PDFExporter, summaryWindow time.Duration, exportMaxRows int, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaryWindow <= 0 {
		summaryWindow = 30 * 24 * time.Hour
	}
	if exportMaxRows <= 0 {
		exportMaxRows = 5000
	}
	return &AuditService{repo: repo, csv: csv, pdf: pdf, summaryWindow: summaryWindow, exportMaxRows: exportMaxRows, logger: logger}
}

// Record appends an audit entry.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditEntry) error {
	if err := s.repo.Create(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record audit entry")
	}
	return nil
}

// Create satisfies the recorder interface the other services depend on.
func (s *AuditService) Create(ctx context.Context, entry *models.AuditEntry) error {
	return s.Record(ctx, entry)
}

// List returns audit entries for the admin reporting view.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit entries")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Summary returns the rollup over the configured window (30 days by
// default): counts per action type and distinct actors.
func (s *AuditService) Summary(ctx context.Context) (*models.AuditSummary, error) {
	since := time.Now().UTC().Add(-s.summaryWindow)
	summary, err := s.repo.Summary(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build audit summary")
	}
	return summary, nil
}

// ExportCSV renders the filtered trail as CSV.
func (s *AuditService) ExportCSV(ctx context.Context, filter models.AuditFilter) ([]byte, error) {
	dataset, err := s.dataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render audit csv")
	}
	return payload, nil
}

// ExportPDF renders the filtered trail as a tabular PDF report.
func (s *AuditService) ExportPDF(ctx context.Context, filter models.AuditFilter) ([]byte, error) {
	dataset, err := s.dataset(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, "Audit Trail")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render audit pdf")
	}
	return payload, nil
}

func (s *AuditService) dataset(ctx context.Context, filter models.AuditFilter) (*export.Dataset, error) {
	filter.Page = 1
	filter.PageSize = s.exportMaxRows

	entries, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit entries for export")
	}

	headers := []string{"ID", "Action", "Entity", "Role", "Actor", "Actor Role", "Description", "Created At"}
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		roleName := ""
		if e.RoleName != nil {
			roleName = *e.RoleName
		}
		rows = append(rows, map[string]string{
			"ID":          e.ID,
			"Action":      e.ActionType,
			"Entity":      e.EntityType,
			"Role":        roleName,
			"Actor":       e.ChangedByUserID,
			"Actor Role":  e.ChangedByRole,
			"Description": e.Description,
			"Created At":  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.logger.Debug("audit export dataset built", zap.Int("rows", len(rows)))
	return &export.Dataset{Headers: headers, Rows: rows}, nil
}
