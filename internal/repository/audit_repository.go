package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

const auditColumns = `id, action_type, entity_type, entity_id, role_name, previous_value, new_value, changed_by_user_id, changed_by_role, description, metadata, created_at`

// AuditRepository provides append and read access to the audit trail.
// The application never updates or deletes audit rows.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// insertAuditEntry appends one entry using the given executor, so the
// bulk permission update can share it inside its transaction.
func insertAuditEntry(ctx context.Context, ext sqlx.ExtContext, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO audit_log (id, action_type, entity_type, entity_id, role_name, previous_value, new_value, changed_by_user_id, changed_by_role, description, metadata, created_at)
		VALUES (:id, :action_type, :entity_type, :entity_id, :role_name, :previous_value, :new_value, :changed_by_user_id, :changed_by_role, :description, :metadata, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Create appends a new audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return insertAuditEntry(ctx, r.db, entry)
}

// List returns audit entries matching the filter, newest first, with a
// total count for pagination.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int, error) {
	baseQuery := `FROM audit_log WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ActorID != "" {
		conditions = append(conditions, fmt.Sprintf("changed_by_user_id = $%d", len(args)+1))
		args = append(args, filter.ActorID)
	}
	if filter.EntityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)+1))
		args = append(args, filter.EntityType)
	}
	if filter.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", len(args)+1))
		args = append(args, filter.ActionType)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", auditColumns, baseQuery, pageSize, offset)

	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	return entries, total, nil
}

// Summary builds the rollup over the given window: per-action counts
// plus the number of distinct actors.
func (r *AuditRepository) Summary(ctx context.Context, since time.Time) (*models.AuditSummary, error) {
	const countsQuery = `SELECT action_type, COUNT(*) AS count FROM audit_log WHERE created_at >= $1 GROUP BY action_type ORDER BY count DESC, action_type ASC`
	var counts []models.AuditActionCount
	if err := r.db.SelectContext(ctx, &counts, countsQuery, since); err != nil {
		return nil, fmt.Errorf("audit summary counts: %w", err)
	}

	const actorsQuery = `SELECT COUNT(DISTINCT changed_by_user_id) FROM audit_log WHERE created_at >= $1`
	var actors int
	if err := r.db.GetContext(ctx, &actors, actorsQuery, since); err != nil {
		return nil, fmt.Errorf("audit summary actors: %w", err)
	}

	summary := &models.AuditSummary{
		Since:          since,
		DistinctActors: actors,
		ByActionType:   counts,
	}
	for _, c := range counts {
		summary.TotalEntries += c.Count
	}
	return summary, nil
}
