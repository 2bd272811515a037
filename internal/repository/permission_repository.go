package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

// PermissionRepository provides database access to the page and action
// permission tables. Reads surface the tri-state row semantics; the only
// write path is the transactional bulk update.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// GetPagePermission returns the explicit page row decision for (role, page).
// A missing row maps to DecisionUnset, never to a deny.
func (r *PermissionRepository) GetPagePermission(ctx context.Context, role string, pageID int64) (models.Decision, error) {
	const query = `SELECT is_allowed FROM page_permissions WHERE role = $1 AND page_id = $2 LIMIT 1`
	var isAllowed bool
	if err := r.db.GetContext(ctx, &isAllowed, query, role, pageID); err != nil {
		if err == sql.ErrNoRows {
			return models.DecisionUnset, nil
		}
		return models.DecisionUnset, fmt.Errorf("get page permission: %w", err)
	}
	return models.DecisionFrom(&isAllowed), nil
}

// GetActionPermission returns the explicit action row decision for
// (page, role, action), with the same null-fallback semantics.
func (r *PermissionRepository) GetActionPermission(ctx context.Context, pageID int64, role, action string) (models.Decision, error) {
	const query = `SELECT is_allowed FROM action_permissions WHERE page_id = $1 AND role = $2 AND action_name = $3 LIMIT 1`
	var isAllowed bool
	if err := r.db.GetContext(ctx, &isAllowed, query, pageID, role, action); err != nil {
		if err == sql.ErrNoRows {
			return models.DecisionUnset, nil
		}
		return models.DecisionUnset, fmt.Errorf("get action permission: %w", err)
	}
	return models.DecisionFrom(&isAllowed), nil
}

// ListActionPermissions returns every explicit action row for (page, role),
// used by the batch resolver to answer a full page load in one query.
func (r *PermissionRepository) ListActionPermissions(ctx context.Context, pageID int64, role string) ([]models.ActionPermission, error) {
	const query = `SELECT id, page_id, role, action_name, is_allowed, created_at, updated_at FROM action_permissions WHERE page_id = $1 AND role = $2`
	var rows []models.ActionPermission
	if err := r.db.SelectContext(ctx, &rows, query, pageID, role); err != nil {
		return nil, fmt.Errorf("list action permissions: %w", err)
	}
	return rows, nil
}

// ListPagePermissionsForRole returns every explicit page row for a role.
func (r *PermissionRepository) ListPagePermissionsForRole(ctx context.Context, role string) ([]models.PagePermission, error) {
	const query = `SELECT id, role, page_id, is_allowed, created_at, updated_at FROM page_permissions WHERE role = $1 ORDER BY page_id ASC`
	var rows []models.PagePermission
	if err := r.db.SelectContext(ctx, &rows, query, role); err != nil {
		return nil, fmt.Errorf("list page permissions for role: %w", err)
	}
	return rows, nil
}

// BulkUpdate applies a batch of (role, page) permission rows atomically.
// Either every submitted row is upserted and the audit entry is written,
// or the whole transaction rolls back. A batch naming a page id that is
// not in the catalog fails with sql.ErrNoRows before any write.
func (r *PermissionRepository) BulkUpdate(ctx context.Context, role string, entries []models.PermissionEntry, audit *models.AuditEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk permission tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pageIDs := make([]int64, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PageID]; ok {
			continue
		}
		seen[e.PageID] = struct{}{}
		pageIDs = append(pageIDs, e.PageID)
	}

	var known int
	if err = tx.GetContext(ctx, &known, `SELECT COUNT(*) FROM pages WHERE id = ANY($1)`, pq.Array(pageIDs)); err != nil {
		return fmt.Errorf("verify page ids: %w", err)
	}
	if known != len(pageIDs) {
		err = sql.ErrNoRows
		return err
	}

	now := time.Now().UTC()
	const upsertPage = `INSERT INTO page_permissions (role, page_id, is_allowed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (role, page_id) DO UPDATE SET is_allowed = EXCLUDED.is_allowed, updated_at = EXCLUDED.updated_at`
	const upsertAction = `INSERT INTO action_permissions (page_id, role, action_name, is_allowed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (page_id, role, action_name) DO UPDATE SET is_allowed = EXCLUDED.is_allowed, updated_at = EXCLUDED.updated_at`

	for _, e := range entries {
		if _, err = tx.ExecContext(ctx, upsertPage, role, e.PageID, e.IsAllowed, now); err != nil {
			return fmt.Errorf("upsert page permission: %w", err)
		}
		for _, action := range models.AvailableActions {
			isAllowed, ok := e.Actions[action]
			if !ok {
				continue
			}
			if _, err = tx.ExecContext(ctx, upsertAction, e.PageID, role, action, isAllowed, now); err != nil {
				return fmt.Errorf("upsert action permission: %w", err)
			}
		}
	}

	if audit != nil {
		if err = insertAuditEntry(ctx, tx, audit); err != nil {
			return fmt.Errorf("write bulk update audit entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk permission tx: %w", err)
	}
	return nil
}
