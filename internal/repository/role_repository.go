package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

// RoleRepository provides database access to the role registry.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByName returns a role by its canonical name, matched case-insensitively.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	const query = `SELECT id, name, hierarchy_level, can_manage_hierarchy, max_hierarchy_depth, created_at, updated_at FROM roles WHERE name = LOWER($1) LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return &role, nil
}

// List returns all roles ordered by hierarchy level, broadest first.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	const query = `SELECT id, name, hierarchy_level, can_manage_hierarchy, max_hierarchy_depth, created_at, updated_at FROM roles ORDER BY hierarchy_level ASC, name ASC`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// Create inserts a new role. The name must already be canonicalized.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now

	const query = `INSERT INTO roles (name, hierarchy_level, can_manage_hierarchy, max_hierarchy_depth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, role.Name, role.HierarchyLevel, role.CanManageHierarchy, role.MaxHierarchyDepth, role.CreatedAt, role.UpdatedAt).Scan(&role.ID); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Delete removes a role by id.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM roles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUsers returns how many users currently reference the role name.
func (r *RoleRepository) CountUsers(ctx context.Context, name string) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = LOWER($1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, name); err != nil {
		return 0, fmt.Errorf("count users for role: %w", err)
	}
	return count, nil
}
