package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

const pageColumns = `id, name, path, icon, parent_page_id, sort_order, is_parent_menu, menu_level, is_displayed_in_menu, title_en, title_km, created_at, updated_at`

// PageRepository provides database access to the page catalog.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new instance of PageRepository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// FindByName returns a page by its unique name.
func (r *PageRepository) FindByName(ctx context.Context, name string) (*models.Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM pages WHERE name = $1 LIMIT 1`, pageColumns)
	var page models.Page
	if err := r.db.GetContext(ctx, &page, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find page by name: %w", err)
	}
	return &page, nil
}

// FindByID returns a page by identifier.
func (r *PageRepository) FindByID(ctx context.Context, id int64) (*models.Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM pages WHERE id = $1 LIMIT 1`, pageColumns)
	var page models.Page
	if err := r.db.GetContext(ctx, &page, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return &page, nil
}

// List returns the full page catalog ordered for menu assembly.
func (r *PageRepository) List(ctx context.Context) ([]models.Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM pages ORDER BY menu_level ASC, sort_order ASC, name ASC`, pageColumns)
	var pages []models.Page
	if err := r.db.SelectContext(ctx, &pages, query); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// Create inserts a new page.
func (r *PageRepository) Create(ctx context.Context, page *models.Page) error {
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now

	const query = `INSERT INTO pages (name, path, icon, parent_page_id, sort_order, is_parent_menu, menu_level, is_displayed_in_menu, title_en, title_km, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		page.Name, page.Path, page.Icon, page.ParentPageID, page.SortOrder,
		page.IsParentMenu, page.MenuLevel, page.IsDisplayedInMenu,
		page.TitleEn, page.TitleKm, page.CreatedAt, page.UpdatedAt,
	).Scan(&page.ID); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// Update rewrites the mutable page attributes.
func (r *PageRepository) Update(ctx context.Context, page *models.Page) error {
	page.UpdatedAt = time.Now().UTC()

	const query = `UPDATE pages SET name = $2, path = $3, icon = $4, parent_page_id = $5, sort_order = $6, is_parent_menu = $7, menu_level = $8, is_displayed_in_menu = $9, title_en = $10, title_km = $11, updated_at = $12 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		page.ID, page.Name, page.Path, page.Icon, page.ParentPageID, page.SortOrder,
		page.IsParentMenu, page.MenuLevel, page.IsDisplayedInMenu,
		page.TitleEn, page.TitleKm, page.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListMenuPagesForRole returns the pages visible to a role in the menu:
// every page with an explicit allow row that is flagged for menu display.
func (r *PageRepository) ListMenuPagesForRole(ctx context.Context, role string) ([]models.MenuPage, error) {
	const query = `SELECT p.id, p.name, p.path, p.icon, p.parent_page_id, p.sort_order, p.is_parent_menu, p.menu_level, p.title_en, p.title_km
		FROM pages p
		INNER JOIN page_permissions pp ON pp.page_id = p.id AND pp.role = $1
		WHERE pp.is_allowed = TRUE AND p.is_displayed_in_menu = TRUE
		ORDER BY p.menu_level ASC, p.sort_order ASC, p.name ASC`
	var pages []models.MenuPage
	if err := r.db.SelectContext(ctx, &pages, query, role); err != nil {
		return nil, fmt.Errorf("list menu pages for role: %w", err)
	}
	return pages, nil
}
