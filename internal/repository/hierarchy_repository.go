package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

// HierarchyRepository reads the assignment columns and organizational
// tables the scope resolver derives accessible sets from. It performs no
// writes and holds no state beyond the connection pool.
type HierarchyRepository struct {
	db *sqlx.DB
}

// NewHierarchyRepository creates a new instance of HierarchyRepository.
func NewHierarchyRepository(db *sqlx.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

// GetUserAssignment returns the raw role and region assignment for a user.
func (r *HierarchyRepository) GetUserAssignment(ctx context.Context, userID string) (*models.UserAssignment, error) {
	const query = `SELECT id, role, school_id, district_id, province_id, zone_id FROM users WHERE id = $1 LIMIT 1`
	var assignment models.UserAssignment
	if err := r.db.GetContext(ctx, &assignment, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get user assignment: %w", err)
	}
	return &assignment, nil
}

// ListAllSchoolIDs returns every school in the store, for unrestricted roles.
func (r *HierarchyRepository) ListAllSchoolIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM schools ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list all school ids: %w", err)
	}
	return ids, nil
}

// ListRegionSchoolIDs returns every school reachable from the assignment:
// the directly assigned school plus any school whose district, province,
// or zone matches. A school matches on any level via OR.
func (r *HierarchyRepository) ListRegionSchoolIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	const query = `SELECT id FROM schools
		WHERE ($1::BIGINT IS NOT NULL AND id = $1)
		   OR ($2::BIGINT IS NOT NULL AND district_id = $2)
		   OR ($3::BIGINT IS NOT NULL AND province_id = $3)
		   OR ($4::BIGINT IS NOT NULL AND zone_id = $4)
		ORDER BY id ASC`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, a.SchoolID, a.DistrictID, a.ProvinceID, a.ZoneID); err != nil {
		return nil, fmt.Errorf("list region school ids: %w", err)
	}
	return ids, nil
}

// ListRegionDistrictIDs returns the districts inside the assigned region.
func (r *HierarchyRepository) ListRegionDistrictIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	const query = `SELECT d.id FROM districts d
		LEFT JOIN provinces p ON p.id = d.province_id
		WHERE ($1::BIGINT IS NOT NULL AND d.id = $1)
		   OR ($2::BIGINT IS NOT NULL AND d.province_id = $2)
		   OR ($3::BIGINT IS NOT NULL AND p.zone_id = $3)
		ORDER BY d.id ASC`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, a.DistrictID, a.ProvinceID, a.ZoneID); err != nil {
		return nil, fmt.Errorf("list region district ids: %w", err)
	}
	return ids, nil
}

// ListRegionProvinceIDs returns the provinces inside the assigned region.
func (r *HierarchyRepository) ListRegionProvinceIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	const query = `SELECT id FROM provinces
		WHERE ($1::BIGINT IS NOT NULL AND id = $1)
		   OR ($2::BIGINT IS NOT NULL AND zone_id = $2)
		ORDER BY id ASC`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, a.ProvinceID, a.ZoneID); err != nil {
		return nil, fmt.Errorf("list region province ids: %w", err)
	}
	return ids, nil
}

// ListSchoolClassIDs returns the classes of the given schools.
func (r *HierarchyRepository) ListSchoolClassIDs(ctx context.Context, schoolIDs []int64) ([]int64, error) {
	if len(schoolIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM classes WHERE school_id IN (?) ORDER BY id ASC`, schoolIDs)
	if err != nil {
		return nil, fmt.Errorf("build class query: %w", err)
	}
	query = r.db.Rebind(query)
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list school class ids: %w", err)
	}
	return ids, nil
}

// ListActiveTeacherClassIDs returns the classes with an active
// teacher-class assignment for the user.
func (r *HierarchyRepository) ListActiveTeacherClassIDs(ctx context.Context, userID string) ([]int64, error) {
	const query = `SELECT class_id FROM teacher_classes WHERE user_id = $1 AND is_active = TRUE ORDER BY class_id ASC`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list active teacher class ids: %w", err)
	}
	return ids, nil
}
