package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type hierarchyRepository interface {
	GetUserAssignment(ctx context.Context, userID string) (*models.UserAssignment, error)
	ListAllSchoolIDs(ctx context.Context) ([]int64, error)
	ListRegionSchoolIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error)
	ListRegionDistrictIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error)
	ListRegionProvinceIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error)
	ListSchoolClassIDs(ctx context.Context, schoolIDs []int64) ([]int64, error)
	ListActiveTeacherClassIDs(ctx context.Context, userID string) ([]int64, error)
}

// HierarchyService derives the organizational scope a user may see.
// Scopes are recomputed from the store on every call and never cached.
type HierarchyService struct {
	repo   hierarchyRepository
	logger *zap.Logger
}

// NewHierarchyService creates an instance of HierarchyService.
func NewHierarchyService(repo hierarchyRepository, logger *zap.Logger) *HierarchyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HierarchyService{repo: repo, logger: logger}
}

// GetUserHierarchy computes the accessible entity sets for a user.
// Admin is unrestricted; director and partner expand to every descendant
// of their assigned region; teachers get exactly their active classes;
// collectors resolve to an empty scope for individual-level data.
func (s *HierarchyService) GetUserHierarchy(ctx context.Context, userID string) (*models.UserHierarchy, error) {
	assignment, err := s.repo.GetUserAssignment(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user assignment")
	}

	role := models.CanonicalRole(assignment.Role)
	hierarchy := &models.UserHierarchy{UserID: userID, Role: role}

	switch role {
	case models.RoleAdmin:
		hierarchy.Unrestricted = true
		schools, err := s.repo.ListAllSchoolIDs(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
		}
		hierarchy.AccessibleSchools = schools

	case models.RoleDirector, models.RolePartner:
		schools, err := s.repo.ListRegionSchoolIDs(ctx, assignment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list region schools")
		}
		districts, err := s.repo.ListRegionDistrictIDs(ctx, assignment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list region districts")
		}
		provinces, err := s.repo.ListRegionProvinceIDs(ctx, assignment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list region provinces")
		}
		classes, err := s.repo.ListSchoolClassIDs(ctx, schools)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list region classes")
		}
		hierarchy.AccessibleSchools = schools
		hierarchy.AccessibleDistricts = districts
		hierarchy.AccessibleProvinces = provinces
		hierarchy.AccessibleClasses = classes
		if assignment.ZoneID != nil {
			hierarchy.AccessibleZones = []int64{*assignment.ZoneID}
		}

	case models.RoleTeacher:
		classes, err := s.repo.ListActiveTeacherClassIDs(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher classes")
		}
		hierarchy.AccessibleClasses = classes

	case models.RoleCollector:
		// Collectors are excluded from individual-level data entirely,
		// regardless of any school assignment they carry.

	default:
		// Unknown roles resolve to the empty scope: every filter built
		// from it denies.
	}

	return hierarchy, nil
}

// SchoolScope restricts a query's school column to the hierarchy.
// argOffset is the number of bind arguments already consumed.
func (s *HierarchyService) SchoolScope(h *models.UserHierarchy, column string, argOffset int) models.ScopeCondition {
	if h.Unrestricted {
		return models.MatchAll()
	}
	return models.MatchIDs(column, h.AccessibleSchools, argOffset)
}

// ClassScope restricts a query's class column to the hierarchy.
func (s *HierarchyService) ClassScope(h *models.UserHierarchy, column string, argOffset int) models.ScopeCondition {
	if h.Unrestricted {
		return models.MatchAll()
	}
	return models.MatchIDs(column, h.AccessibleClasses, argOffset)
}

// StudentScope restricts student-level queries. Collectors always get
// the deny-all condition here, and any role without an applicable set
// falls through to deny rather than to an unfiltered query.
func (s *HierarchyService) StudentScope(h *models.UserHierarchy, schoolColumn, classColumn string, argOffset int) models.ScopeCondition {
	if h.Role == models.RoleCollector {
		return models.MatchNone()
	}
	if h.Unrestricted {
		return models.MatchAll()
	}
	if len(h.AccessibleClasses) > 0 && h.Role == models.RoleTeacher {
		return models.MatchIDs(classColumn, h.AccessibleClasses, argOffset)
	}
	return models.MatchIDs(schoolColumn, h.AccessibleSchools, argOffset)
}
