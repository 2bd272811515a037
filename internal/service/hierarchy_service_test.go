package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type hierarchyRepoStub struct {
	assignment     *models.UserAssignment
	allSchools     []int64
	regionSchools  []int64
	regionDistrict []int64
	regionProvince []int64
	schoolClasses  []int64
	teacherClasses []int64
	err            error
}

func (s *hierarchyRepoStub) GetUserAssignment(ctx context.Context, userID string) (*models.UserAssignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.assignment == nil {
		return nil, sql.ErrNoRows
	}
	return s.assignment, nil
}

func (s *hierarchyRepoStub) ListAllSchoolIDs(ctx context.Context) ([]int64, error) {
	return s.allSchools, nil
}

func (s *hierarchyRepoStub) ListRegionSchoolIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	return s.regionSchools, nil
}

func (s *hierarchyRepoStub) ListRegionDistrictIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	return s.regionDistrict, nil
}

func (s *hierarchyRepoStub) ListRegionProvinceIDs(ctx context.Context, a *models.UserAssignment) ([]int64, error) {
	return s.regionProvince, nil
}

func (s *hierarchyRepoStub) ListSchoolClassIDs(ctx context.Context, schoolIDs []int64) ([]int64, error) {
	return s.schoolClasses, nil
}

func (s *hierarchyRepoStub) ListActiveTeacherClassIDs(ctx context.Context, userID string) ([]int64, error) {
	return s.teacherClasses, nil
}

func TestGetUserHierarchyAdminUnrestricted(t *testing.T) {
	repo := &hierarchyRepoStub{
		assignment: &models.UserAssignment{UserID: "u1", Role: models.RoleAdmin},
		allSchools: []int64{1, 2, 3},
	}
	service := NewHierarchyService(repo, nil)

	h, err := service.GetUserHierarchy(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, h.Unrestricted)
	assert.Equal(t, []int64{1, 2, 3}, h.AccessibleSchools)
}

func TestGetUserHierarchyDirectorRegion(t *testing.T) {
	zone := int64(4)
	repo := &hierarchyRepoStub{
		assignment:     &models.UserAssignment{UserID: "u2", Role: models.RoleDirector, ZoneID: &zone},
		regionSchools:  []int64{10, 11},
		regionDistrict: []int64{5},
		regionProvince: []int64{2},
		schoolClasses:  []int64{100, 101, 102},
	}
	service := NewHierarchyService(repo, nil)

	h, err := service.GetUserHierarchy(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, h.Unrestricted)
	assert.Equal(t, []int64{10, 11}, h.AccessibleSchools)
	assert.Equal(t, []int64{5}, h.AccessibleDistricts)
	assert.Equal(t, []int64{2}, h.AccessibleProvinces)
	assert.Equal(t, []int64{100, 101, 102}, h.AccessibleClasses)
	assert.Equal(t, []int64{4}, h.AccessibleZones)
}

func TestGetUserHierarchyTeacherActiveClassesOnly(t *testing.T) {
	repo := &hierarchyRepoStub{
		assignment:     &models.UserAssignment{UserID: "u3", Role: models.RoleTeacher},
		teacherClasses: []int64{42},
	}
	service := NewHierarchyService(repo, nil)

	h, err := service.GetUserHierarchy(context.Background(), "u3")
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, h.AccessibleClasses)
	assert.Empty(t, h.AccessibleSchools)
}

func TestGetUserHierarchyCollectorEmptyScope(t *testing.T) {
	school := int64(9)
	repo := &hierarchyRepoStub{
		assignment: &models.UserAssignment{UserID: "u4", Role: models.RoleCollector, SchoolID: &school},
	}
	service := NewHierarchyService(repo, nil)

	h, err := service.GetUserHierarchy(context.Background(), "u4")
	require.NoError(t, err)
	assert.False(t, h.Unrestricted)
	assert.Empty(t, h.AccessibleSchools)
	assert.Empty(t, h.AccessibleClasses)
}

func TestGetUserHierarchyUnknownUser(t *testing.T) {
	service := NewHierarchyService(&hierarchyRepoStub{}, nil)

	_, err := service.GetUserHierarchy(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSchoolScopeUnrestricted(t *testing.T) {
	service := NewHierarchyService(&hierarchyRepoStub{}, nil)

	cond := service.SchoolScope(&models.UserHierarchy{Unrestricted: true}, "s.id", 0)
	assert.Equal(t, "TRUE", cond.SQL)
	assert.Empty(t, cond.Args)
}

func TestSchoolScopeEmptySetDeniesAll(t *testing.T) {
	service := NewHierarchyService(&hierarchyRepoStub{}, nil)

	cond := service.SchoolScope(&models.UserHierarchy{Role: models.RoleDirector}, "s.id", 0)
	assert.Equal(t, "1=0", cond.SQL)
}

func TestStudentScopeCollectorAlwaysDenied(t *testing.T) {
	service := NewHierarchyService(&hierarchyRepoStub{}, nil)

	h := &models.UserHierarchy{
		Role:              models.RoleCollector,
		AccessibleSchools: []int64{1, 2},
	}
	cond := service.StudentScope(h, "st.school_id", "st.class_id", 0)
	assert.Equal(t, "1=0", cond.SQL)
}

func TestStudentScopeTeacherUsesClasses(t *testing.T) {
	service := NewHierarchyService(&hierarchyRepoStub{}, nil)

	h := &models.UserHierarchy{
		Role:              models.RoleTeacher,
		AccessibleClasses: []int64{7},
	}
	cond := service.StudentScope(h, "st.school_id", "st.class_id", 2)
	assert.Equal(t, "st.class_id = ANY($3)", cond.SQL)
	require.Len(t, cond.Args, 1)
}
