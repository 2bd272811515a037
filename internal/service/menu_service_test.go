package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

type menuPagesStub struct {
	pages []models.MenuPage
	err   error
	calls int
}

func (s *menuPagesStub) ListMenuPagesForRole(ctx context.Context, role string) ([]models.MenuPage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pages, nil
}

type menuCacheStub struct {
	store    map[string][]byte
	getErr   error
	hits     []string
	sets     []string
	patterns []string
}

func (s *menuCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	return errors.New("miss")
}

func (s *menuCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets = append(s.sets, key)
	return nil
}

func (s *menuCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func menuFixture() []models.MenuPage {
	return []models.MenuPage{
		{ID: 1, Name: "dashboard", Path: "/dashboard", SortOrder: 1, TitleEn: "Dashboard", TitleKm: "ផ្ទាំងគ្រប់គ្រង"},
		{ID: 2, Name: "academics", Path: "/academics", SortOrder: 2, IsParentMenu: true, TitleEn: "Academics"},
		{ID: 3, Name: "grades", Path: "/academics/grades", ParentPageID: int64Ptr(2), SortOrder: 2, TitleEn: "Grades"},
		{ID: 4, Name: "attendance", Path: "/academics/attendance", ParentPageID: int64Ptr(2), SortOrder: 1, TitleEn: "Attendance"},
		// Parent id 99 is not in the allowed set: the child must vanish.
		{ID: 5, Name: "orphan", Path: "/orphan", ParentPageID: int64Ptr(99), SortOrder: 1, TitleEn: "Orphan"},
		// A parent stub with no surviving children gets pruned.
		{ID: 6, Name: "empty-parent", Path: "/empty", SortOrder: 3, IsParentMenu: true, TitleEn: "Empty"},
	}
}

func TestBuildMenuAssemblesTree(t *testing.T) {
	pages := &menuPagesStub{pages: menuFixture()}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleTeacher, "en")
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, "dashboard", tree[0].Name)
	assert.Equal(t, "academics", tree[1].Name)

	children := tree[1].Children
	require.Len(t, children, 2)
	// Siblings ordered by sort_order.
	assert.Equal(t, "attendance", children[0].Name)
	assert.Equal(t, "grades", children[1].Name)
}

func TestBuildMenuKeepsNestedLevels(t *testing.T) {
	fixture := append(menuFixture(),
		models.MenuPage{ID: 7, Name: "grade-detail", Path: "/academics/grades/detail", ParentPageID: int64Ptr(3), SortOrder: 1, TitleEn: "Grade Detail"},
	)
	pages := &menuPagesStub{pages: fixture}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleTeacher, "en")
	require.NoError(t, err)

	require.Len(t, tree, 2)
	children := tree[1].Children
	require.Len(t, children, 2)
	grades := children[1]
	require.Equal(t, "grades", grades.Name)
	require.Len(t, grades.Children, 1)
	assert.Equal(t, "grade-detail", grades.Children[0].Name)
}

func TestBuildMenuPrunesEmptyParentChains(t *testing.T) {
	// A parent stub whose only child is itself a childless stub: both go.
	pages := &menuPagesStub{pages: []models.MenuPage{
		{ID: 1, Name: "dashboard", Path: "/dashboard", SortOrder: 1, TitleEn: "Dashboard"},
		{ID: 2, Name: "reports", Path: "/reports", SortOrder: 2, IsParentMenu: true, TitleEn: "Reports"},
		{ID: 3, Name: "archive", Path: "/reports/archive", ParentPageID: int64Ptr(2), SortOrder: 1, IsParentMenu: true, TitleEn: "Archive"},
	}}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleTeacher, "en")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "dashboard", tree[0].Name)
}

func TestBuildMenuDropsDanglingChildren(t *testing.T) {
	pages := &menuPagesStub{pages: menuFixture()}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleTeacher, "en")
	require.NoError(t, err)

	var names []string
	var walk func(items []models.MenuItem)
	walk = func(items []models.MenuItem) {
		for _, item := range items {
			names = append(names, item.Name)
			walk(item.Children)
		}
	}
	walk(tree)
	assert.NotContains(t, names, "orphan")
	assert.NotContains(t, names, "empty-parent")
}

func TestBuildMenuRewritesDashboardPath(t *testing.T) {
	pages := &menuPagesStub{pages: menuFixture()}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleDirector, "en")
	require.NoError(t, err)
	require.NotEmpty(t, tree)
	assert.Equal(t, "/director", tree[0].Path)

	tree, err = service.BuildMenu(context.Background(), models.RoleAdmin, "en")
	require.NoError(t, err)
	assert.Equal(t, "/admin", tree[0].Path)
}

func TestBuildMenuLocalizesLabels(t *testing.T) {
	pages := &menuPagesStub{pages: menuFixture()}
	service := NewMenuService(pages, nil, time.Minute, nil)

	tree, err := service.BuildMenu(context.Background(), models.RoleTeacher, "km")
	require.NoError(t, err)
	require.NotEmpty(t, tree)
	assert.Equal(t, "ផ្ទាំងគ្រប់គ្រង", tree[0].Label)
	// Pages without a Khmer title keep the English one.
	assert.Equal(t, "Academics", tree[1].Label)
}

func TestBuildMenuCachesPerRoleAndLocale(t *testing.T) {
	pages := &menuPagesStub{pages: menuFixture()}
	cache := &menuCacheStub{}
	service := NewMenuService(pages, cache, time.Minute, nil)

	_, err := service.BuildMenu(context.Background(), "Teacher", "en")
	require.NoError(t, err)
	require.Len(t, cache.sets, 1)
	assert.Equal(t, "menu:teacher:en", cache.sets[0])
}

func TestInvalidateRoleDropsEveryLocale(t *testing.T) {
	cache := &menuCacheStub{}
	service := NewMenuService(&menuPagesStub{}, cache, time.Minute, nil)

	service.InvalidateRole(context.Background(), "Teacher")
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "menu:teacher:*", cache.patterns[0])
}

func TestBuildMenuStoreError(t *testing.T) {
	pages := &menuPagesStub{err: errors.New("connection reset")}
	service := NewMenuService(pages, nil, time.Minute, nil)

	_, err := service.BuildMenu(context.Background(), models.RoleTeacher, "en")
	require.Error(t, err)
}
