package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

// dashboardPaths rewrites the shared dashboard page to the concrete
// per-role landing URL. A relabeling step, not a permission decision.
var dashboardPaths = map[string]string{
	models.RoleAdmin:       "/admin",
	models.RoleDirector:    "/director",
	models.RolePartner:     "/partner",
	models.RoleCoordinator: "/coordinator",
	models.RoleTeacher:     "/teacher",
	models.RoleCollector:   "/collector",
}

const dashboardPageName = "dashboard"

type menuPageRepository interface {
	ListMenuPagesForRole(ctx context.Context, role string) ([]models.MenuPage, error)
}

type menuCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// MenuService assembles the navigation tree from flat permission rows.
type MenuService struct {
	pages  menuPageRepository
	cache  menuCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewMenuService creates an instance of MenuService. The cache is
// optional; a nil cache disables memoization entirely.
func NewMenuService(pages menuPageRepository, cache menuCache, ttl time.Duration, logger *zap.Logger) *MenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{pages: pages, cache: cache, ttl: ttl, logger: logger}
}

// BuildMenu returns the sorted parent/child tree of pages the role may
// see. Children whose parent was filtered out are dropped, and parent
// stubs left with no children are pruned.
func (s *MenuService) BuildMenu(ctx context.Context, role, locale string) ([]models.MenuItem, error) {
	role = models.CanonicalRole(role)
	if locale == "" {
		locale = "en"
	}

	cacheKey := menuCacheKey(role, locale)
	if s.cache != nil {
		var cached []models.MenuItem
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	pages, err := s.pages.ListMenuPagesForRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu pages")
	}

	tree := assembleMenu(pages, role, locale)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, tree, s.ttl); err != nil {
			s.logger.Warn("failed to cache menu tree", zap.String("role", role), zap.Error(err))
		}
	}
	return tree, nil
}

// InvalidateRole drops every cached menu variant for the role. Called
// after a permission bulk update commits.
func (s *MenuService) InvalidateRole(ctx context.Context, role string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("menu:%s:*", models.CanonicalRole(role))
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate menu cache", zap.String("role", role), zap.Error(err))
	}
}

func menuCacheKey(role, locale string) string {
	return fmt.Sprintf("menu:%s:%s", role, locale)
}

// assembleMenu builds the tree arena-style: nodes live in one slice,
// children are found through an index keyed by parent id. No pointer
// cycles, so the "no dangling children" invariant stays checkable.
func assembleMenu(pages []models.MenuPage, role, locale string) []models.MenuItem {
	allowed := make(map[int64]int, len(pages))
	for i, p := range pages {
		allowed[p.ID] = i
	}

	childIndex := make(map[int64][]int)
	var rootIndex []int
	for i, p := range pages {
		if p.ParentPageID == nil {
			rootIndex = append(rootIndex, i)
			continue
		}
		if _, ok := allowed[*p.ParentPageID]; !ok {
			// Parent filtered out: the child never surfaces, even though
			// it may remain independently routable.
			continue
		}
		childIndex[*p.ParentPageID] = append(childIndex[*p.ParentPageID], i)
	}

	// Subtrees build depth-first so the menu keeps the catalog's full
	// nesting. Pruning cascades: a parent stub whose children were all
	// pruned is itself pruned.
	var build func(i int) (models.MenuItem, bool)
	build = func(i int) (models.MenuItem, bool) {
		page := pages[i]
		node := toMenuItem(page, role, locale)
		for _, childIdx := range childIndex[page.ID] {
			if child, ok := build(childIdx); ok {
				node.Children = append(node.Children, child)
			}
		}
		if page.IsParentMenu && len(node.Children) == 0 {
			// A parent-only stub with nothing under it is useless.
			return models.MenuItem{}, false
		}
		sortMenuItems(node.Children)
		return node, true
	}

	items := make([]models.MenuItem, 0, len(rootIndex))
	for _, i := range rootIndex {
		if node, ok := build(i); ok {
			items = append(items, node)
		}
	}
	sortMenuItems(items)
	return items
}

func toMenuItem(p models.MenuPage, role, locale string) models.MenuItem {
	path := p.Path
	if p.Name == dashboardPageName {
		if rewritten, ok := dashboardPaths[role]; ok {
			path = rewritten
		}
	}

	return models.MenuItem{
		ID:        p.ID,
		Name:      p.Name,
		Label:     p.Localized(locale),
		Path:      path,
		Icon:      p.Icon,
		SortOrder: p.SortOrder,
	}
}

func sortMenuItems(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Name < items[j].Name
	})
}
