package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type pageRepository interface {
	FindByName(ctx context.Context, name string) (*models.Page, error)
	FindByID(ctx context.Context, id int64) (*models.Page, error)
	List(ctx context.Context) ([]models.Page, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
}

// CreatePageRequest represents payload for registering pages.
type CreatePageRequest struct {
	Name              string `json:"name" validate:"required,min=2,max=128"`
	Path              string `json:"path" validate:"required"`
	Icon              string `json:"icon"`
	ParentPageID      *int64 `json:"parent_page_id"`
	SortOrder         int    `json:"sort_order"`
	IsDisplayedInMenu *bool  `json:"is_displayed_in_menu"`
	TitleEn           string `json:"title_en"`
	TitleKm           string `json:"title_km"`
}

// UpdatePageRequest represents payload for updating pages.
type UpdatePageRequest struct {
	Path              string `json:"path" validate:"required"`
	Icon              string `json:"icon"`
	ParentPageID      *int64 `json:"parent_page_id"`
	SortOrder         int    `json:"sort_order"`
	IsDisplayedInMenu *bool  `json:"is_displayed_in_menu"`
	TitleEn           string `json:"title_en"`
	TitleKm           string `json:"title_km"`
}

// PageService manages the page catalog and enforces the tree invariants:
// the parent chain stays acyclic and a child's menu level is always the
// parent's level plus one.
type PageService struct {
	repo      pageRepository
	audit     authAuditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPageService creates an instance of PageService.
func NewPageService(repo pageRepository, audit authAuditRecorder, validate *validator.Validate, logger *zap.Logger) *PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PageService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns a page by name.
func (s *PageService) Get(ctx context.Context, name string) (*models.Page, error) {
	page, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	return page, nil
}

// List returns the page catalog.
func (s *PageService) List(ctx context.Context) ([]models.Page, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}
	return pages, nil
}

// Create registers a new page under an optional parent.
func (s *PageService) Create(ctx context.Context, req CreatePageRequest, actor *models.JWTClaims) (*models.Page, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create page payload")
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "page name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check page uniqueness")
	}

	menuLevel := 1
	if req.ParentPageID != nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentPageID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent page not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
		}
		menuLevel = parent.MenuLevel + 1
		if !parent.IsParentMenu {
			if err := s.promoteToParent(ctx, parent); err != nil {
				return nil, err
			}
		}
	}

	displayed := true
	if req.IsDisplayedInMenu != nil {
		displayed = *req.IsDisplayedInMenu
	}

	page := &models.Page{
		Name:              req.Name,
		Path:              req.Path,
		Icon:              req.Icon,
		ParentPageID:      req.ParentPageID,
		SortOrder:         req.SortOrder,
		MenuLevel:         menuLevel,
		IsDisplayedInMenu: displayed,
		TitleEn:           req.TitleEn,
		TitleKm:           req.TitleKm,
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create page")
	}

	s.record(ctx, models.AuditActionPageCreate, page, actor)
	return page, nil
}

// Update rewrites a page's attributes, re-deriving the menu level and
// rejecting a parent assignment that would close a cycle.
func (s *PageService) Update(ctx context.Context, name string, req UpdatePageRequest, actor *models.JWTClaims) (*models.Page, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update page payload")
	}

	page, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	menuLevel := 1
	if req.ParentPageID != nil {
		if *req.ParentPageID == page.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a page cannot be its own parent")
		}
		parent, err := s.repo.FindByID(ctx, *req.ParentPageID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent page not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
		}
		isDescendant, err := s.isDescendantOf(ctx, parent.ID, page.ID)
		if err != nil {
			return nil, err
		}
		if isDescendant {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a page cannot name its own descendant as parent")
		}
		menuLevel = parent.MenuLevel + 1
		if !parent.IsParentMenu {
			if err := s.promoteToParent(ctx, parent); err != nil {
				return nil, err
			}
		}
	}

	page.Path = req.Path
	page.Icon = req.Icon
	page.ParentPageID = req.ParentPageID
	page.SortOrder = req.SortOrder
	page.MenuLevel = menuLevel
	if req.IsDisplayedInMenu != nil {
		page.IsDisplayedInMenu = *req.IsDisplayedInMenu
	}
	page.TitleEn = req.TitleEn
	page.TitleKm = req.TitleKm

	if err := s.repo.Update(ctx, page); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update page")
	}

	if err := s.relevelDescendants(ctx, page); err != nil {
		return nil, err
	}

	s.record(ctx, models.AuditActionPageUpdate, page, actor)
	return page, nil
}

// isDescendantOf walks the parent chain of candidate looking for ancestor.
func (s *PageService) isDescendantOf(ctx context.Context, candidateID, ancestorID int64) (bool, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}

	parents := make(map[int64]*int64, len(pages))
	for i := range pages {
		parents[pages[i].ID] = pages[i].ParentPageID
	}

	current := candidateID
	for steps := 0; steps < len(pages)+1; steps++ {
		parent, ok := parents[current]
		if !ok || parent == nil {
			return false, nil
		}
		if *parent == ancestorID {
			return true, nil
		}
		current = *parent
	}
	return false, nil
}

// relevelDescendants walks the subtree under root breadth-first and
// rewrites every descendant's menu level to its parent's plus one, so a
// reparented page carries its whole subtree to the new depth.
func (s *PageService) relevelDescendants(ctx context.Context, root *models.Page) error {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}

	children := make(map[int64][]int, len(pages))
	for i := range pages {
		if pages[i].ParentPageID != nil {
			children[*pages[i].ParentPageID] = append(children[*pages[i].ParentPageID], i)
		}
	}

	type node struct {
		id    int64
		level int
	}
	queue := []node{{root.ID, root.MenuLevel}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, idx := range children[current.id] {
			child := pages[idx]
			if child.MenuLevel != current.level+1 {
				child.MenuLevel = current.level + 1
				if err := s.repo.Update(ctx, &child); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to relevel page subtree")
				}
			}
			queue = append(queue, node{child.ID, child.MenuLevel})
		}
	}
	return nil
}

// promoteToParent flags a page as a parent menu once it gains a child.
func (s *PageService) promoteToParent(ctx context.Context, parent *models.Page) error {
	parent.IsParentMenu = true
	if err := s.repo.Update(ctx, parent); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag parent menu")
	}
	return nil
}

func (s *PageService) record(ctx context.Context, actionType string, page *models.Page, actor *models.JWTClaims) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(page)
	entry := &models.AuditEntry{
		ActionType:  actionType,
		EntityType:  "pages",
		NewValue:    payload,
		Description: actionType + " " + page.Name,
	}
	if actor != nil {
		entry.ChangedByUserID = actor.UserID
		entry.ChangedByRole = actor.Role
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record page audit entry", zap.Error(err))
	}
}
