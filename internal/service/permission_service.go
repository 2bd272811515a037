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

// legacyAllowedRoles is the hard-coded, action-agnostic allow-list used
// only when no explicit permission row exists. It is the coarse
// backward-compatible default for pages never migrated into the
// permission tables; an explicit false row always wins over it.
var legacyAllowedRoles = map[string]bool{
	models.RoleAdmin:       true,
	models.RoleDirector:    true,
	models.RolePartner:     true,
	models.RoleCoordinator: true,
	models.RoleTeacher:     true,
}

// Decision sources reported to metrics.
const (
	decisionSourceExplicit = "explicit"
	decisionSourceLegacy   = "legacy"
	decisionSourceDefault  = "default"
)

type permissionPageRepository interface {
	FindByName(ctx context.Context, name string) (*models.Page, error)
}

type permissionRepository interface {
	GetPagePermission(ctx context.Context, role string, pageID int64) (models.Decision, error)
	GetActionPermission(ctx context.Context, pageID int64, role, action string) (models.Decision, error)
	ListActionPermissions(ctx context.Context, pageID int64, role string) ([]models.ActionPermission, error)
	ListPagePermissionsForRole(ctx context.Context, role string) ([]models.PagePermission, error)
	BulkUpdate(ctx context.Context, role string, entries []models.PermissionEntry, audit *models.AuditEntry) error
}

type permissionRoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

type menuInvalidator interface {
	InvalidateRole(ctx context.Context, role string)
}

type permissionObserver interface {
	ObservePermissionCheck(granted bool, source string)
}

// BulkPermissionRequest is the admin-only transactional batch update.
type BulkPermissionRequest struct {
	Role    string                   `json:"role" validate:"required"`
	Entries []models.PermissionEntry `json:"entries" validate:"required,min=1,dive"`
}

// PermissionService resolves page and action permissions. Reads are pure
// with respect to their inputs; a check never mutates permission state.
type PermissionService struct {
	pages     permissionPageRepository
	perms     permissionRepository
	roles     permissionRoleRepository
	menus     menuInvalidator
	metrics   permissionObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPermissionService creates an instance of PermissionService.
func NewPermissionService(pages permissionPageRepository, perms permissionRepository, roles permissionRoleRepository, menus menuInvalidator, metrics permissionObserver, validate *validator.Validate, logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PermissionService{pages: pages, perms: perms, roles: roles, menus: menus, metrics: metrics, validator: validate, logger: logger}
}

// AvailableActions returns the fixed action set.
func (s *PermissionService) AvailableActions() []string {
	actions := make([]string, len(models.AvailableActions))
	copy(actions, models.AvailableActions)
	return actions
}

// CanAccessPage reports whether the role may see the page. A missing
// page falls through to the legacy role default; a missing permission
// row is default-allow; an explicit false row is a hard deny. Store
// failures resolve fail-closed with the error propagated.
func (s *PermissionService) CanAccessPage(ctx context.Context, role, pageName string) (bool, error) {
	role = models.CanonicalRole(role)

	page, err := s.pages.FindByName(ctx, pageName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.legacyDecision(role), nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page")
	}

	decision, err := s.perms.GetPagePermission(ctx, role, page.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page permission")
	}

	switch decision {
	case models.DecisionAllow:
		s.observe(true, decisionSourceExplicit)
		return true, nil
	case models.DecisionDeny:
		s.observe(false, decisionSourceExplicit)
		return false, nil
	default:
		// No row configured: page visibility is deliberately fail-open.
		s.observe(true, decisionSourceDefault)
		return true, nil
	}
}

// CanPerformAction reports whether the role may perform the action on
// the page. Resolution order: missing page -> legacy table; explicit
// page-level false -> deny; explicit action row -> verbatim; otherwise
// the legacy table again.
func (s *PermissionService) CanPerformAction(ctx context.Context, role, pageName, action string) (bool, error) {
	role = models.CanonicalRole(role)

	if !models.IsKnownAction(action) {
		return false, appErrors.Clone(appErrors.ErrValidation, "unknown action "+action)
	}

	page, err := s.pages.FindByName(ctx, pageName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.legacyDecision(role), nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page")
	}

	pageDecision, err := s.perms.GetPagePermission(ctx, role, page.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page permission")
	}
	if pageDecision == models.DecisionDeny {
		s.observe(false, decisionSourceExplicit)
		return false, nil
	}

	actionDecision, err := s.perms.GetActionPermission(ctx, page.ID, role, action)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve action permission")
	}

	switch actionDecision {
	case models.DecisionAllow:
		s.observe(true, decisionSourceExplicit)
		return true, nil
	case models.DecisionDeny:
		s.observe(false, decisionSourceExplicit)
		return false, nil
	default:
		return s.legacyDecision(role), nil
	}
}

// ActionsForPage resolves every action for one page in a single pass,
// answering "what can I do here" once per page load. Actions are
// resolved independently; there is no early exit across actions.
func (s *PermissionService) ActionsForPage(ctx context.Context, role, pageName string) (map[string]bool, error) {
	role = models.CanonicalRole(role)

	result := make(map[string]bool, len(models.AvailableActions))

	page, err := s.pages.FindByName(ctx, pageName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			allowed := s.legacyDecision(role)
			for _, action := range models.AvailableActions {
				result[action] = allowed
			}
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page")
	}

	pageDecision, err := s.perms.GetPagePermission(ctx, role, page.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve page permission")
	}
	if pageDecision == models.DecisionDeny {
		for _, action := range models.AvailableActions {
			result[action] = false
		}
		s.observe(false, decisionSourceExplicit)
		return result, nil
	}

	rows, err := s.perms.ListActionPermissions(ctx, page.ID, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list action permissions")
	}

	explicit := make(map[string]bool, len(rows))
	for _, row := range rows {
		explicit[row.ActionName] = row.IsAllowed
	}

	for _, action := range models.AvailableActions {
		if isAllowed, ok := explicit[action]; ok {
			result[action] = isAllowed
			s.observe(isAllowed, decisionSourceExplicit)
			continue
		}
		result[action] = s.legacyDecision(role)
	}
	return result, nil
}

// BulkUpdate applies an admin batch of permission rows for one role:
// either every row lands together with its audit entry, or nothing does.
func (s *PermissionService) BulkUpdate(ctx context.Context, req BulkPermissionRequest, actor *models.JWTClaims) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk permission payload")
	}
	for _, entry := range req.Entries {
		for action := range entry.Actions {
			if !models.IsKnownAction(action) {
				return appErrors.Clone(appErrors.ErrValidation, "unknown action "+action)
			}
		}
	}

	role := models.CanonicalRole(req.Role)
	if _, err := s.roles.FindByName(ctx, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}

	audit := s.buildBulkAudit(role, req.Entries, actor)

	if err := s.perms.BulkUpdate(ctx, role, req.Entries, audit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "one or more pages do not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply permission batch")
	}

	if s.menus != nil {
		s.menus.InvalidateRole(ctx, role)
	}
	return nil
}

func (s *PermissionService) buildBulkAudit(role string, entries []models.PermissionEntry, actor *models.JWTClaims) *models.AuditEntry {
	meta := &models.PermissionChangeMeta{Role: role}
	for _, e := range entries {
		meta.PageIDs = append(meta.PageIDs, e.PageID)
		meta.PageRows++
		if e.IsAllowed {
			meta.AllowedCount++
		} else {
			meta.DeniedCount++
		}
		meta.ActionRows += len(e.Actions)
	}

	newValue, _ := json.Marshal(entries)
	entry := &models.AuditEntry{
		ActionType:  models.AuditActionPermissionUpdate,
		EntityType:  "page_permissions",
		RoleName:    &role,
		NewValue:    newValue,
		Description: "bulk permission update",
		Metadata:    models.AuditMetadata{Permission: meta},
	}
	if actor != nil {
		entry.ChangedByUserID = actor.UserID
		entry.ChangedByRole = actor.Role
	}
	return entry
}

// legacyDecision evaluates the role against the legacy allow-list.
func (s *PermissionService) legacyDecision(role string) bool {
	allowed := legacyAllowedRoles[role]
	s.observe(allowed, decisionSourceLegacy)
	return allowed
}

func (s *PermissionService) observe(granted bool, source string) {
	if s.metrics != nil {
		s.metrics.ObservePermissionCheck(granted, source)
	}
}
