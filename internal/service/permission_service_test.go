package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type permissionPagesStub struct {
	pages map[string]*models.Page
	err   error
}

func (s *permissionPagesStub) FindByName(ctx context.Context, name string) (*models.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	if page, ok := s.pages[name]; ok {
		return page, nil
	}
	return nil, sql.ErrNoRows
}

type permissionRepoStub struct {
	pageDecision   models.Decision
	actionDecision map[string]models.Decision
	actionRows     []models.ActionPermission
	bulkErr        error
	bulkRole       string
	bulkEntries    []models.PermissionEntry
	bulkAudit      *models.AuditEntry
	err            error
}

func (s *permissionRepoStub) GetPagePermission(ctx context.Context, role string, pageID int64) (models.Decision, error) {
	if s.err != nil {
		return models.DecisionUnset, s.err
	}
	return s.pageDecision, nil
}

func (s *permissionRepoStub) GetActionPermission(ctx context.Context, pageID int64, role, action string) (models.Decision, error) {
	if s.err != nil {
		return models.DecisionUnset, s.err
	}
	if d, ok := s.actionDecision[action]; ok {
		return d, nil
	}
	return models.DecisionUnset, nil
}

func (s *permissionRepoStub) ListActionPermissions(ctx context.Context, pageID int64, role string) ([]models.ActionPermission, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.actionRows, nil
}

func (s *permissionRepoStub) ListPagePermissionsForRole(ctx context.Context, role string) ([]models.PagePermission, error) {
	return nil, nil
}

func (s *permissionRepoStub) BulkUpdate(ctx context.Context, role string, entries []models.PermissionEntry, audit *models.AuditEntry) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulkRole = role
	s.bulkEntries = entries
	s.bulkAudit = audit
	return nil
}

type permissionRolesStub struct {
	known map[string]bool
	err   error
}

func (s *permissionRolesStub) FindByName(ctx context.Context, name string) (*models.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.known[name] {
		return &models.Role{ID: 1, Name: name}, nil
	}
	return nil, sql.ErrNoRows
}

type menuInvalidatorStub struct {
	roles []string
}

func (s *menuInvalidatorStub) InvalidateRole(ctx context.Context, role string) {
	s.roles = append(s.roles, role)
}

func newPermissionService(pages *permissionPagesStub, perms *permissionRepoStub, roles *permissionRolesStub, menus *menuInvalidatorStub) *PermissionService {
	var invalidator menuInvalidator
	if menus != nil {
		invalidator = menus
	}
	return NewPermissionService(pages, perms, roles, invalidator, nil, validator.New(), nil)
}

func TestCanAccessPageMissingPageUsesLegacyList(t *testing.T) {
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, &permissionRolesStub{}, nil)

	allowed, err := service.CanAccessPage(context.Background(), models.RoleTeacher, "unmigrated-report")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.CanAccessPage(context.Background(), models.RoleCollector, "unmigrated-report")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessPageExplicitDeny(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"students": {ID: 7, Name: "students"}}}
	perms := &permissionRepoStub{pageDecision: models.DecisionDeny}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	allowed, err := service.CanAccessPage(context.Background(), models.RoleTeacher, "students")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessPageNoRowDefaultsToAllow(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"students": {ID: 7, Name: "students"}}}
	perms := &permissionRepoStub{pageDecision: models.DecisionUnset}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	// Even roles outside the legacy allow-list see an unconfigured page.
	allowed, err := service.CanAccessPage(context.Background(), models.RoleCollector, "students")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanAccessPageStoreErrorFailsClosed(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"students": {ID: 7, Name: "students"}}}
	perms := &permissionRepoStub{err: errors.New("connection reset")}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	allowed, err := service.CanAccessPage(context.Background(), models.RoleAdmin, "students")
	require.Error(t, err)
	assert.False(t, allowed)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCanPerformActionPageDenyOverridesActionAllow(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"grades": {ID: 3, Name: "grades"}}}
	perms := &permissionRepoStub{
		pageDecision:   models.DecisionDeny,
		actionDecision: map[string]models.Decision{models.ActionView: models.DecisionAllow},
	}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	allowed, err := service.CanPerformAction(context.Background(), models.RoleTeacher, "grades", models.ActionView)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanPerformActionExplicitRowWins(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"grades": {ID: 3, Name: "grades"}}}
	perms := &permissionRepoStub{
		pageDecision:   models.DecisionAllow,
		actionDecision: map[string]models.Decision{models.ActionDelete: models.DecisionDeny},
	}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	// Teacher is on the legacy allow-list, but the explicit row denies.
	allowed, err := service.CanPerformAction(context.Background(), models.RoleTeacher, "grades", models.ActionDelete)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanPerformActionAbsentRowFallsBackToLegacy(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"grades": {ID: 3, Name: "grades"}}}
	perms := &permissionRepoStub{pageDecision: models.DecisionAllow}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	allowed, err := service.CanPerformAction(context.Background(), models.RoleDirector, "grades", models.ActionExport)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.CanPerformAction(context.Background(), models.RoleCollector, "grades", models.ActionExport)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanPerformActionRejectsUnknownAction(t *testing.T) {
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, &permissionRolesStub{}, nil)

	_, err := service.CanPerformAction(context.Background(), models.RoleAdmin, "grades", "drop_table")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestActionsForPageMixesExplicitAndLegacy(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"grades": {ID: 3, Name: "grades"}}}
	perms := &permissionRepoStub{
		pageDecision: models.DecisionAllow,
		actionRows: []models.ActionPermission{
			{ActionName: models.ActionDelete, IsAllowed: false},
			{ActionName: models.ActionExport, IsAllowed: true},
		},
	}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	actions, err := service.ActionsForPage(context.Background(), models.RoleTeacher, "grades")
	require.NoError(t, err)
	assert.Len(t, actions, len(models.AvailableActions))
	assert.False(t, actions[models.ActionDelete])
	assert.True(t, actions[models.ActionExport])
	// No explicit row: teacher falls back to the legacy allow.
	assert.True(t, actions[models.ActionView])
	assert.True(t, actions[models.ActionCreate])
}

func TestActionsForPagePageDenyZeroesEverything(t *testing.T) {
	pages := &permissionPagesStub{pages: map[string]*models.Page{"grades": {ID: 3, Name: "grades"}}}
	perms := &permissionRepoStub{
		pageDecision: models.DecisionDeny,
		actionRows: []models.ActionPermission{
			{ActionName: models.ActionView, IsAllowed: true},
		},
	}
	service := newPermissionService(pages, perms, &permissionRolesStub{}, nil)

	actions, err := service.ActionsForPage(context.Background(), models.RoleAdmin, "grades")
	require.NoError(t, err)
	for _, action := range models.AvailableActions {
		assert.False(t, actions[action], action)
	}
}

func TestActionsForPageMissingPageAllLegacy(t *testing.T) {
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, &permissionRolesStub{}, nil)

	actions, err := service.ActionsForPage(context.Background(), models.RoleCollector, "unmigrated")
	require.NoError(t, err)
	for _, action := range models.AvailableActions {
		assert.False(t, actions[action], action)
	}
}

func TestBulkUpdateUnknownRole(t *testing.T) {
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, &permissionRolesStub{}, nil)

	err := service.BulkUpdate(context.Background(), BulkPermissionRequest{
		Role:    "ghost",
		Entries: []models.PermissionEntry{{PageID: 1, IsAllowed: true}},
	}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBulkUpdateRejectsUnknownAction(t *testing.T) {
	roles := &permissionRolesStub{known: map[string]bool{models.RoleTeacher: true}}
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, roles, nil)

	err := service.BulkUpdate(context.Background(), BulkPermissionRequest{
		Role:    models.RoleTeacher,
		Entries: []models.PermissionEntry{{PageID: 1, IsAllowed: true, Actions: map[string]bool{"drop_table": true}}},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBulkUpdateMissingPagesRollsUpToNotFound(t *testing.T) {
	roles := &permissionRolesStub{known: map[string]bool{models.RoleTeacher: true}}
	perms := &permissionRepoStub{bulkErr: sql.ErrNoRows}
	menus := &menuInvalidatorStub{}
	service := newPermissionService(&permissionPagesStub{}, perms, roles, menus)

	err := service.BulkUpdate(context.Background(), BulkPermissionRequest{
		Role:    models.RoleTeacher,
		Entries: []models.PermissionEntry{{PageID: 999, IsAllowed: true}},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, menus.roles)
}

func TestBulkUpdateBuildsAuditAndInvalidatesMenu(t *testing.T) {
	roles := &permissionRolesStub{known: map[string]bool{models.RoleTeacher: true}}
	perms := &permissionRepoStub{}
	menus := &menuInvalidatorStub{}
	service := newPermissionService(&permissionPagesStub{}, perms, roles, menus)

	err := service.BulkUpdate(context.Background(), BulkPermissionRequest{
		Role: "Teacher",
		Entries: []models.PermissionEntry{
			{PageID: 1, IsAllowed: true, Actions: map[string]bool{models.ActionView: true, models.ActionDelete: false}},
			{PageID: 2, IsAllowed: false},
		},
	}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, models.RoleTeacher, perms.bulkRole)
	assert.Equal(t, []string{models.RoleTeacher}, menus.roles)

	require.NotNil(t, perms.bulkAudit)
	assert.Equal(t, models.AuditActionPermissionUpdate, perms.bulkAudit.ActionType)
	assert.Equal(t, "admin-1", perms.bulkAudit.ChangedByUserID)
	meta := perms.bulkAudit.Metadata.Permission
	require.NotNil(t, meta)
	assert.Equal(t, models.RoleTeacher, meta.Role)
	assert.Equal(t, 2, meta.PageRows)
	assert.Equal(t, 2, meta.ActionRows)
	assert.Equal(t, 1, meta.AllowedCount)
	assert.Equal(t, 1, meta.DeniedCount)
	assert.ElementsMatch(t, []int64{1, 2}, meta.PageIDs)
}

func TestBulkUpdateValidatesPayload(t *testing.T) {
	service := newPermissionService(&permissionPagesStub{}, &permissionRepoStub{}, &permissionRolesStub{}, nil)

	err := service.BulkUpdate(context.Background(), BulkPermissionRequest{Role: models.RoleTeacher}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
