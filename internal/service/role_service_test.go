package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type roleRepoStub struct {
	roles     map[string]models.Role
	userCount int
	deleted   []int64
	err       error
}

func (s *roleRepoStub) FindByName(ctx context.Context, name string) (*models.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	if role, ok := s.roles[name]; ok {
		return &role, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roleRepoStub) List(ctx context.Context) ([]models.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.Role, 0, len(s.roles))
	for _, role := range s.roles {
		result = append(result, role)
	}
	return result, nil
}

func (s *roleRepoStub) Create(ctx context.Context, role *models.Role) error {
	if s.err != nil {
		return s.err
	}
	if s.roles == nil {
		s.roles = make(map[string]models.Role)
	}
	role.ID = int64(len(s.roles) + 1)
	s.roles[role.Name] = *role
	return nil
}

func (s *roleRepoStub) Delete(ctx context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *roleRepoStub) CountUsers(ctx context.Context, name string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.userCount, nil
}

type auditRecorderStub struct {
	entries []*models.AuditEntry
}

func (s *auditRecorderStub) Create(ctx context.Context, entry *models.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func TestRoleServiceCreateCanonicalizesName(t *testing.T) {
	repo := &roleRepoStub{}
	audit := &auditRecorderStub{}
	service := NewRoleService(repo, audit, validator.New(), nil)

	role, err := service.Create(context.Background(), CreateRoleRequest{Name: "Supervisor"}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", role.Name)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRoleCreate, audit.entries[0].ActionType)
	assert.Equal(t, "admin-1", audit.entries[0].ChangedByUserID)
}

func TestRoleServiceCreateDuplicate(t *testing.T) {
	repo := &roleRepoStub{roles: map[string]models.Role{"teacher": {ID: 1, Name: "teacher"}}}
	service := NewRoleService(repo, &auditRecorderStub{}, validator.New(), nil)

	_, err := service.Create(context.Background(), CreateRoleRequest{Name: "Teacher"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRoleServiceDeleteBlockedWhileInUse(t *testing.T) {
	repo := &roleRepoStub{
		roles:     map[string]models.Role{"teacher": {ID: 1, Name: "teacher"}},
		userCount: 3,
	}
	service := NewRoleService(repo, &auditRecorderStub{}, validator.New(), nil)

	err := service.Delete(context.Background(), "teacher", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoleInUse.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestRoleServiceDeleteUnreferencedRole(t *testing.T) {
	repo := &roleRepoStub{roles: map[string]models.Role{"supervisor": {ID: 5, Name: "supervisor"}}}
	audit := &auditRecorderStub{}
	service := NewRoleService(repo, audit, validator.New(), nil)

	err := service.Delete(context.Background(), "Supervisor", &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, repo.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRoleDelete, audit.entries[0].ActionType)
}

func TestRoleServiceGetNotFound(t *testing.T) {
	service := NewRoleService(&roleRepoStub{}, &auditRecorderStub{}, validator.New(), nil)

	_, err := service.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
