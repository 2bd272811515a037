package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
)

type roleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id int64) error
	CountUsers(ctx context.Context, name string) (int, error)
}

// CreateRoleRequest represents payload for creating roles.
type CreateRoleRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=64"`
	HierarchyLevel     int    `json:"hierarchy_level" validate:"gte=0"`
	CanManageHierarchy bool   `json:"can_manage_hierarchy"`
	MaxHierarchyDepth  int    `json:"max_hierarchy_depth" validate:"gte=0"`
}

// RoleService manages the role registry.
type RoleService struct {
	repo      roleRepository
	audit     authAuditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService creates an instance of RoleService.
func NewRoleService(repo roleRepository, audit authAuditRecorder, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns a role by name, matched case-insensitively.
func (s *RoleService) Get(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.repo.FindByName(ctx, models.CanonicalRole(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	return role, nil
}

// List returns every role, broadest authority first.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}
	return roles, nil
}

// Create registers a new role, canonicalizing the name to lowercase.
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest, actor *models.JWTClaims) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create role payload")
	}

	name := models.CanonicalRole(req.Name)
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role uniqueness")
	}

	role := &models.Role{
		Name:               name,
		HierarchyLevel:     req.HierarchyLevel,
		CanManageHierarchy: req.CanManageHierarchy,
		MaxHierarchyDepth:  req.MaxHierarchyDepth,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role")
	}

	s.record(ctx, models.AuditActionRoleCreate, role, actor)
	return role, nil
}

// Delete removes a role. Deletion is blocked while any user references it.
func (s *RoleService) Delete(ctx context.Context, name string, actor *models.JWTClaims) error {
	role, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	inUse, err := s.repo.CountUsers(ctx, role.Name)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count role users")
	}
	if inUse > 0 {
		return appErrors.Clone(appErrors.ErrRoleInUse, "")
	}

	if err := s.repo.Delete(ctx, role.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete role")
	}

	s.record(ctx, models.AuditActionRoleDelete, role, actor)
	return nil
}

// record writes a best-effort audit entry after the mutation committed.
func (s *RoleService) record(ctx context.Context, actionType string, role *models.Role, actor *models.JWTClaims) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(role)
	entry := &models.AuditEntry{
		ActionType:  actionType,
		EntityType:  "roles",
		RoleName:    &role.Name,
		NewValue:    payload,
		Description: actionType + " " + role.Name,
	}
	if actor != nil {
		entry.ChangedByUserID = actor.UserID
		entry.ChangedByRole = actor.Role
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record role audit entry", zap.Error(err))
	}
}
