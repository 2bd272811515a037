package models

import (
	"strings"
	"time"
)

// Canonical role names. Roles are stored lowercase and matched
// case-insensitively everywhere in the engine.
const (
	RoleAdmin       = "admin"
	RoleDirector    = "director"
	RolePartner     = "partner"
	RoleCoordinator = "coordinator"
	RoleTeacher     = "teacher"
	RoleCollector   = "collector"
)

// Role represents a named role in the registry.
type Role struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	HierarchyLevel     int       `db:"hierarchy_level" json:"hierarchy_level"`
	CanManageHierarchy bool      `db:"can_manage_hierarchy" json:"can_manage_hierarchy"`
	MaxHierarchyDepth  int       `db:"max_hierarchy_depth" json:"max_hierarchy_depth"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// CanonicalRole normalizes a role name to its stored form.
func CanonicalRole(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
