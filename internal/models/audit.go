package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Audit action types recorded by the engine.
const (
	AuditActionPermissionUpdate = "PERMISSION_UPDATE"
	AuditActionPermissionSetup  = "PERMISSION_SETUP"
	AuditActionRoleCreate       = "ROLE_CREATE"
	AuditActionRoleDelete       = "ROLE_DELETE"
	AuditActionPageCreate       = "PAGE_CREATE"
	AuditActionPageUpdate       = "PAGE_UPDATE"
	AuditActionLogin            = "LOGIN"
	AuditActionLogout           = "LOGOUT"
	AuditActionExport           = "AUDIT_EXPORT"
)

// PermissionChangeMeta describes a bulk permission update payload.
type PermissionChangeMeta struct {
	Role         string  `json:"role"`
	PageIDs      []int64 `json:"page_ids"`
	PageRows     int     `json:"page_rows"`
	ActionRows   int     `json:"action_rows"`
	AllowedCount int     `json:"allowed_count"`
	DeniedCount  int     `json:"denied_count"`
}

// SetupRunMeta summarizes a provisioning run.
type SetupRunMeta struct {
	RolesSeeded int `json:"roles_seeded"`
	PagesSeeded int `json:"pages_seeded"`
	RowsWritten int `json:"rows_written"`
}

// AuditMetadata is a union of the known audit payload shapes plus an
// opaque fallback bag for anything else.
type AuditMetadata struct {
	Permission *PermissionChangeMeta  `json:"permission,omitempty"`
	Setup      *SetupRunMeta          `json:"setup,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Value serializes the metadata for a JSONB column.
func (m AuditMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan deserializes the metadata from a JSONB column.
func (m *AuditMetadata) Scan(src interface{}) error {
	if src == nil {
		*m = AuditMetadata{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported audit metadata type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// AuditEntry is an append-only record of a permission or role change.
// Entries are never updated or deleted by the application.
type AuditEntry struct {
	ID              string        `db:"id" json:"id"`
	ActionType      string        `db:"action_type" json:"action_type"`
	EntityType      string        `db:"entity_type" json:"entity_type"`
	EntityID        *string       `db:"entity_id" json:"entity_id,omitempty"`
	RoleName        *string       `db:"role_name" json:"role_name,omitempty"`
	PreviousValue   []byte        `db:"previous_value" json:"previous_value,omitempty"`
	NewValue        []byte        `db:"new_value" json:"new_value,omitempty"`
	ChangedByUserID string        `db:"changed_by_user_id" json:"changed_by_user_id"`
	ChangedByRole   string        `db:"changed_by_role" json:"changed_by_role"`
	Description     string        `db:"description" json:"description"`
	Metadata        AuditMetadata `db:"metadata" json:"metadata"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// AuditFilter captures the read-path filters for the reporting view.
type AuditFilter struct {
	ActorID    string
	EntityType string
	ActionType string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// AuditActionCount is one row of the 30-day rollup.
type AuditActionCount struct {
	ActionType string `db:"action_type" json:"action_type"`
	Count      int    `db:"count" json:"count"`
}

// AuditSummary is the 30-day rollup returned to the admin reporting view.
type AuditSummary struct {
	Since          time.Time          `json:"since"`
	TotalEntries   int                `json:"total_entries"`
	DistinctActors int                `json:"distinct_actors"`
	ByActionType   []AuditActionCount `json:"by_action_type"`
}
