package models

import "time"

// Action names checkable independently per page.
const (
	ActionView       = "view"
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionExport     = "export"
	ActionBulkUpdate = "bulk_update"
)

// AvailableActions is the fixed, ordered action set.
var AvailableActions = []string{
	ActionView,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionExport,
	ActionBulkUpdate,
}

// IsKnownAction reports whether name is a member of the fixed action set.
func IsKnownAction(name string) bool {
	for _, a := range AvailableActions {
		if a == name {
			return true
		}
	}
	return false
}

// Decision is the tri-state outcome of a permission row lookup.
// Unset means no explicit row exists and the caller must fall back,
// never that access is denied.
type Decision int

const (
	DecisionUnset Decision = iota
	DecisionAllow
	DecisionDeny
)

// DecisionFrom maps a nullable stored flag onto the tri-state.
func DecisionFrom(isAllowed *bool) Decision {
	switch {
	case isAllowed == nil:
		return DecisionUnset
	case *isAllowed:
		return DecisionAllow
	default:
		return DecisionDeny
	}
}

// PagePermission is an explicit role x page visibility row. Absence of a
// row means "fall back to the legacy default", not "denied".
type PagePermission struct {
	ID        int64     `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	PageID    int64     `db:"page_id" json:"page_id"`
	IsAllowed bool      `db:"is_allowed" json:"is_allowed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ActionPermission is an explicit role x page x action row, layered on
// top of PagePermission with the same null-fallback semantics.
type ActionPermission struct {
	ID         int64     `db:"id" json:"id"`
	PageID     int64     `db:"page_id" json:"page_id"`
	Role       string    `db:"role" json:"role"`
	ActionName string    `db:"action_name" json:"action_name"`
	IsAllowed  bool      `db:"is_allowed" json:"is_allowed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PermissionEntry is one page's worth of a bulk permission update.
type PermissionEntry struct {
	PageID    int64           `json:"page_id" validate:"required"`
	IsAllowed bool            `json:"is_allowed"`
	Actions   map[string]bool `json:"actions,omitempty"`
}
