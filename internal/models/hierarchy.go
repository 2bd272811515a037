package models

import (
	"fmt"

	"github.com/lib/pq"
)

// UserHierarchy is the derived, per-request scope of organizational
// entities a user may see. It is recomputed on every access check and
// never cached across requests.
type UserHierarchy struct {
	UserID              string  `json:"user_id"`
	Role                string  `json:"role"`
	Unrestricted        bool    `json:"unrestricted"`
	AccessibleSchools   []int64 `json:"accessible_schools"`
	AccessibleClasses   []int64 `json:"accessible_classes"`
	AccessibleDistricts []int64 `json:"accessible_districts"`
	AccessibleProvinces []int64 `json:"accessible_provinces"`
	AccessibleZones     []int64 `json:"accessible_zones"`
}

// UserAssignment carries the raw assignment columns a scope is derived from.
type UserAssignment struct {
	UserID     string `db:"id"`
	Role       string `db:"role"`
	SchoolID   *int64 `db:"school_id"`
	DistrictID *int64 `db:"district_id"`
	ProvinceID *int64 `db:"province_id"`
	ZoneID     *int64 `db:"zone_id"`
}

// ScopeCondition is a SQL fragment plus bind arguments restricting an
// entity query to the caller's hierarchy scope. The zero scope denies
// everything; only Unrestricted produces a pass-through condition.
type ScopeCondition struct {
	SQL  string
	Args []interface{}
}

// MatchAll is the condition used for unrestricted (admin) queries.
func MatchAll() ScopeCondition {
	return ScopeCondition{SQL: "TRUE"}
}

// MatchNone is the safe default when a role yields no applicable scope.
func MatchNone() ScopeCondition {
	return ScopeCondition{SQL: "1=0"}
}

// MatchIDs restricts column to the given id set, numbering the bind
// placeholder from argOffset+1. An empty set denies everything.
func MatchIDs(column string, ids []int64, argOffset int) ScopeCondition {
	if len(ids) == 0 {
		return MatchNone()
	}
	return ScopeCondition{
		SQL:  fmt.Sprintf("%s = ANY($%d)", column, argOffset+1),
		Args: []interface{}{pq.Array(ids)},
	}
}
