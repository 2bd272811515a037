package models

import "time"

// User represents a dashboard user stored in the users table. The
// assignment columns anchor the hierarchy scope a role expands from.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	SchoolID     *int64     `db:"school_id" json:"school_id,omitempty"`
	DistrictID   *int64     `db:"district_id" json:"district_id,omitempty"`
	ProvinceID   *int64     `db:"province_id" json:"province_id,omitempty"`
	ZoneID       *int64     `db:"zone_id" json:"zone_id,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
