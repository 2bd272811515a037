package models

import "time"

// Page is an addressable, permission-gated unit of UI/API surface.
// Pages form an acyclic tree via ParentPageID; MenuLevel of a child is
// always the parent's MenuLevel + 1, roots sit at level 1.
type Page struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Path              string    `db:"path" json:"path"`
	Icon              string    `db:"icon" json:"icon"`
	ParentPageID      *int64    `db:"parent_page_id" json:"parent_page_id,omitempty"`
	SortOrder         int       `db:"sort_order" json:"sort_order"`
	IsParentMenu      bool      `db:"is_parent_menu" json:"is_parent_menu"`
	MenuLevel         int       `db:"menu_level" json:"menu_level"`
	IsDisplayedInMenu bool      `db:"is_displayed_in_menu" json:"is_displayed_in_menu"`
	TitleEn           string    `db:"title_en" json:"title_en"`
	TitleKm           string    `db:"title_km" json:"title_km"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

