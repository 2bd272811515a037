package models

// MenuItem is one node of the assembled navigation tree.
type MenuItem struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Path      string     `json:"path"`
	Icon      string     `json:"icon,omitempty"`
	SortOrder int        `json:"sort_order"`
	Children  []MenuItem `json:"children,omitempty"`
}

// MenuPage is a page joined with its permission row for a role,
// the flat input the assembler works from.
type MenuPage struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Path         string `db:"path"`
	Icon         string `db:"icon"`
	ParentPageID *int64 `db:"parent_page_id"`
	SortOrder    int    `db:"sort_order"`
	IsParentMenu bool   `db:"is_parent_menu"`
	MenuLevel    int    `db:"menu_level"`
	TitleEn      string `db:"title_en"`
	TitleKm      string `db:"title_km"`
}

// Localized returns the menu label for the requested locale, falling
// back to English and finally to the page name.
func (p MenuPage) Localized(locale string) string {
	if locale == "km" && p.TitleKm != "" {
		return p.TitleKm
	}
	if p.TitleEn != "" {
		return p.TitleEn
	}
	return p.Name
}
