package models

import "time"

// Допустимые темы оформления.
const (
	ThemeDefault = "default"
	ThemeLight   = "light"
	ThemeDark    = "dark"
)

// ColorPalette describes the three UI surface colors. Values are CSS colors and are not format-checked.
type ColorPalette struct {
	HeaderColor    string `json:"headerColor"`
	ContentColor   string `json:"contentColor"`
	ContainerColor string `json:"containerColor"`
}

// GeneralConfig is the singleton "general configuration" of a deployment.
type GeneralConfig struct {
	Title   string       `json:"title"`
	Color   ColorPalette `json:"color"`
	Theme   string       `json:"theme"`
	LogoURL *string      `json:"logoUrl,omitempty"`
}

// GeneralConfigPatch carries the sections of a partial update. Nil means "unchanged".
type GeneralConfigPatch struct {
	Title   *string       `json:"title,omitempty"`
	Color   *ColorPalette `json:"color,omitempty"`
	Theme   *string       `json:"theme,omitempty"`
	LogoURL *string       `json:"logoUrl,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p GeneralConfigPatch) IsEmpty() bool {
	return p.Title == nil && p.Color == nil && p.Theme == nil && p.LogoURL == nil
}

// GeneralConfigRow is the general_config table row (id = 1).
type GeneralConfigRow struct {
	ID             int       `db:"id"`
	Title          string    `db:"title"`
	HeaderColor    string    `db:"header_color"`
	ContentColor   string    `db:"content_color"`
	ContainerColor string    `db:"container_color"`
	Theme          string    `db:"theme"`
	LogoURL        *string   `db:"logo_url"`
	Version        int64     `db:"version"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ToConfig converts the row into the API/cache representation.
func (r GeneralConfigRow) ToConfig() GeneralConfig {
	return GeneralConfig{
		Title: r.Title,
		Color: ColorPalette{
			HeaderColor:    r.HeaderColor,
			ContentColor:   r.ContentColor,
			ContainerColor: r.ContainerColor,
		},
		Theme:   r.Theme,
		LogoURL: r.LogoURL,
	}
}

// DefaultColorPalette is used when a stored config carries no palette.
func DefaultColorPalette() ColorPalette {
	return ColorPalette{
		HeaderColor:    "#1976d2",
		ContentColor:   "#ffffff",
		ContainerColor: "#f5f5f5",
	}
}

// DefaultGeneralConfig is the seed value for a fresh deployment.
func DefaultGeneralConfig() GeneralConfig {
	return GeneralConfig{
		Title: "Hospital Records",
		Color: DefaultColorPalette(),
		Theme: ThemeDefault,
	}
}

// IsValidTheme проверяет, что тема входит в допустимый набор.
func IsValidTheme(theme string) bool {
	switch theme {
	case ThemeDefault, ThemeLight, ThemeDark:
		return true
	}
	return false
}
