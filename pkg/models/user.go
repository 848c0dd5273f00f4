package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Available UI themes. The first one is the default for new users.
const (
	ThemeFlatWhite  = "flat-white"
	ThemeEspresso   = "espresso"
	ThemeCappuccino = "cappuccino"
	ThemeSpicyChai  = "spicy-chai"
	ThemeMatcha     = "matcha"
	ThemeLondonFog  = "london-fog"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `bun:",nullzero" json:"username"`
	PasswordHash string    `json:"-"` // Never expose password hash
	DisplayName  *string   `json:"display_name"`
	Theme        string    `bun:",nullzero" json:"theme"`
}
