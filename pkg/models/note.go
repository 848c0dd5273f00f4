package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Note is a book-scoped annotation; quotes are notes with IsQuote set.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     int       `bun:",nullzero" json:"user_id"`
	BookID     int       `bun:",nullzero" json:"book_id"`
	Content    string    `bun:",nullzero" json:"content"`
	IsQuote    bool      `json:"is_quote"`
	PageNumber *int      `json:"page_number"`
}
