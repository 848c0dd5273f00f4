package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      int       `bun:",nullzero" json:"user_id"`
	Name        string    `bun:",nullzero" json:"name"`
	Description *string   `json:"description"`
	CoverURL    *string   `json:"cover_url"`

	// Computed for list views.
	BookCount     int      `bun:",scanonly" json:"book_count"`
	PreviewCovers []string `bun:"-" json:"preview_covers,omitempty"`

	// Relations
	BookCollections []*BookCollection `bun:"rel:has-many,join:id=collection_id" json:"book_collections,omitempty"`
}

// BookCollection is the join row placing a book inside a collection. Position
// is the explicit ordering key; nil means unordered, sorting after every
// positioned row.
type BookCollection struct {
	bun.BaseModel `bun:"table:book_collections,alias:bc"`

	ID           int         `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	CollectionID int         `bun:",nullzero" json:"collection_id"`
	Collection   *Collection `bun:"rel:belongs-to,join:collection_id=id" json:"collection,omitempty"`
	BookID       int         `bun:",nullzero" json:"book_id"`
	Book         *Book       `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Position     *int        `json:"position"`
}
