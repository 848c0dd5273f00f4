package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                int       `bun:",pk,nullzero" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	UserID            int       `bun:",nullzero" json:"user_id"`
	User              *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Title             string    `bun:",nullzero" json:"title"`
	Author            string    `bun:",nullzero" json:"author"`
	AuthorNationality *string   `json:"author_nationality"`
	ISBN              *string   `json:"isbn"`
	CoverURL          *string   `json:"cover_url"`
	SpineColor        *string   `json:"spine_color"`
	PageCount         *int      `json:"page_count"`
	Genre             *string   `json:"genre"`
	Description       *string   `json:"description"`
	PublishedYear     *int      `json:"published_year"`

	// Computed from the loaded sessions.
	DisplayRating *int `bun:"-" json:"display_rating,omitempty"`

	// Relations
	UserBook        *UserBook         `bun:"rel:has-one,join:id=book_id" json:"user_book,omitempty"`
	Sessions        []*ReadingSession `bun:"rel:has-many,join:id=book_id" json:"reading_sessions,omitempty"`
	Notes           []*Note           `bun:"rel:has-many,join:id=book_id" json:"notes,omitempty"`
	Vocabulary      []*Vocabulary     `bun:"rel:has-many,join:id=book_id" json:"vocabulary,omitempty"`
	BookCollections []*BookCollection `bun:"rel:has-many,join:id=book_id" json:"book_collections,omitempty"`
}

// LatestSessionRating returns the rating of the most recent session that has
// one, or nil. Sessions must already be sorted by read_number descending.
func (b *Book) LatestSessionRating() *int {
	for _, s := range b.Sessions {
		if s.Rating != nil {
			return s.Rating
		}
	}
	return nil
}
