package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reading statuses for a UserBook.
const (
	StatusWantToRead = "want_to_read"
	StatusReading    = "reading"
	StatusCompleted  = "completed"
	StatusWishlist   = "wishlist"
)

// UserBook is the per-user progress record for a book: the current reading
// status, the page the reader is on, and a pointer to the active reading
// session. There is exactly one row per (user, book) pair.
type UserBook struct {
	bun.BaseModel `bun:"table:user_books,alias:ub"`

	ID               int             `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	UserID           int             `bun:",nullzero" json:"user_id"`
	BookID           int             `bun:",nullzero" json:"book_id"`
	Book             *Book           `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Status           string          `bun:",nullzero" json:"status"`
	CurrentPage      int             `json:"current_page"`
	CurrentSessionID *int            `json:"current_session_id"`
	CurrentSession   *ReadingSession `bun:"rel:belongs-to,join:current_session_id=id" json:"current_session,omitempty"`

	// Legacy book-level fields, kept in sync with the primary session.
	Rating     *int       `json:"rating"`
	Review     *string    `json:"review"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}
