package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReadingSession is one discrete attempt to read a book, bounded by start and
// finish timestamps. Multiple sessions per UserBook model re-reads; the
// read_number is 1-based and unique per UserBook.
type ReadingSession struct {
	bun.BaseModel `bun:"table:reading_sessions,alias:rs"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UserID     int        `bun:",nullzero" json:"user_id"`
	BookID     int        `bun:",nullzero" json:"book_id"`
	UserBookID int        `bun:",nullzero" json:"user_book_id"`
	ReadNumber int        `bun:",nullzero" json:"read_number"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Rating     *int       `json:"rating"`
	Review     *string    `json:"review"`
}
