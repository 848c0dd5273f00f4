package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Vocabulary is a word or phrase a reader looked up while reading a book.
type Vocabulary struct {
	bun.BaseModel `bun:"table:vocabulary,alias:v"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	UserID       int       `bun:",nullzero" json:"user_id"`
	BookID       int       `bun:",nullzero" json:"book_id"`
	Term         string    `bun:",nullzero" json:"term"`
	Definition   string    `bun:",nullzero" json:"definition"`
	PartOfSpeech *string   `json:"part_of_speech"`
	Phonetic     *string   `json:"phonetic"`
	Example      *string   `json:"example"`
	PageNumber   *int      `json:"page_number"`
}
