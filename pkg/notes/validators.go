package notes

type ListNotesQuery struct {
	BookID *int `query:"book_id" json:"book_id,omitempty" validate:"omitempty,min=1"`
}

type CreateNotePayload struct {
	BookID     int    `json:"book_id" validate:"required,min=1"`
	Content    string `json:"content" mod:"trim" validate:"required,max=10000"`
	IsQuote    bool   `json:"is_quote"`
	PageNumber *int   `json:"page_number,omitempty" validate:"omitempty,min=0"`
}

type UpdateNotePayload struct {
	Content    *string `json:"content,omitempty" mod:"trim" validate:"omitempty,max=10000"`
	IsQuote    *bool   `json:"is_quote,omitempty"`
	PageNumber *int    `json:"page_number,omitempty" validate:"omitempty,min=0"`
}
