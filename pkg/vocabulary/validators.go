package vocabulary

type ListWordsQuery struct {
	BookID *int `query:"book_id" json:"book_id,omitempty" validate:"omitempty,min=1"`
}

type CreateWordPayload struct {
	BookID       int     `json:"book_id" validate:"required,min=1"`
	Term         string  `json:"term" mod:"trim" validate:"required,max=200"`
	Definition   string  `json:"definition" mod:"trim" validate:"required,max=2000"`
	PartOfSpeech *string `json:"part_of_speech,omitempty" validate:"omitempty,max=50"`
	Phonetic     *string `json:"phonetic,omitempty" validate:"omitempty,max=100"`
	Example      *string `json:"example,omitempty" validate:"omitempty,max=2000"`
	PageNumber   *int    `json:"page_number,omitempty" validate:"omitempty,min=0"`
}

type UpdateWordPayload struct {
	Term         *string `json:"term,omitempty" mod:"trim" validate:"omitempty,max=200"`
	Definition   *string `json:"definition,omitempty" mod:"trim" validate:"omitempty,max=2000"`
	PartOfSpeech *string `json:"part_of_speech,omitempty" validate:"omitempty,max=50"`
	Phonetic     *string `json:"phonetic,omitempty" validate:"omitempty,max=100"`
	Example      *string `json:"example,omitempty" validate:"omitempty,max=2000"`
	PageNumber   *int    `json:"page_number,omitempty" validate:"omitempty,min=0"`
}
