package collections

type ListCollectionsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateCollectionPayload struct {
	Name        string  `json:"name" mod:"trim" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,max=1000"`
}

type UpdateCollectionPayload struct {
	Name        *string `json:"name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	CoverURL    *string `json:"cover_url,omitempty" validate:"omitempty,max=1000"`
}

type BooksPayload struct {
	BookIDs []int `json:"book_ids" validate:"required,min=1,dive,min=1"`
}

type ReorderBooksPayload struct {
	BookIDs []int `json:"book_ids" validate:"required,min=1,dive,min=1"`
}
