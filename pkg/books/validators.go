package books

type ListBooksQuery struct {
	Limit    int   `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset   int   `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Wishlist *bool `query:"wishlist" json:"wishlist,omitempty"`
}

type CreateBookPayload struct {
	Title             string  `json:"title" mod:"trim" validate:"required,max=300"`
	Author            string  `json:"author" mod:"trim" validate:"required,max=200"`
	AuthorNationality *string `json:"author_nationality,omitempty" validate:"omitempty,max=100"`
	ISBN              *string `json:"isbn,omitempty" mod:"trim" validate:"omitempty,max=20"`
	CoverURL          *string `json:"cover_url,omitempty" validate:"omitempty,max=1000"`
	SpineColor        *string `json:"spine_color,omitempty" validate:"omitempty,max=20"`
	PageCount         *int    `json:"page_count,omitempty" validate:"omitempty,min=1"`
	Genre             *string `json:"genre,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Description       *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	PublishedYear     *int    `json:"published_year,omitempty" validate:"omitempty,min=0"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=want_to_read reading completed wishlist"`
	Rating            *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review            *string `json:"review,omitempty" validate:"omitempty,max=5000"`
}

type UpdateBookPayload struct {
	Title             *string `json:"title,omitempty" mod:"trim" validate:"omitempty,max=300"`
	Author            *string `json:"author,omitempty" mod:"trim" validate:"omitempty,max=200"`
	AuthorNationality *string `json:"author_nationality,omitempty" validate:"omitempty,max=100"`
	ISBN              *string `json:"isbn,omitempty" mod:"trim" validate:"omitempty,max=20"`
	CoverURL          *string `json:"cover_url,omitempty" validate:"omitempty,max=1000"`
	SpineColor        *string `json:"spine_color,omitempty" validate:"omitempty,max=20"`
	PageCount         *int    `json:"page_count,omitempty" validate:"omitempty,min=1"`
	Genre             *string `json:"genre,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Description       *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	PublishedYear     *int    `json:"published_year,omitempty" validate:"omitempty,min=0"`
}

type UpdateUserBookPayload struct {
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=want_to_read reading completed wishlist"`
	CurrentPage *int    `json:"current_page,omitempty" validate:"omitempty,min=0"`
	Rating      *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review      *string `json:"review,omitempty" validate:"omitempty,max=5000"`
}
