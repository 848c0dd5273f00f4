package sessions

import "time"

type UpdateSessionPayload struct {
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Rating     *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review     *string    `json:"review,omitempty" validate:"omitempty,max=5000"`
}
