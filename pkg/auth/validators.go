package auth

// LoginPayload represents the login request body.
type LoginPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// SetupPayload represents the initial setup request body.
type SetupPayload struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Password    string  `json:"password" validate:"required,min=8"`
}

// StatusResponse represents the auth status response.
type StatusResponse struct {
	NeedsSetup bool `json:"needs_setup"`
}

// MeResponse represents the current user response.
type MeResponse struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	Theme       string  `json:"theme"`
}
