package users

type UpdateProfilePayload struct {
	DisplayName *string `json:"display_name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Theme       *string `json:"theme,omitempty" validate:"omitempty,oneof=flat-white espresso cappuccino spicy-chai matcha london-fog"`
}
