package dtos

type CheckUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CheckUserResponse struct {
	Exists    bool  `json:"exists"`
	Purchased *bool `json:"purchased,omitempty"`
}
