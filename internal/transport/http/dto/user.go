package dto

import "imagenote/internal/domain/models"

// UserRegisterInput is the body of POST /api/register.
type UserRegisterInput struct {
	Name     string `json:"name" validate:"max=1024"`
	ID       string `json:"id" validate:"max=1024"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"max=1024"`
}

type UserResponse struct {
	Message string          `json:"message"`
	User    models.UserInfo `json:"user"`
	Token   string          `json:"token,omitempty"`
}

type AdminExistsResponse struct {
	AdminExists bool `json:"adminExists"`
}
