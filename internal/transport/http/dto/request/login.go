package request

// LoginRequest is the body of POST /api/login. Role is optional.
type LoginRequest struct {
	Name     string `json:"name" validate:"max=1024"`
	ID       string `json:"id" validate:"max=1024"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"max=1024"`
}
