package dto

import "imagenote/internal/domain/models"

// CommentInput is the body of POST /api/comments. Any userRole is accepted; only
// "admin" is exported as 管理者.
type CommentInput struct {
	ImageID  string `json:"imageId" validate:"max=1024"`
	UserID   string `json:"userId" validate:"max=1024"`
	UserName string `json:"userName" validate:"max=1024"`
	UserRole string `json:"userRole" validate:"max=1024"`
	Text     string `json:"text" validate:"max=65536"`
}

type CommentResponse struct {
	Message string         `json:"message"`
	Comment models.Comment `json:"comment"`
}
