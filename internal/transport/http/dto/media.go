package dto

import (
	"mime/multipart"

	"imagenote/internal/domain/models"
)

// ImageUploadInput is the parsed multipart form of POST /api/upload.
type ImageUploadInput struct {
	Files      []*multipart.FileHeader `form:"images"`
	UploadedBy string                  `form:"uploadedBy" validate:"max=1024"`
}

type ImageUploadResponse struct {
	Message string         `json:"message"`
	Images  []models.Image `json:"images"`
}
