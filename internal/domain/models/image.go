package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image is an uploaded picture. StorageName is the file name on disk and is not exposed.
type Image struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"fileName"`
	URL         string    `db:"url" json:"url"`
	UploadedBy  string    `db:"uploaded_by" json:"uploadedBy"`
	UploadTime  string    `db:"upload_time" json:"uploadTime"`
	Size        int64     `db:"size" json:"size,omitempty"`
	MimeType    string    `db:"mime_type" json:"mimeType,omitempty"`
	StorageName string    `db:"storage_name" json:"-"`
}

// NewImage creates an image record for a file already written to storage.
func NewImage(fileName, storageName, baseURL, uploadedBy, mimeType string, size int64, now time.Time) *Image {
	return &Image{
		ID:          uuid.New(),
		FileName:    fileName,
		URL:         strings.TrimRight(baseURL, "/") + "/" + storageName,
		UploadedBy:  uploadedBy,
		UploadTime:  FormatTime(now),
		Size:        size,
		MimeType:    mimeType,
		StorageName: storageName,
	}
}

// Validate checks that the record is complete before it is stored.
func (i *Image) Validate() error {
	var validationErrors []string

	if i.ID == uuid.Nil {
		validationErrors = append(validationErrors, "id is required")
	}
	if i.FileName == "" {
		validationErrors = append(validationErrors, "file name is required")
	}
	if len(i.FileName) > 255 {
		validationErrors = append(validationErrors, "file name must be 255 characters or less")
	}
	if i.StorageName == "" || i.URL == "" {
		validationErrors = append(validationErrors, "storage name is required")
	}
	if i.Size < 0 {
		validationErrors = append(validationErrors, "file size must not be negative")
	}
	if i.MimeType != "" && !strings.HasPrefix(i.MimeType, "image/") {
		validationErrors = append(validationErrors, fmt.Sprintf("mime type %q is not an image", i.MimeType))
	}

	if len(validationErrors) > 0 {
		return &ImageValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

type ImageValidationError struct {
	Errors []string
}

func (e *ImageValidationError) Error() string {
	return fmt.Sprintf("image validation failed: %s", strings.Join(e.Errors, "; "))
}
