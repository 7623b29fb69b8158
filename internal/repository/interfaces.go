package repository

import (
	"context"

	"imagenote/internal/domain/models"
)

// UserRepository stores registered users. SaveUser enforces the unique id and
// single-admin rules atomically and reports storage.ErrUserExists or storage.ErrAdminExists.
type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id string) (models.User, error)
	AdminExists(ctx context.Context) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ImageRepository is append-only; ListImages returns insertion order.
type ImageRepository interface {
	SaveImages(ctx context.Context, images []models.Image) error
	ListImages(ctx context.Context) ([]models.Image, error)
}

// CommentRepository is append-only; ListComments returns insertion order.
type CommentRepository interface {
	SaveComment(ctx context.Context, comment models.Comment) error
	ListComments(ctx context.Context) ([]models.Comment, error)
}
