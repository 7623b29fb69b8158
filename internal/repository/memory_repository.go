package repository

import (
	"context"
	"sync"

	"imagenote/internal/domain/models"
	"imagenote/internal/storage"
)

type inMemoryUserRepository struct {
	users []models.User
	byID  map[string]int
	admin bool
	mutex sync.RWMutex
}

func NewInMemoryUserRepository() UserRepository {
	return &inMemoryUserRepository{
		byID: make(map[string]int),
	}
}

func (r *inMemoryUserRepository) SaveUser(ctx context.Context, user models.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return storage.ErrUserExists
	}
	if user.Role == models.RoleAdmin && r.admin {
		return storage.ErrAdminExists
	}

	r.byID[user.ID] = len(r.users)
	r.users = append(r.users, user)
	if user.Role == models.RoleAdmin {
		r.admin = true
	}

	return nil
}

func (r *inMemoryUserRepository) UserByID(ctx context.Context, id string) (models.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idx, exists := r.byID[id]
	if !exists {
		return models.User{}, storage.ErrUserNotFound
	}

	return r.users[idx], nil
}

func (r *inMemoryUserRepository) AdminExists(ctx context.Context) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.admin, nil
}

func (r *inMemoryUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]models.User, len(r.users))
	copy(result, r.users)

	return result, nil
}

type inMemoryImageRepository struct {
	images []models.Image
	mutex  sync.RWMutex
}

func NewInMemoryImageRepository() ImageRepository {
	return &inMemoryImageRepository{}
}

func (r *inMemoryImageRepository) SaveImages(ctx context.Context, images []models.Image) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.images = append(r.images, images...)

	return nil
}

func (r *inMemoryImageRepository) ListImages(ctx context.Context) ([]models.Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]models.Image, len(r.images))
	copy(result, r.images)

	return result, nil
}

type inMemoryCommentRepository struct {
	comments []models.Comment
	mutex    sync.RWMutex
}

func NewInMemoryCommentRepository() CommentRepository {
	return &inMemoryCommentRepository{}
}

func (r *inMemoryCommentRepository) SaveComment(ctx context.Context, comment models.Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.comments = append(r.comments, comment)

	return nil
}

func (r *inMemoryCommentRepository) ListComments(ctx context.Context) ([]models.Comment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]models.Comment, len(r.comments))
	copy(result, r.comments)

	return result, nil
}
