package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Repository struct {
	User    UserRepository
	Image   ImageRepository
	Comment CommentRepository
}

// NewMemoryRepository keeps all state in process memory; it is lost on restart.
func NewMemoryRepository() *Repository {
	return &Repository{
		User:    NewInMemoryUserRepository(),
		Image:   NewInMemoryImageRepository(),
		Comment: NewInMemoryCommentRepository(),
	}
}

func NewPostgresRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Image:   NewImageRepository(db),
		Comment: NewCommentRepository(db),
	}
}

func NewRedisRepository(client redis.Cmdable, prefix string) *Repository {
	return &Repository{
		User:    NewRedisUserRepo(client, prefix),
		Image:   NewRedisImageRepo(client, prefix),
		Comment: NewRedisCommentRepo(client, prefix),
	}
}
