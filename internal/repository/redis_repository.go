package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"imagenote/internal/domain/models"
	"imagenote/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Redis layout:
//
//	<prefix>:users        hash id -> user json
//	<prefix>:users:order  list of ids in registration order
//	<prefix>:admin        id of the admin, set once
//	<prefix>:images       list of image json
//	<prefix>:comments     list of comment json
type redisKeys struct {
	prefix string
}

func (k redisKeys) users() string      { return k.prefix + ":users" }
func (k redisKeys) usersOrder() string { return k.prefix + ":users:order" }
func (k redisKeys) admin() string      { return k.prefix + ":admin" }
func (k redisKeys) images() string     { return k.prefix + ":images" }
func (k redisKeys) comments() string   { return k.prefix + ":comments" }

type userRecord struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Password []byte      `json:"password"`
	Role     models.Role `json:"role"`
}

type imageRecord struct {
	models.Image
	StorageName string `json:"storageName"`
}

type RedisUserRepo struct {
	client redis.Cmdable
	keys   redisKeys
}

func NewRedisUserRepo(client redis.Cmdable, prefix string) *RedisUserRepo {
	return &RedisUserRepo{client: client, keys: redisKeys{prefix: prefix}}
}

func (r *RedisUserRepo) SaveUser(ctx context.Context, user models.User) error {
	const op = "repository.redis.SaveUser"

	data, err := json.Marshal(userRecord{
		ID:       user.ID,
		Name:     user.Name,
		Password: user.Password,
		Role:     user.Role,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	created, err := r.client.HSetNX(ctx, r.keys.users(), user.ID, string(data)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !created {
		return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	if user.Role == models.RoleAdmin {
		claimed, err := r.client.SetNX(ctx, r.keys.admin(), user.ID, 0).Result()
		if err != nil || !claimed {
			_ = r.client.HDel(ctx, r.keys.users(), user.ID).Err()
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			return fmt.Errorf("%s: %w", op, storage.ErrAdminExists)
		}
	}

	if err := r.client.RPush(ctx, r.keys.usersOrder(), user.ID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisUserRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "repository.redis.UserByID"

	val, err := r.client.HGet(ctx, r.keys.users(), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := decodeUser(val)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *RedisUserRepo) AdminExists(ctx context.Context) (bool, error) {
	const op = "repository.redis.AdminExists"

	n, err := r.client.Exists(ctx, r.keys.admin()).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

func (r *RedisUserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "repository.redis.ListUsers"

	ids, err := r.client.LRange(ctx, r.keys.usersOrder(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	vals, err := r.client.HMGet(ctx, r.keys.users(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		user, err := decodeUser(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, user)
	}

	return users, nil
}

func decodeUser(s string) (models.User, error) {
	var rec userRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:       rec.ID,
		Name:     rec.Name,
		Password: rec.Password,
		Role:     rec.Role,
	}, nil
}

type RedisImageRepo struct {
	client redis.Cmdable
	keys   redisKeys
}

func NewRedisImageRepo(client redis.Cmdable, prefix string) *RedisImageRepo {
	return &RedisImageRepo{client: client, keys: redisKeys{prefix: prefix}}
}

// SaveImages appends the batch with a single RPUSH.
func (r *RedisImageRepo) SaveImages(ctx context.Context, images []models.Image) error {
	const op = "repository.redis.SaveImages"

	if len(images) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(images))
	for _, img := range images {
		data, err := json.Marshal(imageRecord{Image: img, StorageName: img.StorageName})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		values = append(values, string(data))
	}

	if err := r.client.RPush(ctx, r.keys.images(), values...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisImageRepo) ListImages(ctx context.Context) ([]models.Image, error) {
	const op = "repository.redis.ListImages"

	vals, err := r.client.LRange(ctx, r.keys.images(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images := make([]models.Image, 0, len(vals))
	for _, v := range vals {
		var rec imageRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		img := rec.Image
		img.StorageName = rec.StorageName
		images = append(images, img)
	}

	return images, nil
}

type RedisCommentRepo struct {
	client redis.Cmdable
	keys   redisKeys
}

func NewRedisCommentRepo(client redis.Cmdable, prefix string) *RedisCommentRepo {
	return &RedisCommentRepo{client: client, keys: redisKeys{prefix: prefix}}
}

func (r *RedisCommentRepo) SaveComment(ctx context.Context, comment models.Comment) error {
	const op = "repository.redis.SaveComment"

	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.RPush(ctx, r.keys.comments(), string(data)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisCommentRepo) ListComments(ctx context.Context) ([]models.Comment, error) {
	const op = "repository.redis.ListComments"

	vals, err := r.client.LRange(ctx, r.keys.comments(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comments := make([]models.Comment, 0, len(vals))
	for _, v := range vals {
		var c models.Comment
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		comments = append(comments, c)
	}

	return comments, nil
}
