package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/jwt"
	"imagenote/internal/lib/logger/sl"
	"imagenote/internal/repository"
	"imagenote/internal/storage"
	"imagenote/internal/transport/http/dto"
	"imagenote/internal/transport/http/dto/request"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgMissingFields      = "请填写所有字段"
	MsgInvalidRole        = "无效的角色"
	MsgPasswordTooLong    = "密码过长"
	MsgUserIDExists       = "用户ID已存在"
	MsgAdminExists        = "管理员已存在"
	MsgRoleMismatch       = "角色不匹配"
	MsgInvalidCredentials = "用户名、ID或密码错误"
)

const adminExistsKey = "admin_exists"

type LoginResult struct {
	User  models.UserInfo
	Token string
}

type UserService struct {
	log         *slog.Logger
	repo        repository.UserRepository
	cache       *cache.Cache
	tokenSecret string
	tokenTTL    time.Duration
}

func NewUserService(log *slog.Logger, repo repository.UserRepository, tokenSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		log:         log,
		repo:        repo,
		cache:       cache.New(cache.NoExpiration, 0),
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

func (s *UserService) RegisterNewUser(ctx context.Context, input dto.UserRegisterInput) (models.UserInfo, error) {
	const op = "user_service.RegisterNewUser"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", input.ID),
	)

	log.Info("register user")

	if input.Name == "" || input.ID == "" || input.Password == "" {
		log.Warn("missing required fields")

		return models.UserInfo{}, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgMissingFields))
	}

	role := models.Role(input.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		log.Warn("invalid role", slog.String("role", input.Role))

		return models.UserInfo{}, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgInvalidRole))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.UserInfo{}, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgPasswordTooLong))
		}
		log.Error("failed to generate password hash", sl.Err(err))

		return models.UserInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:       input.ID,
		Name:     input.Name,
		Password: passHash,
		Role:     role,
	}

	if err := s.repo.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			log.Warn("user already exists", sl.Err(err))

			return models.UserInfo{}, fmt.Errorf("%s: %w", op, models.NewConflictError(MsgUserIDExists))
		case errors.Is(err, storage.ErrAdminExists):
			log.Warn("admin already exists", sl.Err(err))

			return models.UserInfo{}, fmt.Errorf("%s: %w", op, models.NewConflictError(MsgAdminExists))
		}

		log.Error("failed to save user", sl.Err(err))

		return models.UserInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	if role == models.RoleAdmin {
		s.cache.SetDefault(adminExistsKey, true)
	}

	log.Info("user registered", slog.String("role", string(role)))

	return user.Info(), nil
}

// Login checks name, id and password together; a supplied role must match the stored one.
func (s *UserService) Login(ctx context.Context, input request.LoginRequest) (*LoginResult, error) {
	const op = "user_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", input.ID),
	)

	log.Info("attempting to login user")

	if input.Name == "" || input.ID == "" || input.Password == "" {
		log.Warn("missing required fields")

		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgMissingFields))
	}

	user, err := s.repo.UserByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, models.NewAuthError(MsgInvalidCredentials))
		}
		log.Error("failed to get user", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Name != input.Name {
		log.Info("invalid credentials", slog.String("reason", "name mismatch"))

		return nil, fmt.Errorf("%s: %w", op, models.NewAuthError(MsgInvalidCredentials))
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(input.Password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, models.NewAuthError(MsgInvalidCredentials))
	}

	if input.Role != "" && models.Role(input.Role) != user.Role {
		log.Warn("role mismatch", slog.String("role", input.Role))

		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgRoleMismatch))
	}

	token, err := jwt.NewToken(user, s.tokenSecret, s.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully")

	return &LoginResult{
		User:  user.Info(),
		Token: token,
	}, nil
}

// AdminExists reports whether the admin account has been registered. A positive
// answer is cached for good since users are never removed.
func (s *UserService) AdminExists(ctx context.Context) (bool, error) {
	const op = "user_service.AdminExists"

	if _, found := s.cache.Get(adminExistsKey); found {
		return true, nil
	}

	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		s.log.Error("failed to check admin", slog.String("op", op), sl.Err(err))

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		s.cache.SetDefault(adminExistsKey, true)
	}

	return exists, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserInfo, error) {
	const op = "user_service.ListUsers"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		result = append(result, u.Info())
	}

	return result, nil
}
