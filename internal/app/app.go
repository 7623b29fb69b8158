package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "imagenote/internal/app/http"
	"imagenote/internal/config"
	"imagenote/internal/repository"
	commentservice "imagenote/internal/services/comment_service"
	exportservice "imagenote/internal/services/export_service"
	mediaservice "imagenote/internal/services/media_service"
	userservice "imagenote/internal/services/user_service"
	storage "imagenote/internal/storage/filestorage"
	"imagenote/internal/storage/postgresql"
	redisstorage "imagenote/internal/storage/redis"
	httprouters "imagenote/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	closers    []func()
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{}

	repo, err := a.repository(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fileStorage, err := storage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userService := userservice.NewUserService(log, repo.User, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	mediaService := mediaservice.NewMediaService(log, repo.Image, fileStorage, mediaservice.Limits{
		MaxSize:  cfg.FileStorage.MaxSize,
		MaxFiles: cfg.FileStorage.MaxFiles,
	})
	commentService := commentservice.NewCommentService(log, repo.Comment)
	exportService := exportservice.NewExportService(log, repo.Image, repo.Comment)

	routers := httprouters.NewRouter(log, userService, mediaService, commentService, exportService)

	a.HTTPServer = httpapp.New(log, httpapp.Options{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		Timeout:      cfg.HTTP.Timeout,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		UploadsDir:   fileStorage.GetBaseDir(),
		UploadsURL:   fileStorage.BaseURL(),
		TokenSecret:  cfg.Auth.TokenSecret,
		RequireAdmin: cfg.Auth.RequireAdmin,
	}, routers)
	a.HTTPServer.BuildRouters()

	return a, nil
}

func (a *App) repository(ctx context.Context, log *slog.Logger, cfg *config.Config) (*repository.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory, "":
		log.Info("using in-memory storage")

		return repository.NewMemoryRepository(), nil
	case config.DriverPostgres:
		st, err := postgresql.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Stop)
		log.Info("using postgres storage")

		return repository.NewPostgresRepository(st.Pool()), nil
	case config.DriverRedis:
		client, err := redisstorage.Connect(ctx, cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info("using redis storage", slog.String("addr", cfg.Redis.RedisAddr))

		return repository.NewRedisRepository(client, cfg.Redis.KeyPrefix), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Close releases storage connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
