package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"strings"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/logger/sl"
	"imagenote/internal/metrics"
	"imagenote/internal/repository"
	storage "imagenote/internal/storage/filestorage"
	"imagenote/internal/transport/http/dto"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MsgNoFiles       = "没有选择文件"
	MsgTooManyFiles  = "最多只能上传10张图片"
	MsgFileTooLarge  = "文件大小超过限制"
	MsgNotAnImage    = "只允许上传图片文件"
	DefaultMaxSize   = 10 << 20
	DefaultMaxFiles  = 10
	octetStreamMIME  = "application/octet-stream"
	sniffHeaderBytes = 3072
)

type Limits struct {
	MaxSize  int64
	MaxFiles int
}

type MediaService struct {
	log         *slog.Logger
	repo        repository.ImageRepository
	fileStorage storage.FileStorage
	limits      Limits
	now         func() time.Time
}

func NewMediaService(log *slog.Logger, repo repository.ImageRepository, fileStorage storage.FileStorage, limits Limits) *MediaService {
	if limits.MaxSize <= 0 {
		limits.MaxSize = DefaultMaxSize
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = DefaultMaxFiles
	}

	return &MediaService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		limits:      limits,
		now:         time.Now,
	}
}

// Upload validates the whole batch before writing anything, then stores the files and
// appends their records in one repository call.
func (s *MediaService) Upload(ctx context.Context, input dto.ImageUploadInput) ([]models.Image, error) {
	const op = "media_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("files", len(input.Files)),
		slog.String("uploaded_by", input.UploadedBy),
	)

	log.Info("upload images")

	mimeTypes, err := s.validate(input.Files)
	if err != nil {
		log.Warn("upload rejected", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	images := make([]models.Image, 0, len(input.Files))
	saved := make([]string, 0, len(input.Files))

	for i, fh := range input.Files {
		storageName, size, err := s.fileStorage.Save(ctx, fh)
		if err != nil {
			s.cleanup(ctx, saved)
			log.Error("failed to save file", slog.String("file", fh.Filename), sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
		saved = append(saved, storageName)

		img := models.NewImage(fh.Filename, storageName, s.fileStorage.BaseURL(), input.UploadedBy, mimeTypes[i], size, now)
		if err := img.Validate(); err != nil {
			s.cleanup(ctx, saved)
			log.Error("image validation failed", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		images = append(images, *img)
	}

	if err := s.repo.SaveImages(ctx, images); err != nil {
		s.cleanup(ctx, saved)
		log.Error("failed to save images", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ImagesUploadedTotal.Add(float64(len(images)))
	log.Info("images uploaded", slog.Int("count", len(images)))

	return images, nil
}

func (s *MediaService) ListImages(ctx context.Context) ([]models.Image, error) {
	const op = "media_service.ListImages"

	images, err := s.repo.ListImages(ctx)
	if err != nil {
		s.log.Error("failed to list images", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (s *MediaService) validate(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, models.NewValidationError(MsgNoFiles)
	}
	if len(files) > s.limits.MaxFiles {
		return nil, models.NewValidationError(MsgTooManyFiles)
	}

	mimeTypes := make([]string, len(files))
	for i, fh := range files {
		if fh.Size > s.limits.MaxSize {
			return nil, models.NewPayloadTooLargeError(MsgFileTooLarge)
		}

		mt, err := detectMIME(fh)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(mt, "image/") {
			return nil, models.NewUnsupportedMediaTypeError(MsgNotAnImage)
		}
		mimeTypes[i] = mt
	}

	return mimeTypes, nil
}

// detectMIME trusts the declared part type unless it is missing or generic.
func detectMIME(fh *multipart.FileHeader) (string, error) {
	declared := fh.Header.Get("Content-Type")
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != octetStreamMIME {
			return mt, nil
		}
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffHeaderBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}

	return mimetype.Detect(head[:n]).String(), nil
}

func (s *MediaService) cleanup(ctx context.Context, storageNames []string) {
	for _, name := range storageNames {
		if err := s.fileStorage.Delete(ctx, name); err != nil {
			s.log.Warn("failed to remove stored file", slog.String("file", name), sl.Err(err))
		}
	}
}
