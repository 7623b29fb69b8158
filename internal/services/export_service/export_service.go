package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/logger/sl"
	"imagenote/internal/metrics"
	"imagenote/internal/repository"

	"golang.org/x/sync/singleflight"
)

const (
	FileName     = "comments.csv"
	UnknownImage = "未知"

	bom    = "\uFEFF"
	header = "图片文件名,用户ID,用户姓名,用户角色,回复内容,时间"
)

type ExportService struct {
	log      *slog.Logger
	images   repository.ImageRepository
	comments repository.CommentRepository
	group    singleflight.Group
}

func NewExportService(log *slog.Logger, images repository.ImageRepository, comments repository.CommentRepository) *ExportService {
	return &ExportService{
		log:      log,
		images:   images,
		comments: comments,
	}
}

// ExportCSV renders every comment as one CSV row. Each caller reads its own snapshot
// first; concurrent callers holding the same snapshot share a single render.
func (s *ExportService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	const op = "export_service.ExportCSV"

	log := s.log.With(slog.String("op", op))

	images, comments, err := s.snapshot(ctx)
	if err != nil {
		log.Error("failed to export comments", sl.Err(err))

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	// Collections are append-only, so equal lengths mean equal contents.
	key := fmt.Sprintf("csv:%d:%d", len(images), len(comments))

	v, _, shared := s.group.Do(key, func() (interface{}, error) {
		names := make(map[string]string, len(images))
		for _, img := range images {
			names[img.ID.String()] = img.FileName
		}

		return BuildCSV(comments, names), nil
	})

	metrics.CSVExportsTotal.Inc()
	log.Info("comments exported", slog.Int("rows", len(comments)), slog.Bool("shared", shared))

	return v.([]byte), FileName, nil
}

func (s *ExportService) snapshot(ctx context.Context) ([]models.Image, []models.Comment, error) {
	images, err := s.images.ListImages(ctx)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.comments.ListComments(ctx)
	if err != nil {
		return nil, nil, err
	}

	return images, comments, nil
}

// BuildCSV writes the BOM, the header and one fully quoted row per comment.
// Rows are separated by "\n" and the payload has no trailing newline.
func BuildCSV(comments []models.Comment, imageNames map[string]string) []byte {
	var b strings.Builder

	b.WriteString(bom)
	b.WriteString(header)

	for _, c := range comments {
		name, ok := imageNames[c.ImageID]
		if !ok {
			name = UnknownImage
		}

		b.WriteByte('\n')
		writeRow(&b, name, c.UserID, c.UserName, c.UserRole.Label(), c.Text, c.Timestamp)
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
