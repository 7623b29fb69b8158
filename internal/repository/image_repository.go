package repository

import (
	"context"
	"fmt"

	"imagenote/internal/domain/models"
	"imagenote/internal/storage/postgresql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ImageRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewImageRepository(db *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveImages inserts the whole batch in one statement, so either all images are stored or none.
func (r *ImageRepo) SaveImages(ctx context.Context, images []models.Image) error {
	const op = "repository.image_repository.SaveImages"

	if len(images) == 0 {
		return nil
	}

	builder := r.sb.Insert(postgresql.ImagesTable).
		Columns(
			"id",
			"file_name",
			"url",
			"uploaded_by",
			"upload_time",
			"size",
			"mime_type",
			"storage_name",
		)

	for _, img := range images {
		builder = builder.Values(
			img.ID,
			img.FileName,
			img.URL,
			img.UploadedBy,
			img.UploadTime,
			img.Size,
			img.MimeType,
			img.StorageName,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to insert images: %w", op, err)
	}

	return nil
}

func (r *ImageRepo) ListImages(ctx context.Context) ([]models.Image, error) {
	const op = "repository.image_repository.ListImages"

	query, args, err := r.sb.
		Select(
			"id",
			"file_name",
			"url",
			"uploaded_by",
			"upload_time",
			"size",
			"mime_type",
			"storage_name",
		).
		From(postgresql.ImagesTable).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	images := make([]models.Image, 0)

	for rows.Next() {
		var img models.Image
		err := rows.Scan(
			&img.ID,
			&img.FileName,
			&img.URL,
			&img.UploadedBy,
			&img.UploadTime,
			&img.Size,
			&img.MimeType,
			&img.StorageName,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return images, nil
}
