package repository

import (
	"context"
	"fmt"

	"imagenote/internal/domain/models"
	"imagenote/internal/storage/postgresql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

type CommentRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommentRepo) SaveComment(ctx context.Context, comment models.Comment) error {
	const op = "repository.comment_repository.SaveComment"

	query, args, err := r.sb.Insert(postgresql.CommentsTable).
		Columns("id", "image_id", "user_id", "user_name", "user_role", "text", "timestamp").
		Values(
			comment.ID,
			comment.ImageID,
			comment.UserID,
			comment.UserName,
			string(comment.UserRole),
			comment.Text,
			comment.Timestamp,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *CommentRepo) ListComments(ctx context.Context) ([]models.Comment, error) {
	const op = "repository.comment_repository.ListComments"

	query, args, err := r.sb.
		Select("id", "image_id", "user_id", "user_name", "user_role", "text", "timestamp").
		From(postgresql.CommentsTable).
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

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ImageID, &c.UserID, &c.UserName, &c.UserRole, &c.Text, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return comments, nil
}
