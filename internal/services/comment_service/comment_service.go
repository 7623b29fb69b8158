package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/logger/sl"
	"imagenote/internal/metrics"
	"imagenote/internal/repository"
	"imagenote/internal/transport/http/dto"
)

const MsgMissingFields = "缺少必要字段"

type CommentService struct {
	log  *slog.Logger
	repo repository.CommentRepository
	now  func() time.Time
}

func NewCommentService(log *slog.Logger, repo repository.CommentRepository) *CommentService {
	return &CommentService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// Submit stores a comment as given. The image id is not checked against the image
// collection and a user may comment on the same image more than once.
func (s *CommentService) Submit(ctx context.Context, input dto.CommentInput) (*models.Comment, error) {
	const op = "comment_service.Submit"

	log := s.log.With(
		slog.String("op", op),
		slog.String("image_id", input.ImageID),
		slog.String("user_id", input.UserID),
	)

	text := strings.TrimSpace(input.Text)
	if input.ImageID == "" || input.UserID == "" || input.UserName == "" || text == "" {
		log.Warn("missing required fields")

		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(MsgMissingFields))
	}

	comment := models.NewComment(input.ImageID, input.UserID, input.UserName, models.Role(input.UserRole), text, s.now())

	if err := s.repo.SaveComment(ctx, *comment); err != nil {
		log.Error("failed to save comment", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CommentsSubmittedTotal.Inc()
	log.Info("comment submitted", slog.String("comment_id", comment.ID.String()))

	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context) ([]models.Comment, error) {
	const op = "comment_service.ListComments"

	comments, err := s.repo.ListComments(ctx)
	if err != nil {
		s.log.Error("failed to list comments", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comments, nil
}
