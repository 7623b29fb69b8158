package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingImages struct {
	mock.Mock
}

func (m *failingImages) SaveImages(ctx context.Context, images []models.Image) error {
	return m.Called(ctx, images).Error(0)
}

func (m *failingImages) ListImages(ctx context.Context) ([]models.Image, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Image), args.Error(1)
}

// pausedComments holds its first ListComments call after the snapshot is taken
// until release is closed.
type pausedComments struct {
	repository.CommentRepository
	taken   chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *pausedComments) ListComments(ctx context.Context) ([]models.Comment, error) {
	comments, err := p.CommentRepository.ListComments(ctx)

	p.once.Do(func() {
		close(p.taken)
		<-p.release
	})

	return comments, err
}

func TestBuildCSV(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		out := BuildCSV(nil, nil)
		assert.Equal(t, "\uFEFF图片文件名,用户ID,用户姓名,用户角色,回复内容,时间", string(out))
	})

	t.Run("rows", func(t *testing.T) {
		comments := []models.Comment{
			{ImageID: "img-1", UserID: "u1", UserName: "Alice", UserRole: models.RoleUser, Text: `say "hi"`, Timestamp: "2024/3/7 09:05:01"},
			{ImageID: "gone", UserID: "boss", UserName: "Boss", UserRole: models.RoleAdmin, Text: "a,b", Timestamp: "2024/3/7 10:00:00"},
		}

		out := string(BuildCSV(comments, map[string]string{"img-1": "cat.png"}))
		lines := strings.Split(out, "\n")

		require.Len(t, lines, 3)
		assert.Equal(t, `"cat.png","u1","Alice","志愿者","say ""hi""","2024/3/7 09:05:01"`, lines[1])
		assert.Equal(t, `"未知","boss","Boss","管理者","a,b","2024/3/7 10:00:00"`, lines[2])
		assert.False(t, strings.HasSuffix(out, "\n"))
	})

	t.Run("parses back with a standard reader", func(t *testing.T) {
		comments := []models.Comment{
			{ImageID: "img-1", UserID: "u1", UserName: "Alice", UserRole: models.RoleUser, Text: "line1\nline2 \"q\"", Timestamp: "t"},
		}

		out := BuildCSV(comments, map[string]string{"img-1": "cat.png"})
		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, []byte("\uFEFF")))).ReadAll()
		require.NoError(t, err)

		require.Len(t, records, 2)
		assert.Equal(t, []string{"图片文件名", "用户ID", "用户姓名", "用户角色", "回复内容", "时间"}, records[0])
		assert.Equal(t, []string{"cat.png", "u1", "Alice", "志愿者", "line1\nline2 \"q\"", "t"}, records[1])
	})
}

func TestExportService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	images := repository.NewInMemoryImageRepository()
	comments := repository.NewInMemoryCommentRepository()
	service := NewExportService(slog.Default(), images, comments)

	img := models.NewImage("dog.jpg", "1-2-dog.jpg", "/uploads", "Boss", "image/jpeg", 3, time.Now())
	require.NoError(t, images.SaveImages(ctx, []models.Image{*img}))
	require.NoError(t, comments.SaveComment(ctx, *models.NewComment(img.ID.String(), "u1", "Alice", models.RoleUser, "woof", time.Now())))

	payload, name, err := service.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Equal(t, FileName, name)
	assert.True(t, bytes.HasPrefix(payload, []byte("\uFEFF")))
	assert.Contains(t, string(payload), `"dog.jpg","u1","Alice","志愿者","woof"`)

	t.Run("concurrent exports agree", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make([][]byte, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out, _, err := service.ExportCSV(ctx)
				assert.NoError(t, err)
				results[i] = out
			}(i)
		}
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, payload, r)
		}
	})
}

func TestExportService_SeesCommentsCommittedDuringRender(t *testing.T) {
	ctx := context.Background()
	comments := &pausedComments{
		CommentRepository: repository.NewInMemoryCommentRepository(),
		taken:             make(chan struct{}),
		release:           make(chan struct{}),
	}
	service := NewExportService(slog.Default(), repository.NewInMemoryImageRepository(), comments)

	first := make(chan []byte, 1)
	go func() {
		out, _, err := service.ExportCSV(ctx)
		assert.NoError(t, err)
		first <- out
	}()

	<-comments.taken
	require.NoError(t, comments.SaveComment(ctx, *models.NewComment("img", "u1", "Alice", models.RoleUser, "MY-NEW-COMMENT", time.Now())))

	out, _, err := service.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), "MY-NEW-COMMENT")

	close(comments.release)
	assert.NotContains(t, string(<-first), "MY-NEW-COMMENT")
}

func TestExportService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	images := new(failingImages)
	images.On("ListImages", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() != nil })).
		Return([]models.Image(nil), context.Canceled)
	images.On("ListImages", mock.Anything).Return([]models.Image{}, nil)

	service := NewExportService(slog.Default(), images, repository.NewInMemoryCommentRepository())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := service.ExportCSV(cancelled)
	assert.ErrorIs(t, err, context.Canceled)

	out, _, err := service.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BuildCSV(nil, nil), out)
}

func TestExportService_RepositoryError(t *testing.T) {
	ctx := context.Background()
	imgs := new(failingImages)
	imgs.On("ListImages", mock.Anything).Return([]models.Image(nil), errors.New("db error")).Once()

	service := NewExportService(slog.Default(), imgs, repository.NewInMemoryCommentRepository())

	_, _, err := service.ExportCSV(ctx)
	assert.ErrorContains(t, err, "db error")
}
