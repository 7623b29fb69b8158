package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/logger/sl"
	"imagenote/internal/transport/http/dto"
	"imagenote/internal/transport/http/dto/request"
	"imagenote/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"

	userservice "imagenote/internal/services/user_service"

	_ "imagenote/docs"
)

const (
	MsgRegistered       = "注册成功"
	MsgLoggedIn         = "登录成功"
	MsgUploadedTemplate = "成功上传 %d 张图片"
	MsgCommentSubmitted = "评论提交成功"
)

type UserService interface {
	RegisterNewUser(ctx context.Context, input dto.UserRegisterInput) (models.UserInfo, error)
	Login(ctx context.Context, input request.LoginRequest) (*userservice.LoginResult, error)
	AdminExists(ctx context.Context) (bool, error)
	ListUsers(ctx context.Context) ([]models.UserInfo, error)
}

type MediaService interface {
	Upload(ctx context.Context, input dto.ImageUploadInput) ([]models.Image, error)
	ListImages(ctx context.Context) ([]models.Image, error)
}

type CommentService interface {
	Submit(ctx context.Context, input dto.CommentInput) (*models.Comment, error)
	ListComments(ctx context.Context) ([]models.Comment, error)
}

type ExportService interface {
	ExportCSV(ctx context.Context) ([]byte, string, error)
}

type Routers struct {
	log            *slog.Logger
	UserService    UserService
	MediaService   MediaService
	CommentService CommentService
	ExportService  ExportService
}

func NewRouter(log *slog.Logger, userService UserService, mediaService MediaService, commentService CommentService, exportService ExportService) *Routers {
	return &Routers{
		log:            log,
		UserService:    userService,
		MediaService:   mediaService,
		CommentService: commentService,
		ExportService:  exportService,
	}
}

// Health godoc
// @Summary 健康检查
// @Tags system
// @Produce json
// @Success 200 {object} response.HealthResponse
// @Router /api/health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Health(time.Now()))
}

// ListUsers godoc
// @Summary 用户列表
// @Description 按注册顺序返回所有用户，不包含密码
// @Tags users
// @Produce json
// @Success 200 {array} models.UserInfo
// @Failure 500 {object} response.ErrorResponse
// @Router /api/users [get]
func (r *Routers) ListUsers(c echo.Context) error {
	const op = "http.routers.ListUsers"

	log := r.log.With(slog.String("op", op))

	users, err := r.UserService.ListUsers(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, users)
}

// AdminExists godoc
// @Summary 是否已有管理员
// @Tags users
// @Produce json
// @Success 200 {object} dto.AdminExistsResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/admin-exists [get]
func (r *Routers) AdminExists(c echo.Context) error {
	const op = "http.routers.AdminExists"

	log := r.log.With(slog.String("op", op))

	exists, err := r.UserService.AdminExists(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, dto.AdminExistsResponse{AdminExists: exists})
}

// Register godoc
// @Summary 注册
// @Description 创建志愿者或唯一的管理员账号
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterInput true "注册信息"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(slog.String("op", op))

	var req dto.UserRegisterInput
	if errResp := r.bind(c, log, &req); errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	user, err := r.UserService.RegisterNewUser(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, dto.UserResponse{
		Message: MsgRegistered,
		User:    user,
	})
}

// Login godoc
// @Summary 登录
// @Description 姓名、ID 和密码必须同时匹配；提供角色时需与注册角色一致
// @Tags users
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "登录信息"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if errResp := r.bind(c, log, &req); errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	res, err := r.UserService.Login(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, dto.UserResponse{
		Message: MsgLoggedIn,
		User:    res.User,
		Token:   res.Token,
	})
}

// UploadImages godoc
// @Summary 上传图片
// @Description 一次最多 10 张，每张不超过 10MB，仅限图片
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "图片文件，可重复"
// @Param uploadedBy formData string false "上传者姓名"
// @Success 200 {object} dto.ImageUploadResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/upload [post]
func (r *Routers) UploadImages(c echo.Context) error {
	const op = "http.routers.UploadImages"

	log := r.log.With(
		slog.String("op", op),
		slog.String("client_ip", c.RealIP()),
	)

	input := dto.ImageUploadInput{UploadedBy: c.FormValue("uploadedBy")}

	// A request without a multipart body is treated as an empty selection.
	if form, err := c.MultipartForm(); err == nil {
		input.Files = form.File["images"]
	} else {
		log.Debug("no multipart form", sl.Err(err))
	}

	if err := c.Validate(input); err != nil {
		log.Warn("invalid upload form", sl.Err(err))

		return c.JSON(http.StatusBadRequest, response.ErrorWithDetails(response.ErrInvalidRequestFormat.Error, err.Error()))
	}

	images, err := r.MediaService.Upload(c.Request().Context(), input)
	if err != nil {
		return r.fail(c, log, err, response.ErrUploadFailed)
	}

	return c.JSON(http.StatusOK, dto.ImageUploadResponse{
		Message: fmt.Sprintf(MsgUploadedTemplate, len(images)),
		Images:  images,
	})
}

// ListImages godoc
// @Summary 图片列表
// @Tags images
// @Produce json
// @Success 200 {array} models.Image
// @Failure 500 {object} response.ErrorResponse
// @Router /api/images [get]
func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	log := r.log.With(slog.String("op", op))

	images, err := r.MediaService.ListImages(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, images)
}

// SubmitComment godoc
// @Summary 提交评论
// @Tags comments
// @Accept json
// @Produce json
// @Param request body dto.CommentInput true "评论"
// @Success 200 {object} dto.CommentResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/comments [post]
func (r *Routers) SubmitComment(c echo.Context) error {
	const op = "http.routers.SubmitComment"

	log := r.log.With(slog.String("op", op))

	var req dto.CommentInput
	if errResp := r.bind(c, log, &req); errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}

	comment, err := r.CommentService.Submit(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, dto.CommentResponse{
		Message: MsgCommentSubmitted,
		Comment: *comment,
	})
}

// ListComments godoc
// @Summary 评论列表
// @Tags comments
// @Produce json
// @Success 200 {array} models.Comment
// @Failure 500 {object} response.ErrorResponse
// @Router /api/comments [get]
func (r *Routers) ListComments(c echo.Context) error {
	const op = "http.routers.ListComments"

	log := r.log.With(slog.String("op", op))

	comments, err := r.CommentService.ListComments(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, comments)
}

// ExportComments godoc
// @Summary 导出评论 CSV
// @Description UTF-8 带 BOM，Excel 可直接打开
// @Tags comments
// @Produce text/csv
// @Success 200 {file} file
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/export-comments [get]
func (r *Routers) ExportComments(c echo.Context) error {
	const op = "http.routers.ExportComments"

	log := r.log.With(slog.String("op", op))

	payload, fileName, err := r.ExportService.ExportCSV(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err, response.ErrExportFailed)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)

	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// bind decodes and validates the body; a non-nil result is the 400 body to send.
func (r *Routers) bind(c echo.Context, log *slog.Logger, req any) *response.ErrorResponse {
	if err := c.Bind(req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))

		resp := response.ErrInvalidRequestFormat
		return &resp
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))

		resp := response.ErrorWithDetails(response.ErrInvalidRequestFormat.Error, err.Error())
		return &resp
	}

	return nil
}

// fail writes the error body for err. Domain errors carry their own message; anything
// else is logged and answered with fallback.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error, fallback response.ErrorResponse) error {
	msg, ok := models.MessageOf(err)

	switch {
	case ok && errors.Is(err, models.ErrAuth):
		return c.JSON(http.StatusUnauthorized, response.Error(msg))
	case ok:
		return c.JSON(http.StatusBadRequest, response.Error(msg))
	}

	log.Error("request failed", sl.Err(err))

	return c.JSON(http.StatusInternalServerError, fallback)
}
