package http_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	httpapp "imagenote/internal/app/http"
	"imagenote/internal/domain/models"
	"imagenote/internal/repository"
	comment "imagenote/internal/services/comment_service"
	export "imagenote/internal/services/export_service"
	media "imagenote/internal/services/media_service"
	user "imagenote/internal/services/user_service"
	storage "imagenote/internal/storage/filestorage"
	httprouters "imagenote/internal/transport/http"
	"imagenote/internal/transport/http/dto"
	"imagenote/internal/transport/http/dto/response"

	"github.com/stretchr/testify/suite"
)

type uploadFile struct {
	name        string
	contentType string
	content     []byte
}

type IntegrationTestSuite struct {
	suite.Suite
	server  *httpapp.Server
	baseDir string
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.baseDir = s.T().TempDir()
	fileStorage, err := storage.NewLocalFileStorage(s.baseDir, "/uploads")
	s.Require().NoError(err, "Failed to initialize file storage")

	repo := repository.NewMemoryRepository()

	routers := httprouters.NewRouter(log,
		user.NewUserService(log, repo.User, "secret", time.Hour),
		media.NewMediaService(log, repo.Image, fileStorage, media.Limits{}),
		comment.NewCommentService(log, repo.Comment),
		export.NewExportService(log, repo.Image, repo.Comment),
	)

	s.server = httpapp.New(log, httpapp.Options{
		AllowOrigins: []string{"http://localhost:5173"},
		UploadsDir:   fileStorage.GetBaseDir(),
		UploadsURL:   fileStorage.BaseURL(),
		TokenSecret:  "secret",
	}, routers)
	s.server.BuildRouters()
}

func (s *IntegrationTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)

	return rec
}

func (s *IntegrationTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

func (s *IntegrationTestSuite) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *IntegrationTestSuite) upload(uploadedBy string, files ...uploadFile) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)

		part, err := writer.CreatePart(h)
		s.Require().NoError(err)
		_, err = part.Write(f.content)
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.WriteField("uploadedBy", uploadedBy))
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.do(req)
}

func (s *IntegrationTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *IntegrationTestSuite) errorOf(rec *httptest.ResponseRecorder) string {
	var body response.ErrorResponse
	s.decode(rec, &body)

	return body.Error
}

func pngImage(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func (s *IntegrationTestSuite) TestHealth() {
	rec := s.get("/api/health")
	s.Equal(http.StatusOK, rec.Code)

	var body response.HealthResponse
	s.decode(rec, &body)
	s.Equal("OK", body.Status)

	_, err := time.Parse(time.RFC3339, body.Timestamp)
	s.NoError(err)
}

func (s *IntegrationTestSuite) TestRegisterAndLogin() {
	rec := s.postJSON("/api/register", map[string]string{"name": "Boss", "id": "boss", "password": "pw", "role": "admin"})
	s.Equal(http.StatusOK, rec.Code)

	var reg dto.UserResponse
	s.decode(rec, &reg)
	s.Equal(httprouters.MsgRegistered, reg.Message)
	s.Equal(models.UserInfo{ID: "boss", Name: "Boss", Role: models.RoleAdmin}, reg.User)

	rec = s.postJSON("/api/register", map[string]string{"name": "Other", "id": "boss2", "password": "pw", "role": "admin"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgAdminExists, s.errorOf(rec))

	rec = s.postJSON("/api/register", map[string]string{"name": "Other", "id": "boss", "password": "pw", "role": "user"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgUserIDExists, s.errorOf(rec))

	rec = s.postJSON("/api/register", map[string]string{"name": "", "id": "x", "password": "pw"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgMissingFields, s.errorOf(rec))

	rec = s.postJSON("/api/register", map[string]string{"name": "X", "id": "x", "password": "pw", "role": "root"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgInvalidRole, s.errorOf(rec))

	rec = s.postJSON("/api/login", map[string]string{"name": "Boss", "id": "boss", "password": "pw", "role": "admin"})
	s.Equal(http.StatusOK, rec.Code)

	var login dto.UserResponse
	s.decode(rec, &login)
	s.Equal(httprouters.MsgLoggedIn, login.Message)
	s.NotEmpty(login.Token)

	rec = s.postJSON("/api/login", map[string]string{"name": "Boss", "id": "boss", "password": "nope"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(user.MsgInvalidCredentials, s.errorOf(rec))

	rec = s.postJSON("/api/login", map[string]string{"name": "Boss", "id": "boss", "password": "pw", "role": "user"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgRoleMismatch, s.errorOf(rec))

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = s.do(req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(response.ErrInvalidRequestFormat.Error, s.errorOf(rec))
}

func (s *IntegrationTestSuite) TestUsersAndAdminExists() {
	rec := s.get("/api/admin-exists")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"adminExists":false}`, rec.Body.String())

	s.Equal(http.StatusOK, s.postJSON("/api/register", map[string]string{"name": "Alice", "id": "u1", "password": "pw"}).Code)
	s.Equal(http.StatusOK, s.postJSON("/api/register", map[string]string{"name": "Boss", "id": "boss", "password": "pw", "role": "admin"}).Code)

	rec = s.get("/api/admin-exists")
	s.JSONEq(`{"adminExists":true}`, rec.Body.String())

	rec = s.get("/api/users")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[{"id":"u1","name":"Alice","role":"user"},{"id":"boss","name":"Boss","role":"admin"}]`, rec.Body.String())
	s.NotContains(rec.Body.String(), "password")
}

func (s *IntegrationTestSuite) TestUploadListAndServe() {
	content := pngImage(s.T())

	rec := s.upload("Boss",
		uploadFile{name: "a.png", contentType: "image/png", content: content},
		uploadFile{name: "b.png", contentType: "application/octet-stream", content: content},
	)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var up dto.ImageUploadResponse
	s.decode(rec, &up)
	s.Equal("成功上传 2 张图片", up.Message)
	s.Require().Len(up.Images, 2)
	s.Equal("Boss", up.Images[0].UploadedBy)

	rec = s.get("/api/images")
	s.Equal(http.StatusOK, rec.Code)

	var images []models.Image
	s.decode(rec, &images)
	s.Require().Len(images, 2)
	s.Equal(up.Images[0].ID, images[0].ID)
	s.Equal(up.Images[1].ID, images[1].ID)

	rec = s.get(images[0].URL)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(content, rec.Body.Bytes())
}

func (s *IntegrationTestSuite) TestUploadRejections() {
	rec := s.upload("Boss")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(media.MsgNoFiles, s.errorOf(rec))

	files := make([]uploadFile, 11)
	for i := range files {
		files[i] = uploadFile{name: "x.png", contentType: "image/png", content: pngImage(s.T())}
	}
	rec = s.upload("Boss", files...)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(media.MsgTooManyFiles, s.errorOf(rec))

	rec = s.upload("Boss", uploadFile{name: "n.txt", contentType: "text/plain", content: []byte("hi")})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(media.MsgNotAnImage, s.errorOf(rec))

	rec = s.get("/api/images")
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *IntegrationTestSuite) TestCommentsAndExport() {
	up := s.upload("Boss", uploadFile{name: "cat.png", contentType: "image/png", content: pngImage(s.T())})
	s.Require().Equal(http.StatusOK, up.Code)

	var uploaded dto.ImageUploadResponse
	s.decode(up, &uploaded)
	imageID := uploaded.Images[0].ID.String()

	rec := s.postJSON("/api/comments", map[string]string{
		"imageId": imageID, "userId": "u1", "userName": "Alice", "userRole": "user", "text": ` say "hi" `,
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var created dto.CommentResponse
	s.decode(rec, &created)
	s.Equal(httprouters.MsgCommentSubmitted, created.Message)
	s.Equal(`say "hi"`, created.Comment.Text)

	rec = s.postJSON("/api/comments", map[string]string{
		"imageId": "missing", "userId": "boss", "userName": "Boss", "userRole": "admin", "text": "ok",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.postJSON("/api/comments", map[string]string{"imageId": imageID, "userId": "u1", "userName": "Alice", "text": "  "})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(comment.MsgMissingFields, s.errorOf(rec))

	rec = s.get("/api/comments")
	var comments []models.Comment
	s.decode(rec, &comments)
	s.Len(comments, 2)

	rec = s.get("/api/export-comments")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	s.Equal("attachment; filename=comments.csv", rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimPrefix(rec.Body.String(), "\uFEFF"), "\n")
	s.Require().Len(lines, 3)
	s.Equal("图片文件名,用户ID,用户姓名,用户角色,回复内容,时间", lines[0])
	s.True(strings.HasPrefix(lines[1], `"cat.png","u1","Alice","志愿者","say ""hi""","`))
	s.True(strings.HasPrefix(lines[2], `"未知","boss","Boss","管理者","ok","`))
}

func (s *IntegrationTestSuite) TestFreeFormFieldsAccepted() {
	longID := strings.Repeat("i", 65)

	rec := s.postJSON("/api/register", map[string]string{"name": "  ", "id": longID, "password": " "})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.postJSON("/api/login", map[string]string{"name": "  ", "id": longID, "password": " "})
	s.Equal(http.StatusOK, rec.Code)

	rec = s.postJSON("/api/register", map[string]string{"name": "Long", "id": "long", "password": strings.Repeat("p", 73)})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(user.MsgPasswordTooLong, s.errorOf(rec))

	rec = s.postJSON("/api/comments", map[string]string{
		"imageId": "img", "userId": longID, "userName": "Vol", "userRole": "volunteer", "text": strings.Repeat("t", 2001),
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var created dto.CommentResponse
	s.decode(rec, &created)
	s.Equal(models.Role("volunteer"), created.Comment.UserRole)

	rec = s.get("/api/export-comments")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"未知","`+longID+`","Vol","志愿者","`)
}
