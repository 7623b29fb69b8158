package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"imagenote/internal/domain/models"
	"imagenote/internal/lib/jwt"
	"imagenote/internal/lib/logger/sl"
	mw "imagenote/internal/middleware"
	httprouters "imagenote/internal/transport/http"
	"imagenote/internal/transport/http/dto/response"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Options struct {
	Host         string
	Port         string
	Timeout      time.Duration
	AllowOrigins []string
	UploadsDir   string
	UploadsURL   string
	TokenSecret  string
	RequireAdmin bool
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if opts.Timeout > 0 {
		e.Server.ReadTimeout = opts.Timeout
		e.Server.WriteTimeout = opts.Timeout
	}

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.Use(middleware.Recover())
	e.Use(mw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Warn("statsviz start with error", sl.Err(err))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		opts:    opts,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info("starting http server", slog.String("op", op), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// ServeHTTP lets the configured router be driven without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.opts.Host, s.opts.Port)
}

// adminGate is a no-op unless RequireAdmin is set; then it demands a bearer token
// carrying the admin role.
func (s *Server) adminGate() []echo.MiddlewareFunc {
	if !s.opts.RequireAdmin {
		return nil
	}

	return []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			TokenLookup: "header:Authorization:Bearer ,query:token",
			ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
				return jwt.ParseToken(auth, s.opts.TokenSecret)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				s.log.Warn("admin gate rejected token", sl.Err(err))

				return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationRequired)
			},
		}),
		s.adminOnlyMiddleware,
	}
}

func (s *Server) adminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get("user").(*jwt.Claims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationRequired)
		}

		if claims.Role != models.RoleAdmin {
			return c.JSON(http.StatusForbidden, response.ErrAdminRequired)
		}

		return next(c)
	}
}

func (s *Server) BuildRouters() {
	s.e.Static(s.opts.UploadsURL, s.opts.UploadsDir)
	s.e.GET("/metrics", echoprometheus.NewHandler())

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.e.Group("/api")
	{
		api.GET("/health", s.routers.Health)
		api.GET("/users", s.routers.ListUsers)
		api.GET("/admin-exists", s.routers.AdminExists)
		api.POST("/register", s.routers.Register)
		api.POST("/login", s.routers.Login)

		api.GET("/images", s.routers.ListImages)
		api.POST("/upload", s.routers.UploadImages, s.adminGate()...)

		api.GET("/comments", s.routers.ListComments)
		api.POST("/comments", s.routers.SubmitComment)
		api.GET("/export-comments", s.routers.ExportComments, s.adminGate()...)
	}
}
