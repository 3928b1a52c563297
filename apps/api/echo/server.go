package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
	"github.com/trezcool/econspark/core/user"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		UserSvc     *user.Service
		ClassSvc    *classroom.Service
		ContentSvc  *content.Service
		ActivitySvc *activity.Service
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.signalShutdown)

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	authed := []echo.MiddlewareFunc{middleware.JWTWithConfig(newJWTConfig(s.Conf)), contextUserMiddleware(s.UserSvc)}

	registerUserAPI(v1, authed, s.UserSvc, s.Conf)
	classes := v1.Group("/classes", authed...)
	registerClassroomAPI(classes, s.ClassSvc, s.ContentSvc)
	registerActivityAPI(classes, s.ActivitySvc)
	registerContentAPI(v1.Group("/sets", authed...), s.ContentSvc)
}

// Start listens on the configured address; failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.Logger.Info("API listening on " + s.Conf.Server.Address)
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to EconSpark API!")
}
