package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/dashboard"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/offline"
	"github.com/trezcool/mwalimu/core/resource"
	"github.com/trezcool/mwalimu/core/teacher"
	"github.com/trezcool/mwalimu/core/training"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		TeacherSvc   *teacher.Service
		Resetter     *teacher.PasswordResetter
		LessonSvc    *lessonplan.Service
		GradebookSvc *gradebook.Service
		ResourceSvc  *resource.Service
		TrainingSvc  *training.Service
		DashboardSvc *dashboard.Service
		OfflineLib   *offline.Library
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.TeacherSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	authed := []echo.MiddlewareFunc{middleware.JWTWithConfig(s.auth.jwtConfig), s.auth.teacherMiddleware}

	registerTeacherAPI(g, authed, s.auth, s.deps.Resetter, s.deps.Validate)
	registerLessonAPI(g, authed, s.deps.LessonSvc, s.deps.Validate)
	registerGradebookAPI(g, authed, s.deps.GradebookSvc, s.deps.Validate)
	registerResourceAPI(g, authed, s.deps.ResourceSvc)
	registerTrainingAPI(g, authed, s.deps.TrainingSvc, s.deps.DashboardSvc, s.deps.Validate)
	registerDashboardAPI(g, authed, s.deps.DashboardSvc)
	registerOfflineAPI(g, s.deps.OfflineLib)
}

// Start blocks until the server stops. Unexpected failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

// Close immediately stops the server.
func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// GenerateToken returns a signed JWT authenticating t.
func (s *Server) GenerateToken(t teacher.Teacher) (string, error) {
	return s.auth.generateToken(s.auth.claimsFor(t))
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
