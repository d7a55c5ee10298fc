package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/dashboard"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/offline"
	"github.com/trezcool/mwalimu/core/resource"
	"github.com/trezcool/mwalimu/core/teacher"
	"github.com/trezcool/mwalimu/core/training"
	appfs "github.com/trezcool/mwalimu/fs"
	emailsvc "github.com/trezcool/mwalimu/services/email"
	logsvc "github.com/trezcool/mwalimu/services/logger"
	"github.com/trezcool/mwalimu/storage/database"
	inmemdb "github.com/trezcool/mwalimu/storage/database/inmem"
	sqlxrepos "github.com/trezcool/mwalimu/storage/database/sqlx"
)

type repositories struct {
	teacher  teacher.Repository
	student  gradebook.Repository
	lesson   lessonplan.Repository
	resource resource.Repository
	training training.Repository
	close    func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(log.New(os.Stdout, "MAIL : ", log.LstdFlags), logger, conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	teacherSvc := teacher.NewService(repos.teacher)
	resetter := teacher.NewPasswordResetter(
		teacherSvc, teacher.NewResetTokens(conf.SecretKey, conf.PasswordResetTimeoutDelta), mailSvc, logger,
	)
	generator := lessonplan.NewGenerator(lessonplan.DefaultCurriculum())
	lessonSvc := lessonplan.NewService(repos.lesson, generator)
	gradebookSvc := gradebook.NewService(repos.student, teacher.NewAtRiskMailer(repos.teacher, mailSvc, logger), logger)
	trainingSvc := training.NewService(repos.training)
	dashboardSvc := dashboard.NewService(lessonSvc, gradebookSvc, trainingSvc)

	offlineLib, err := offline.NewLibrary(generator)
	if err != nil {
		logger.Fatal(fmt.Sprintf("building offline library: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.RegisterValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger, conf.TestMode)

	if err = loadCommonPasswords(); err != nil {
		logger.Error(fmt.Sprintf("loading common passwords: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			Validate:     validate,
			Translator:   translator,
			TeacherSvc:   teacherSvc,
			Resetter:     resetter,
			LessonSvc:    lessonSvc,
			GradebookSvc: gradebookSvc,
			ResourceSvc:  resource.NewService(repos.resource),
			TrainingSvc:  trainingSvc,
			DashboardSvc: dashboardSvc,
			OfflineLib:   offlineLib,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories returns the in-memory repositories when conf.Database.InMemory is set,
// the Postgres ones otherwise. The Postgres database is created & migrated if needed.
func setUpRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.InMemory {
		db := inmemdb.NewDB()
		return &repositories{
			teacher:  inmemdb.NewTeacherRepository(db),
			student:  inmemdb.NewStudentRepository(db),
			lesson:   inmemdb.NewLessonRepository(db),
			resource: inmemdb.NewResourceRepository(db),
			training: inmemdb.NewTrainingRepository(db),
			close:    func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &repositories{
		teacher:  sqlxrepos.NewTeacherRepository(db),
		student:  sqlxrepos.NewStudentRepository(db),
		lesson:   sqlxrepos.NewLessonRepository(db),
		resource: sqlxrepos.NewResourceRepository(db),
		training: sqlxrepos.NewTrainingRepository(db),
		close:    db.Close,
	}, nil
}

func loadCommonPasswords() error {
	f, err := appfs.FS.Open(appfs.CommonPasswords)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return teacher.LoadCommonPasswords(f)
}
