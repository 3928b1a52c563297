package dig_container

import (
	"context"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/econspark/apps/api/echo"
	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
	"github.com/trezcool/econspark/core/user"
	logsvc "github.com/trezcool/econspark/services/logger"
	"github.com/trezcool/econspark/storage/database"
	"github.com/trezcool/econspark/storage/database/inmem"
	sqlxrepos "github.com/trezcool/econspark/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are the storage backends chosen by the database engine setting.
type Repositories struct {
	dig.Out
	Users    user.Repository
	Classes  classroom.Repository
	Content  content.Repository
	Activity activity.Repository
	DBCloser io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewSlogLogger(conf).With("app", "api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewSlogLogger(conf).With("app", "db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	dbLogger := loggerParam.Logger

	if conf.Database.IsMemory() {
		dbLogger.Info("using the in-memory store; data will not survive a restart")
		db := inmemdb.Open()
		return Repositories{
			Users:    inmemdb.NewUserRepository(db),
			Classes:  inmemdb.NewClassroomRepository(db),
			Content:  inmemdb.NewContentRepository(db),
			Activity: inmemdb.NewActivityRepository(db),
			DBCloser: closerFunc(func() error { return nil }),
		}
	}

	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		dbLogger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		dbLogger.Fatal("setting up database", err)
	}
	if err = database.Ping(ctx, db); err != nil {
		dbLogger.Fatal("setting up database", err)
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		dbLogger.Fatal("migrating database", err)
	}
	return Repositories{
		Users:    sqlxrepos.NewUserRepository(db),
		Classes:  sqlxrepos.NewClassroomRepository(db),
		Content:  sqlxrepos.NewContentRepository(db),
		Activity: sqlxrepos.NewActivityRepository(db),
		DBCloser: db,
	}
}

func newValidator(translator ut.Translator, conf *core.Config) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator, conf.User)
	return validate
}

func newClassroomService(
	repo classroom.Repository,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
	conf *core.Config,
) *classroom.Service {
	return classroom.NewService(repo, validate, translator, logger, conf.Classroom)
}

func newContentService(
	repo content.Repository,
	classes *classroom.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *content.Service {
	return content.NewService(repo, classes, validate, translator, logger)
}

func newActivityService(
	repo activity.Repository,
	classes *classroom.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *activity.Service {
	return activity.NewService(repo, classes, validate, translator, logger)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	usrSvc *user.Service,
	classSvc *classroom.Service,
	contentSvc *content.Service,
	activitySvc *activity.Service,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		ClassSvc:    classSvc,
		ContentSvc:  contentSvc,
		ActivitySvc: activitySvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(newClassroomService))
	must(c.Provide(newContentService))
	must(c.Provide(newActivityService))
	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
