// Package testutil wires the services over a fresh store and creates fixtures for tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/activity"
	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/content"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/storage/database"
	"github.com/trezcool/econspark/storage/database/inmem"
)

// App holds every service wired over one in-memory store.
type App struct {
	Conf *core.Config
	DB   *inmemdb.DB

	UserRepo      user.Repository
	ClassroomRepo classroom.Repository
	ContentRepo   content.Repository
	ActivityRepo  activity.Repository

	Users    *user.Service
	Classes  *classroom.Service
	Content  *content.Service
	Activity *activity.Service
}

func NewApp(t *testing.T) *App {
	t.Helper()

	conf := core.NewTestConfig()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator, conf.User)
	logger := core.NewNopLogger()

	db := inmemdb.Open()
	app := &App{
		Conf:          conf,
		DB:            db,
		UserRepo:      inmemdb.NewUserRepository(db),
		ClassroomRepo: inmemdb.NewClassroomRepository(db),
		ContentRepo:   inmemdb.NewContentRepository(db),
		ActivityRepo:  inmemdb.NewActivityRepository(db),
	}
	app.Users = user.NewService(app.UserRepo, validate, translator, logger)
	app.Classes = classroom.NewService(app.ClassroomRepo, validate, translator, logger, conf.Classroom)
	app.Content = content.NewService(app.ContentRepo, app.Classes, validate, translator, logger)
	app.Activity = activity.NewService(app.ActivityRepo, app.Classes, validate, translator, logger)
	return app
}

// CreateUser stores a user straight through repo, bypassing the sign-up policy.
func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd == "" {
		pwd = uname + "-pass"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr.PasswordHash = hash

	usr, err = repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, svc *classroom.Service, teacher user.User, name string) classroom.Class {
	t.Helper()

	cls, err := svc.CreateClass(context.Background(), teacher, classroom.NewClass{Name: name})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func Enroll(t *testing.T, svc *classroom.Service, usr user.User, cls classroom.Class) {
	t.Helper()

	if _, err := svc.JoinByCode(context.Background(), usr, classroom.JoinRequest{Code: cls.JoinCode}); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

func CreateQuestionSet(t *testing.T, svc *content.Service, owner user.User, name string) content.QuestionSet {
	t.Helper()

	qs, err := svc.CreateQuestionSet(context.Background(), owner, content.NewQuestionSet{Name: name})
	if err != nil {
		t.Fatalf("CreateQuestionSet() failed: %v", err)
	}
	return qs
}

// PrepareDB connects to the PostgreSQL database named by TEST_DATABASE_URL, migrates it up
// and empties it. The test is skipped when the variable is unset.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB, "up"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()

	const q = `TRUNCATE "user", class, class_membership, question_set, question, question_set_class,
		chat_message, assignment RESTART IDENTITY CASCADE`
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}
