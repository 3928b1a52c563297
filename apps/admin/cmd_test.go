package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/testutil"
)

func setup(t *testing.T) (*commandLine, *testutil.App) {
	app := testutil.NewApp(t)

	// the real DB is never touched: gooseRunFunc is mocked in the migrate tests
	return &commandLine{
		db:     &sql.DB{},
		usrSvc: app.Users,
		logger: core.NewNopLogger(),
	}, app
}

func mockPasswords(t *testing.T, pwds ...string) {
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })

	readPasswordFunc = func(int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwds       []string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "grades", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("in-memory engine", func(t *testing.T) {
		memCli := &commandLine{usrSvc: cli.usrSvc, logger: cli.logger}
		assert.Equal(t, errNoDB, memCli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli, app := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "mwamba"}, wantErr: errHelp},
		{name: "passwords differ", args: []string{"adduser", "-username", "mwamba"}, pwds: []string{"s3cr3t!!", "other!!1"}, wantErr: errPwdMatch},
		{name: "add student", args: []string{"adduser", "-username", "Mwamba"}, pwds: []string{"s3cr3t!!", "s3cr3t!!"}},
		{name: "add teacher", args: []string{"adduser", "-username", "kanku", "-role", "teacher"}, pwds: []string{"s3cr3t!!", "s3cr3t!!"}},
		{name: "username taken", args: []string{"adduser", "-username", "mwamba"}, pwds: []string{"s3cr3t!!", "s3cr3t!!"}, wantErr: user.ErrUsernameExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPasswords(t, tt.pwds...)
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("invalid role", func(t *testing.T) {
		mockPasswords(t, "s3cr3t!!", "s3cr3t!!")
		err := cli.run([]string{"admin", "adduser", "-username", "ilunga", "-role", "admin"})
		assert.True(t, core.IsValidationError(err), "want a validation error, got %v", err)
	})

	student, err := app.Users.GetByUsername(ctx, "mwamba")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, student.Role)

	teacher, err := app.Users.GetByUsername(ctx, "kanku")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, teacher.Role)
	assert.NoError(t, teacher.CheckPassword("s3cr3t!!"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, app := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, app.UserRepo, "awe", "mdr", user.RoleStudent)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwds: []string{"lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, pwds: []string{"lmao"}},
		{name: "reset with mixed case username", args: []string{"resetpassword", "-username", " AWE "}, pwds: []string{"lmfao"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPasswords(t, tt.pwds...)
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	refreshed, err := app.Users.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("lmfao"))
	assert.Error(t, refreshed.CheckPassword("mdr"))
}
