package user_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/testutil"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	vErr, ok := err.(*core.ValidationError)
	require.Truef(t, ok, "want *core.ValidationError, got %T (%v)", err, err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestService_Register(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	newUser := func(uname, pwd string, role user.Role) user.NewUser {
		return user.NewUser{Username: uname, Password: pwd, PasswordConfirm: pwd, Role: role}
	}

	tests := []struct {
		name      string
		data      user.NewUser
		wantField string
		wantText  string
	}{
		{name: "missing username", data: newUser("", "s3cr3t!!", user.RoleStudent), wantField: "username", wantText: "this field is required"},
		{name: "username too short", data: newUser("ab", "s3cr3t!!", user.RoleStudent), wantField: "username", wantText: "username must contain at least 3 characters"},
		{name: "username not alphanum", data: newUser("a-b c", "s3cr3t!!", user.RoleStudent), wantField: "username"},
		{name: "password too short", data: newUser("alice", "abc", user.RoleStudent), wantField: "password", wantText: "password must contain at least 6 characters"},
		{name: "password too long", data: newUser("alice", strings.Repeat("x", 73), user.RoleStudent), wantField: "password", wantText: "password must not exceed 72 bytes"},
		{name: "password too long in bytes", data: newUser("alice", strings.Repeat("é", 40), user.RoleStudent), wantField: "password", wantText: "password must not exceed 72 bytes"},
		{name: "password with space", data: newUser("alice", "abc def ghi", user.RoleStudent), wantField: "password", wantText: "password must not contain whitespace"},
		{name: "password like username", data: newUser("alicebob", "alicebob1", user.RoleStudent), wantField: "password", wantText: "password is too similar to the username"},
		{
			name:      "password mismatch",
			data:      user.NewUser{Username: "alice", Password: "s3cr3t!!", PasswordConfirm: "other!!1", Role: user.RoleStudent},
			wantField: "password_confirm",
		},
		{name: "unknown role", data: newUser("alice", "s3cr3t!!", "admin"), wantField: "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Users.Register(ctx, tt.data)
			flds := fieldErrors(t, err)
			if assert.Contains(t, flds, tt.wantField) && tt.wantText != "" {
				assert.Equal(t, tt.wantText, flds[tt.wantField])
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		user.NowFunc = func() time.Time { return now }
		defer func() { user.NowFunc = time.Now }()

		usr, err := app.Users.Register(ctx, newUser("  Alice ", "s3cr3t!!", "Teacher"))
		require.NoError(t, err)
		assert.NotZero(t, usr.ID)
		assert.Equal(t, "alice", usr.Username)
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.Equal(t, now, usr.CreatedAt)
		assert.NotEqual(t, []byte("s3cr3t!!"), usr.PasswordHash)
		assert.NoError(t, usr.CheckPassword("s3cr3t!!"))
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := app.Users.Register(ctx, newUser("ALICE", "an0ther!", user.RoleStudent))
		assert.Equal(t, user.ErrUsernameExists, err)
	})

	t.Run("longest password", func(t *testing.T) {
		pwd := strings.Repeat("x", 72)
		usr, err := app.Users.Register(ctx, newUser("maxime", pwd, user.RoleStudent))
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword(pwd))
	})
}

func TestService_Register_saltedHashes(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	const pwd = "s4me-p4ss"
	usr1, err := app.Users.Register(ctx, user.NewUser{Username: "kinshasa", Password: pwd, PasswordConfirm: pwd, Role: user.RoleStudent})
	require.NoError(t, err)
	usr2, err := app.Users.Register(ctx, user.NewUser{Username: "lubumbashi", Password: pwd, PasswordConfirm: pwd, Role: user.RoleTeacher})
	require.NoError(t, err)

	for _, usr := range []user.User{usr1, usr2} {
		stored, err := app.Users.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.False(t, bytes.Equal([]byte(pwd), stored.PasswordHash), "plaintext stored")
		assert.NoError(t, stored.CheckPassword(pwd))
	}
	assert.False(t, bytes.Equal(usr1.PasswordHash, usr2.PasswordHash), "equal passwords must hash differently")
}

func TestService_Authenticate(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, app.UserRepo, "bob", "p4ssw0rd", user.RoleStudent)
	require.False(t, usr.LastLogin.Valid)

	t.Run("missing fields", func(t *testing.T) {
		_, err := app.Users.Authenticate(ctx, user.Credentials{})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "username")
		assert.Contains(t, flds, "password")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := app.Users.Authenticate(ctx, user.Credentials{Username: "nobody", Password: "p4ssw0rd"})
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := app.Users.Authenticate(ctx, user.Credentials{Username: "bob", Password: "nope"})
		assert.Equal(t, user.ErrInvalidCredentials, err)
	})

	t.Run("success", func(t *testing.T) {
		got, err := app.Users.Authenticate(ctx, user.Credentials{Username: " BOB ", Password: "p4ssw0rd"})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.True(t, got.LastLogin.Valid)

		stored, err := app.Users.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.True(t, stored.LastLogin.Valid)
	})
}

func TestService_ResetPassword(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, app.UserRepo, "carol", "old-pass", user.RoleTeacher)

	assert.Equal(t, user.ErrNotFound, app.Users.ResetPassword(ctx, "nobody", "whatever"))
	assert.True(t, core.IsValidationError(app.Users.ResetPassword(ctx, "carol", strings.Repeat("x", 73))))

	require.NoError(t, app.Users.ResetPassword(ctx, "Carol", "new-pass"))
	_, err := app.Users.Authenticate(ctx, user.Credentials{Username: usr.Username, Password: "old-pass"})
	assert.Equal(t, user.ErrInvalidCredentials, err)
	_, err = app.Users.Authenticate(ctx, user.Credentials{Username: usr.Username, Password: "new-pass"})
	assert.NoError(t, err)
}

func TestService_CurrentRole(t *testing.T) {
	app := testutil.NewApp(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "dave", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "erin", "", user.RoleStudent)

	assert.Equal(t, user.RoleTeacher, app.Users.CurrentRole(teacher))
	assert.Equal(t, user.RoleStudent, app.Users.CurrentRole(student))
	assert.True(t, teacher.IsTeacher())
	assert.True(t, student.IsStudent())
}
