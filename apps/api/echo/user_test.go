package echoapi_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/econspark/apps/api/echo"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/testutil"
)

func Test_userApi_register(t *testing.T) {
	app, server := setup(t)
	testutil.CreateUser(t, app.UserRepo, "taken", "", user.RoleStudent)

	body := func(uname, pwd, role string) []byte {
		return marshalObj(t, map[string]string{"username": uname, "password": pwd, "password_confirm": pwd, "role": role})
	}

	tests := []httpTest{
		{name: "malformed body", body: []byte(`{"username":`), wantCode: http.StatusBadRequest},
		{
			name: "invalid data", body: body("", "s3cr3t!!", "admin"), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "role": "role must be one of [teacher student]"}),
		},
		{
			name: "username taken", body: body("Taken", "s3cr3t!!", "student"), wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: user.ErrUsernameExists.Error()}),
		},
		{name: "success", body: body(" Kabila ", "s3cr3t!!", "Teacher"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/register"
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}

	t.Run("created user & token", func(t *testing.T) {
		usr, err := app.Users.GetByUsername(ctx(), "kabila")
		require.NoError(t, err)
		assert.Equal(t, user.RoleTeacher, usr.Role)

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/login", "", marshalObj(t, user.Credentials{Username: "kabila", Password: "s3cr3t!!"}))
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_login(t *testing.T) {
	app, server := setup(t)
	usr := testutil.CreateUser(t, app.UserRepo, "lumumba", "indep60", user.RoleTeacher)

	invalidCreds := marshalObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()})
	creds := func(uname, pwd string) []byte {
		return marshalObj(t, user.Credentials{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: creds("", ""), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{name: "unknown user", body: creds("mobutu", "indep60"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "wrong password", body: creds("lumumba", "indep61"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "success", body: creds("LUMUMBA", "indep60"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/login"
			rec := tt.run(t, server)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)

				// the token authenticates the user
				req, meRec := newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
				server.ServeHTTP(meRec, req)
				require.Equal(t, http.StatusOK, meRec.Code)
				var me user.User
				decode(t, meRec, &me)
				assert.Equal(t, usr.ID, me.ID)
				assert.True(t, me.LastLogin.Valid)
			}
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app, server := setup(t)
	usr := testutil.CreateUser(t, app.UserRepo, "tshisekedi", "", user.RoleStudent)
	ghost := user.User{ID: 999, Username: "ghost", Role: user.RoleStudent}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "garbage token", token: "lol.lmao.mdr", wantCode: http.StatusUnauthorized},
		{
			name: "unknown user", token: getToken(t, app.Conf, ghost), wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "success", token: getToken(t, app.Conf, usr), wantCode: http.StatusOK, wantData: marshalObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.path = "/v1/users/me"
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}

	t.Run("password hash never exposed", func(t *testing.T) {
		rec := httpTest{path: "/v1/users/me", token: getToken(t, app.Conf, usr)}.run(t, server)
		assert.False(t, strings.Contains(rec.Body.String(), "password"))
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app, server := setup(t)
	usr := testutil.CreateUser(t, app.UserRepo, "tshombe", "", user.RoleTeacher)

	stale := time.Now().Add(-app.Conf.Server.JWTRefreshExpirationDelta - time.Minute).Unix()

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "refresh expired", token: getToken(t, app.Conf, usr, stale), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "success", token: getToken(t, app.Conf, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/token-refresh"
			rec := tt.run(t, server)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_queryRoles(t *testing.T) {
	_, server := setup(t)

	tt := httpTest{path: "/v1/users/roles", wantCode: http.StatusOK, wantData: marshalObj(t, user.Roles)}
	checkCodeAndData(t, tt, tt.run(t, server))
}
