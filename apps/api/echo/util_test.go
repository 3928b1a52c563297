package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/econspark/apps/api/echo"
	"github.com/trezcool/econspark/core"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/testutil"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errDenied       = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) (*testutil.App, *echoapi.Server) {
	app := testutil.NewApp(t)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        app.Conf,
		Logger:      core.NewNopLogger(),
		UserSvc:     app.Users,
		ClassSvc:    app.Classes,
		ContentSvc:  app.Content,
		ActivitySvc: app.Activity,
	})
	return app, server
}

func ctx() context.Context { return context.Background() }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (tt httpTest) run(t *testing.T, server *echoapi.Server) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	server.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User, origIat ...int64) string {
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, conf, origIat...), conf)
	require.NoError(t, err)
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	require.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData checks the status code, and the body when tt.wantData is set.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equalf(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if assert.NoError(t, err, "jsonBytesEqual() failed to compare") {
		assert.Truef(t, ok, "data = %s; wantData %s", rec.Body.String(), string(tt.wantData))
	}
}
