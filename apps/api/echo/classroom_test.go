package echoapi_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/econspark/core/classroom"
	"github.com/trezcool/econspark/core/user"
	"github.com/trezcool/econspark/testutil"
)

func Test_classroomApi_create(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "student", "", user.RoleStudent)
	testutil.CreateClass(t, app.Classes, teacher, "Micro 101")

	body := func(name string) []byte { return marshalObj(t, classroom.NewClass{Name: name}) }

	tests := []httpTest{
		{name: "auth required", body: body("Macro"), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "students cannot create", token: getToken(t, app.Conf, student), body: body("Macro"), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{
			name: "blank name", token: getToken(t, app.Conf, teacher), body: body("   "), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "duplicate name", token: getToken(t, app.Conf, teacher), body: body("Micro 101"), wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: classroom.ErrClassNameExists.Error()}),
		},
		{name: "success", token: getToken(t, app.Conf, teacher), body: body("Macro"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/classes"
			rec := tt.run(t, server)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var cls classroom.Class
				decode(t, rec, &cls)
				assert.Equal(t, "Macro", cls.Name)
				assert.Equal(t, teacher.ID, cls.TeacherID)
				assert.Len(t, cls.JoinCode, app.Conf.Classroom.JoinCodeLength)
			}
		})
	}
}

func Test_classroomApi_join(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "student", "", user.RoleStudent)
	cls := testutil.CreateClass(t, app.Classes, teacher, "Micro 101")

	body := func(code string) []byte { return marshalObj(t, classroom.JoinRequest{Code: code}) }
	studentToken := getToken(t, app.Conf, student)

	tests := []httpTest{
		{name: "missing code", token: studentToken, body: body(""), wantCode: http.StatusBadRequest},
		{
			name: "unknown code", token: studentToken, body: body("ZZZZZZZ"), wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: classroom.ErrNotFound.Error()}),
		},
		{
			name: "own class", token: getToken(t, app.Conf, teacher), body: body(cls.JoinCode), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: classroom.ErrSelfEnrollment.Error()}),
		},
		{name: "success (code normalized)", token: studentToken, body: body(" " + strings.ToLower(cls.JoinCode) + " "), wantCode: http.StatusOK, wantData: marshalObj(t, cls)},
		{
			name: "already enrolled", token: studentToken, body: body(cls.JoinCode), wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: classroom.ErrAlreadyEnrolled.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/classes/join"
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}
}

func Test_classroomApi_retrieve(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "student", "", user.RoleStudent)
	outsider := testutil.CreateUser(t, app.UserRepo, "outsider", "", user.RoleStudent)
	cls := testutil.CreateClass(t, app.Classes, teacher, "Micro 101")
	testutil.Enroll(t, app.Classes, student, cls)

	path := fmt.Sprintf("/v1/classes/%d", cls.ID)

	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized},
		{name: "teacher", path: path, token: getToken(t, app.Conf, teacher), wantCode: http.StatusOK, wantData: marshalObj(t, cls)},
		{name: "member", path: path, token: getToken(t, app.Conf, student), wantCode: http.StatusOK, wantData: marshalObj(t, cls)},
		{name: "outsider", path: path, token: getToken(t, app.Conf, outsider), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{name: "unknown class", path: "/v1/classes/999", token: getToken(t, app.Conf, teacher), wantCode: http.StatusNotFound},
		{name: "malformed id", path: "/v1/classes/lol", token: getToken(t, app.Conf, teacher), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}
}

func Test_classroomApi_query(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	other := testutil.CreateUser(t, app.UserRepo, "other", "", user.RoleTeacher)
	taught := testutil.CreateClass(t, app.Classes, teacher, "Micro 101")
	enrolled := testutil.CreateClass(t, app.Classes, other, "Macro 101")
	testutil.Enroll(t, app.Classes, teacher, enrolled)

	tests := []httpTest{
		{
			name: "taught & enrolled", token: getToken(t, app.Conf, teacher), wantCode: http.StatusOK,
			wantData: marshalObj(t, classroom.UserClasses{Taught: []classroom.Class{taught}, Enrolled: []classroom.Class{enrolled}}),
		},
		{
			name: "no enrollment", token: getToken(t, app.Conf, other), wantCode: http.StatusOK,
			wantData: marshalObj(t, classroom.UserClasses{Taught: []classroom.Class{enrolled}, Enrolled: []classroom.Class{}}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.path = "/v1/classes"
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}
}

func Test_classroomApi_queryMembers(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "student", "", user.RoleStudent)
	outsider := testutil.CreateUser(t, app.UserRepo, "outsider", "", user.RoleStudent)
	cls := testutil.CreateClass(t, app.Classes, teacher, "Micro 101")
	testutil.Enroll(t, app.Classes, student, cls)

	path := fmt.Sprintf("/v1/classes/%d/members", cls.ID)

	t.Run("outsider", func(t *testing.T) {
		tt := httpTest{path: path, token: getToken(t, app.Conf, outsider), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)}
		checkCodeAndData(t, tt, tt.run(t, server))
	})

	t.Run("teacher", func(t *testing.T) {
		rec := httpTest{path: path, token: getToken(t, app.Conf, teacher)}.run(t, server)
		require.Equal(t, http.StatusOK, rec.Code)

		var members []classroom.Member
		decode(t, rec, &members)
		require.Len(t, members, 1)
		assert.Equal(t, student.ID, members[0].UserID)
		assert.Equal(t, "student", members[0].Username)
	})
}

func Test_classroomApi_destroy(t *testing.T) {
	app, server := setup(t)
	teacher := testutil.CreateUser(t, app.UserRepo, "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, app.UserRepo, "student", "", user.RoleStudent)
	cls := testutil.CreateClass(t, app.Classes, teacher, "Micro 101")
	testutil.Enroll(t, app.Classes, student, cls)

	path := fmt.Sprintf("/v1/classes/%d", cls.ID)

	tests := []httpTest{
		{name: "member cannot delete", token: getToken(t, app.Conf, student), wantCode: http.StatusForbidden, wantData: marshalObj(t, errDenied)},
		{name: "teacher deletes", token: getToken(t, app.Conf, teacher), wantCode: http.StatusNoContent},
		{name: "already deleted", token: getToken(t, app.Conf, teacher), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodDelete
			tt.path = path
			checkCodeAndData(t, tt, tt.run(t, server))
		})
	}

	assert.Zero(t, app.DB.Counts()["class_membership"])
}
