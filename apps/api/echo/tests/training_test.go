package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/tests"
)

func Test_trainingApi(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateTeacher(t, app.teacherRepo, "Jane Wanjiru", "jane@school.ke", "", true)
	token := getToken(t, app, jane)

	t.Run("courses", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/training/courses", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var courses []map[string]interface{}
		unmarshal(t, rec, &courses)
		require.Len(t, courses, 3)
		assert.Equal(t, "beginner", courses[0]["level"])
		assert.EqualValues(t, 0, courses[0]["progress"])
		assert.Equal(t, false, courses[0]["completed"])
	})

	tests := []httpTest{
		{name: "progress required", method: http.MethodPut, path: "/api/training/courses/1/progress", token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "progress over 100", method: http.MethodPut, path: "/api/training/courses/1/progress", token: token, body: []byte(`{"progress": 101}`), wantCode: http.StatusBadRequest},
		{
			name: "unknown course", method: http.MethodPut, path: "/api/training/courses/9/progress", token: token, body: []byte(`{"progress": 10}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
	}
	app.run(t, tests)

	t.Run("update progress", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/api/training/courses/3/progress", token, []byte(`{"progress": 50}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var cp map[string]interface{}
		unmarshal(t, rec, &cp)
		assert.EqualValues(t, 50, cp["progress"])
		assert.Equal(t, false, cp["completed"])
		assert.Nil(t, cp["completedAt"])

		rec = app.do(http.MethodPut, "/api/training/courses/3/progress", token, []byte(`{"progress": 100}`))
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &cp)
		assert.Equal(t, true, cp["completed"])
		assert.NotNil(t, cp["completedAt"])
	})

	t.Run("badges", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/training/badges", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var badges []map[string]interface{}
		unmarshal(t, rec, &badges)
		require.Len(t, badges, 4)

		byName := make(map[string]map[string]interface{}, len(badges))
		for _, b := range badges {
			byName[b["name"].(string)] = b
		}
		assert.Equal(t, true, byName["CBC Expert"]["earned"])
		assert.EqualValues(t, 40, byName["Innovation Leader"]["progress"]) // 4 modules out of 10
		assert.EqualValues(t, 0, byName["Lesson Master"]["progress"])
	})
}
