package tests

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/tests"
)

func Test_lessonApi_generate(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateTeacher(t, app.teacherRepo, "Jane Wanjiru", "jane@school.ke", "", true)
	token := getToken(t, app, jane)

	t.Run("auth required", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/lessons/generate", "", []byte(`{}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid request", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/lessons/generate", token, []byte(`{"grade": 9}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		unmarshal(t, rec, &errs)
		assert.Equal(t, map[string]string{
			"subject": "subject is required",
			"topic":   "topic is required",
			"grade":   "grade must be between 1 and 6",
		}, errs)
	})

	tests := []struct {
		name      string
		body      string
		wantPhase map[string]float64
	}{
		{
			name:      "default duration",
			body:      `{"subject": "Mathematics", "grade": 4, "topic": "Fractions"}`,
			wantPhase: map[string]float64{"introduction": 8, "development": 24, "conclusion": 8},
		},
		{
			name:      "long lesson",
			body:      `{"subject": "science", "grade": 5, "topic": "Earth and Space", "duration": 60}`,
			wantPhase: map[string]float64{"introduction": 9, "development": 39, "practice": 9, "conclusion": 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodPost, "/api/lessons/generate", token, []byte(tt.body))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var plan map[string]interface{}
			unmarshal(t, rec, &plan)
			assert.Equal(t, tt.wantPhase, toFloatMap(plan["lessonStructure"]))
			assert.Equal(t, "CBC (Competency-Based Curriculum)", plan["metadata"].(map[string]interface{})["curriculum"])
		})
	}
}

func toFloatMap(v interface{}) map[string]float64 {
	m, _ := v.(map[string]interface{})
	res := make(map[string]float64, len(m))
	for k, val := range m {
		res[k], _ = val.(float64)
	}
	return res
}

func Test_lessonApi_curriculum(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateTeacher(t, app.teacherRepo, "Jane Wanjiru", "jane@school.ke", "", true)

	rec := app.do(http.MethodGet, "/api/curriculum", getToken(t, app, jane))
	require.Equal(t, http.StatusOK, rec.Code)

	var curriculum map[string]map[string][]string
	unmarshal(t, rec, &curriculum)
	assert.Len(t, curriculum, 3)
	assert.Equal(t, []string{"Large Numbers", "Fractions", "Decimals", "Area and Perimeter"}, curriculum["mathematics"]["4"])
}

func Test_lessonApi_crud(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateTeacher(t, app.teacherRepo, "Jane Wanjiru", "jane@school.ke", "", true)
	otieno := testutil.CreateTeacher(t, app.teacherRepo, "Otieno", "otieno@school.ke", "", true)
	janeToken := getToken(t, app, jane)

	create := func(t *testing.T, body string) map[string]interface{} {
		rec := app.do(http.MethodPost, "/api/lessons", janeToken, []byte(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var lesson map[string]interface{}
		unmarshal(t, rec, &lesson)
		return lesson
	}

	t.Run("validation", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/lessons", janeToken, []byte(`{"title": "  ", "subject": "english", "grade": 7}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	fractions := create(t, `{"title": "Fractions", "subject": " Mathematics", "grade": 4, "objectives": ["share", " "]}`)
	assert.Equal(t, "mathematics", fractions["subject"])
	assert.EqualValues(t, 40, fractions["duration"])
	assert.Equal(t, []interface{}{"share"}, fractions["objectives"])
	assert.Equal(t, false, fractions["aiGenerated"])

	weather := create(t, `{"title": "Weather", "subject": "science", "grade": 2, "duration": 30, "plan": {"homework": "observe"}}`)
	assert.Equal(t, true, weather["aiGenerated"])

	t.Run("replayed submission", func(t *testing.T) {
		sub := uuid.New().String()
		body := `{"title": "Phonics", "subject": "english", "grade": 2, "submissionId": "` + sub + `"}`
		first := create(t, body)
		second := create(t, body)
		assert.Equal(t, first["id"], second["id"])
	})

	t.Run("list", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/lessons?ordering=title", janeToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var lessons []map[string]interface{}
		unmarshal(t, rec, &lessons)
		require.Len(t, lessons, 3)
		assert.Equal(t, "Fractions", lessons[0]["title"])
		assert.Equal(t, "Phonics", lessons[1]["title"])
		assert.Equal(t, "Weather", lessons[2]["title"])

		rec = app.do(http.MethodGet, "/api/lessons", getToken(t, app, otieno))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("retrieve", func(t *testing.T) {
		path := "/api/lessons/" + formatID(weather["id"])
		tests := []httpTest{
			{name: "found", path: path, token: janeToken},
			{name: "not found", path: "/api/lessons/999", token: janeToken, wantCode: http.StatusNotFound},
			{name: "invalid id", path: "/api/lessons/abc", token: janeToken, wantCode: http.StatusNotFound},
			{
				name: "another teacher's", path: path, token: getToken(t, app, otieno),
				wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "lesson not found"}),
			},
		}
		app.run(t, tests)
	})
}
