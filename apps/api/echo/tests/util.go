package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/dashboard"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/offline"
	"github.com/trezcool/mwalimu/core/resource"
	"github.com/trezcool/mwalimu/core/teacher"
	"github.com/trezcool/mwalimu/core/training"
	appfs "github.com/trezcool/mwalimu/fs"
	"github.com/trezcool/mwalimu/services/email"
	"github.com/trezcool/mwalimu/storage/database/inmem"
	"github.com/trezcool/mwalimu/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	teacherRepo teacher.Repository
	studentRepo gradebook.Repository
	lessonRepo  lessonplan.Repository
	mailSvc     *emailsvc.ConsoleService
	logger      *testutil.Logger
}

func setup(t *testing.T) *testApp {
	conf := &core.Config{
		AppName:         "Mwalimu",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:3000",

		PasswordResetTimeoutDelta: 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
	}
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger, true)

	// set up DB & repos
	db := inmemdb.NewDB()
	teacherRepo := inmemdb.NewTeacherRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	lessonRepo := inmemdb.NewLessonRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(logger, conf)
	teacherSvc := teacher.NewService(teacherRepo)
	resetter := teacher.NewPasswordResetter(
		teacherSvc, teacher.NewResetTokens(conf.SecretKey, conf.PasswordResetTimeoutDelta), mailSvc, logger,
	)
	gen := lessonplan.NewGenerator(lessonplan.DefaultCurriculum())
	lessonSvc := lessonplan.NewService(lessonRepo, gen)
	gradebookSvc := gradebook.NewService(studentRepo, teacher.NewAtRiskMailer(teacherRepo, mailSvc, logger), logger)
	trainingSvc := training.NewService(inmemdb.NewTrainingRepository(db))
	lib, err := offline.NewLibrary(gen)
	if err != nil {
		t.Fatalf("offline.NewLibrary() failed: %v", err)
	}

	// set up server
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		TeacherSvc:     teacherSvc,
		Resetter:       resetter,
		LessonSvc:      lessonSvc,
		GradebookSvc:   gradebookSvc,
		ResourceSvc:    resource.NewService(inmemdb.NewResourceRepository(db)),
		TrainingSvc:    trainingSvc,
		DashboardSvc:   dashboard.NewService(lessonSvc, gradebookSvc, trainingSvc),
		OfflineLib:     lib,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{
		Server:      srv,
		teacherRepo: teacherRepo,
		studentRepo: studentRepo,
		lessonRepo:  lessonRepo,
		mailSvc:     mailSvc,
		logger:      logger,
	}
}

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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			wantCode := tt.wantCode
			if wantCode == 0 {
				wantCode = http.StatusOK
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			tt.wantCode = wantCode
			checkCodeAndData(t, tt, rec)
		})
	}
}

func getToken(t *testing.T, app *testApp, tchr teacher.Teacher) string {
	token, err := app.GenerateToken(tchr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
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

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// formatID formats an ID decoded from JSON.
func formatID(id interface{}) string {
	f, _ := id.(float64)
	return strconv.Itoa(int(f))
}
