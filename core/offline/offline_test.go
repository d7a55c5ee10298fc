package offline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/tests"
)

func TestLibrary(t *testing.T) {
	lib, err := NewLibrary(lessonplan.NewGenerator(lessonplan.DefaultCurriculum()))
	require.NoError(t, err)

	m := lib.Manifest()
	assert.Equal(t, "teachers-assistant-v1", m.CacheName)
	assert.Equal(t, "teachers-assistant-offline-v1", m.OfflineCacheName)
	assert.Equal(t, StaticAssets, m.Assets)
	assert.Equal(t, []DocumentRef{
		{ID: "lesson-math-fractions", Title: "Introduction to Fractions", URL: "/api/offline/documents/lesson-math-fractions"},
		{ID: "resource-math-worksheets", Title: "Mathematics Worksheets Grade 4", URL: "/api/offline/documents/resource-math-worksheets"},
	}, m.Documents)

	doc, err := lib.Document("lesson-math-fractions")
	require.NoError(t, err)
	var plan struct {
		Metadata        map[string]interface{} `json:"metadata"`
		LessonStructure map[string]int         `json:"lessonStructure"`
	}
	require.NoError(t, json.Unmarshal(doc.Content, &plan))
	assert.Equal(t, "Fractions", plan.Metadata["title"])
	assert.Equal(t, map[string]int{"introduction": 8, "development": 24, "conclusion": 8}, plan.LessonStructure)

	_, err = lib.Document("lol")
	assert.True(t, core.IsNotFound(err))
}

func TestNewSubmission(t *testing.T) {
	s, err := NewSubmission(KindGrade, 1, 7, json.RawMessage(`{"title":"Quiz","score":8,"totalMarks":10}`))
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, "/api/students/7/grades", s.Path())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(s.Payload, &body))
	assert.Equal(t, s.ID, body["submissionId"])
	assert.Equal(t, "Quiz", body["title"])

	lesson, err := NewSubmission(KindLesson, 1, 0, json.RawMessage(`{"title":"Fractions"}`))
	require.NoError(t, err)
	assert.Equal(t, "/api/lessons", lesson.Path())
	assert.NotEqual(t, s.ID, lesson.ID)

	tests := []struct {
		name      string
		kind      Kind
		studentID int
		payload   string
	}{
		{name: "unknown kind", kind: "homework", payload: `{}`},
		{name: "grade without student", kind: KindGrade, payload: `{}`},
		{name: "not an object", kind: KindLesson, payload: `[1, 2]`},
		{name: "null", kind: KindLesson, payload: `null`},
		{name: "invalid JSON", kind: KindLesson, payload: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubmission(tt.kind, 1, tt.studentID, json.RawMessage(tt.payload))
			var vErr *core.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, Submission{ID: id}))
	}
	require.NoError(t, q.Enqueue(ctx, Submission{ID: "a"})) // already queued

	pending, err := q.Pending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(pending))

	require.NoError(t, q.MarkAttempt(ctx, "b"))
	require.NoError(t, q.Remove(ctx, "a"))
	require.NoError(t, q.Remove(ctx, "zzz"))
	assert.True(t, core.IsNotFound(q.MarkAttempt(ctx, "zzz")))

	pending, err = q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(pending))
	assert.Equal(t, 1, pending[0].Attempts)
}

func ids(subs []Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

// scriptedDeliverer returns the error scripted for each submission ID.
type scriptedDeliverer struct {
	errs      map[string]error
	delivered []string
}

func (d *scriptedDeliverer) Deliver(_ context.Context, s Submission) error {
	if err := d.errs[s.ID]; err != nil {
		return err
	}
	d.delivered = append(d.delivered, s.ID)
	return nil
}

func TestSyncer_Run(t *testing.T) {
	transient := errors.New("connection refused")
	rejected := &RejectedError{StatusCode: http.StatusBadRequest, Body: `{"error":"invalid"}`}

	tests := []struct {
		name          string
		errs          map[string]error
		wantResult    SyncResult
		wantDelivered []string
		wantPending   []string
	}{
		{
			name:          "all delivered",
			wantResult:    SyncResult{Delivered: 3},
			wantDelivered: []string{"a", "b", "c"},
			wantPending:   []string{},
		},
		{
			name:          "rejected is dropped",
			errs:          map[string]error{"b": rejected},
			wantResult:    SyncResult{Delivered: 2, Rejected: 1},
			wantDelivered: []string{"a", "c"},
			wantPending:   []string{},
		},
		{
			name:          "transient failure keeps the rest",
			errs:          map[string]error{"b": transient},
			wantResult:    SyncResult{Delivered: 1, Kept: 2},
			wantDelivered: []string{"a"},
			wantPending:   []string{"b", "c"},
		},
		{
			name:        "first fails",
			errs:        map[string]error{"a": errors.Wrap(transient, "posting submission")},
			wantResult:  SyncResult{Kept: 3},
			wantPending: []string{"a", "b", "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			q := NewMemoryQueue()
			for _, id := range []string{"a", "b", "c"} {
				require.NoError(t, q.Enqueue(ctx, Submission{ID: id, Kind: KindLesson}))
			}
			d := &scriptedDeliverer{errs: tt.errs}
			logger := new(testutil.Logger)

			res, err := NewSyncer(q, d, logger, 0).Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, res)
			assert.Equal(t, tt.wantDelivered, d.delivered)

			pending, err := q.Pending(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPending, ids(pending))
			if tt.wantResult.Kept > 0 {
				assert.Equal(t, 1, pending[0].Attempts)
			}
		})
	}
}

func TestSyncer_Run_redelivery(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	require.NoError(t, q.Enqueue(ctx, Submission{ID: "a"}))

	d := &scriptedDeliverer{errs: map[string]error{"a": errors.New("timeout")}}
	s := NewSyncer(q, d, new(testutil.Logger), 10)

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Kept: 1}, res)

	delete(d.errs, "a") // connectivity is back
	res, err = s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Delivered: 1}, res)
	assert.Equal(t, []string{"a"}, d.delivered)
}

func TestHTTPDeliverer_Deliver(t *testing.T) {
	var (
		gotPath, gotAuth string
		gotBody          []byte
		status           int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	d := NewHTTPDeliverer(srv.URL+"/", map[int]string{1: "secret", 2: "other-secret"}, time.Second)
	sub := Submission{ID: "x", Kind: KindGrade, TeacherID: 1, StudentID: 3, Payload: json.RawMessage(`{"submissionId":"x"}`)}

	status = http.StatusCreated
	require.NoError(t, d.Deliver(context.Background(), sub))
	assert.Equal(t, "/api/students/3/grades", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.JSONEq(t, `{"submissionId":"x"}`, string(gotBody))

	other := Submission{ID: "y", Kind: KindLesson, TeacherID: 2, Payload: json.RawMessage(`{"submissionId":"y"}`)}
	require.NoError(t, d.Deliver(context.Background(), other))
	assert.Equal(t, "/api/lessons", gotPath)
	assert.Equal(t, "Bearer other-secret", gotAuth)

	gotPath = ""
	err := d.Deliver(context.Background(), Submission{ID: "z", Kind: KindLesson, TeacherID: 3})
	assert.EqualError(t, err, "no API token for teacher 3")
	assert.False(t, IsRejected(err))
	assert.Empty(t, gotPath, "nothing is sent without a token")

	for _, code := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity} {
		status = code
		err = d.Deliver(context.Background(), sub)
		assert.True(t, IsRejected(err), code)
	}
	assert.EqualError(t, err, `submission rejected: 422 {"error":"nope"}`)

	for _, code := range []int{
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusRequestTimeout,
		http.StatusConflict,
		http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
	} {
		status = code
		err = d.Deliver(context.Background(), sub)
		assert.Error(t, err, code)
		assert.False(t, IsRejected(err), code)
	}

	srv.Close()
	err = d.Deliver(context.Background(), sub)
	assert.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestSyncer_Run_unauthorized(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token is expired"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	q := NewMemoryQueue()
	for i := 1; i <= 3; i++ {
		s, err := NewSubmission(KindGrade, 1, i, json.RawMessage(`{"title": "Quiz", "score": 1, "totalMarks": 2}`))
		require.NoError(t, err)
		require.NoError(t, q.Enqueue(ctx, s))
	}

	s := NewSyncer(q, NewHTTPDeliverer(srv.URL, map[int]string{1: "expired"}, time.Second), new(testutil.Logger), 10)
	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Kept: 3}, res)
	assert.Equal(t, 1, calls)

	pending, err := q.Pending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, 0, pending[1].Attempts)
}
