package lessonplan_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/lessonplan"
	inmemdb "github.com/trezcool/mwalimu/storage/database/inmem"
	"github.com/trezcool/mwalimu/tests"
)

func newService() *lessonplan.Service {
	return lessonplan.NewService(
		inmemdb.NewLessonRepository(inmemdb.NewDB()),
		lessonplan.NewGenerator(lessonplan.DefaultCurriculum()),
	)
}

func TestNewLesson_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	nl := lessonplan.NewLesson{Title: " Fractions ", Subject: "Mathematics", Grade: 4, Objectives: []string{" Compare fractions", "  "}}
	require.NoError(t, nl.Validate(validate))
	assert.Equal(t, "Fractions", nl.Title)
	assert.Equal(t, lessonplan.DefaultDuration, nl.Duration)
	assert.Equal(t, []string{"Compare fractions"}, nl.Objectives)

	nl = lessonplan.NewLesson{Title: "Fractions", Subject: "Mathematics", Grade: 4, Plan: json.RawMessage(`{"title":`)}
	err := nl.Validate(validate)
	require.Error(t, err)
	assert.Equal(t, "plan: invalid JSON document", err.Error())

	nl = lessonplan.NewLesson{Title: "Fractions", Subject: "Mathematics", Grade: 9}
	assert.Error(t, nl.Validate(validate))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	plan, err := svc.Generate(lessonplan.Request{Subject: "mathematics", Grade: 4, Topic: "Fractions"})
	require.NoError(t, err)
	planJSON, err := json.Marshal(plan)
	require.NoError(t, err)

	subID := uuid.NewString()
	nl := lessonplan.NewLesson{Title: "Fractions", Subject: " Mathematics", Grade: 4, Duration: 40, Plan: planJSON, SubmissionID: subID}
	l, err := svc.Create(ctx, 1, nl)
	require.NoError(t, err)
	assert.Equal(t, lessonplan.Subject("mathematics"), l.Subject)
	assert.True(t, l.AIGenerated)

	replayed, err := svc.Create(ctx, 1, nl)
	require.NoError(t, err)
	assert.Equal(t, l.ID, replayed.ID)

	// submission ids are scoped by teacher
	other, err := svc.Create(ctx, 2, nl)
	require.NoError(t, err)
	assert.NotEqual(t, l.ID, other.ID)

	manual, err := svc.Create(ctx, 1, lessonplan.NewLesson{Title: "Animals", Subject: "science", Grade: 3, Duration: 40})
	require.NoError(t, err)
	assert.False(t, manual.AIGenerated)

	lessons, err := svc.Query(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, lessons, 2)

	lessons, err = svc.Query(ctx, 1, []core.DBOrdering{{Field: "title", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Animals", "Fractions"}, []string{lessons[0].Title, lessons[1].Title})

	_, err = svc.Get(ctx, 2, l.ID)
	assert.True(t, core.IsNotFound(err))
	got, err := svc.Get(ctx, 1, l.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(planJSON), string(got.Plan))
}
