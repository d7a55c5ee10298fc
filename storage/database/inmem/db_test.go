package inmemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/resource"
	"github.com/trezcool/mwalimu/core/teacher"
	"github.com/trezcool/mwalimu/core/training"
)

func TestTeacherRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTeacherRepository(NewDB())

	tchr, err := repo.CreateTeacher(ctx, teacher.Teacher{Name: "Jane", Email: "jane@school.ke", IsActive: true, PasswordHash: []byte("h")})
	require.NoError(t, err)
	assert.Equal(t, 1, tchr.ID)

	_, err = repo.CreateTeacher(ctx, teacher.Teacher{Name: "Other", Email: "JANE@school.ke"})
	assert.Equal(t, teacher.ErrEmailExists, err)

	got, err := repo.GetTeacherByEmail(ctx, "Jane@School.ke")
	require.NoError(t, err)
	assert.Equal(t, tchr.ID, got.ID)

	got.Name = "ignored"
	got.IsActive = false
	got.LastLogin = null.TimeFrom(time.Now().UTC())
	got.PasswordHash = nil
	updated, err := repo.UpdateTeacher(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.LastLogin.Valid)
	assert.Equal(t, []byte("h"), updated.PasswordHash)

	_, err = repo.GetTeacherByID(ctx, 42)
	assert.True(t, core.IsNotFound(err))
	_, err = repo.UpdateTeacher(ctx, teacher.Teacher{ID: 42})
	assert.True(t, core.IsNotFound(err))
}

func TestStudentRepository_AppendAssignment(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(NewDB())

	s, err := repo.CreateStudent(ctx, gradebook.Student{TeacherID: 1, Name: "Amani", Grade: 4})
	require.NoError(t, err)
	assert.False(t, s.IsGraded())

	a := gradebook.Assignment{Title: "Quiz", Score: 8, TotalMarks: 10, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}
	res, err := repo.AppendAssignment(ctx, 1, s.ID, a, "f2c5a1de-6f0e-4a5e-9d55-0d3e0b6ad7a1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.False(t, res.Before.IsGraded())
	assert.Equal(t, 80, res.After.OverallGrade())

	res, err = repo.AppendAssignment(ctx, 1, s.ID, a, "f2c5a1de-6f0e-4a5e-9d55-0d3e0b6ad7a1")
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, 1, res.After.AssignmentCount())

	_, err = repo.AppendAssignment(ctx, 2, s.ID, a, "")
	assert.True(t, core.IsNotFound(err), "other teacher's student")
	_, err = repo.AppendAssignment(ctx, 1, 99, a, "")
	assert.True(t, core.IsNotFound(err))
}

func TestSubmissionReceipts(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	students, lessons := NewStudentRepository(db), NewLessonRepository(db)
	const (
		lessonSub = "6b1f2a0e-3c4d-4e5f-8a9b-0c1d2e3f4a5b"
		gradeSub  = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
		reused    = "submissionId was already used for another object"
	)

	amani, err := students.CreateStudent(ctx, gradebook.Student{TeacherID: 1, Name: "Amani", Grade: 4})
	require.NoError(t, err)
	baraka, err := students.CreateStudent(ctx, gradebook.Student{TeacherID: 1, Name: "Baraka", Grade: 4})
	require.NoError(t, err)
	a := gradebook.Assignment{Title: "Quiz", Score: 8, TotalMarks: 10, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}

	_, err = lessons.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 1, Title: "Fractions"}, lessonSub)
	require.NoError(t, err)
	_, err = students.AppendAssignment(ctx, 1, amani.ID, a, gradeSub)
	require.NoError(t, err)

	_, err = students.AppendAssignment(ctx, 1, amani.ID, a, lessonSub)
	assert.EqualError(t, err, reused, "lesson submission replayed as a grade")
	_, err = students.AppendAssignment(ctx, 1, baraka.ID, a, gradeSub)
	assert.EqualError(t, err, reused, "grade submission replayed for another student")
	_, err = lessons.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 1, Title: "Plants"}, gradeSub)
	assert.EqualError(t, err, reused, "grade submission replayed as a lesson")

	got, err := students.GetStudent(ctx, 1, baraka.ID)
	require.NoError(t, err)
	assert.False(t, got.IsGraded())

	// receipts are scoped by teacher
	_, err = lessons.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 2, Title: "Plants"}, gradeSub)
	assert.NoError(t, err)
}

func TestStudentRepository_AppendAssignment_concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(NewDB())
	s, err := repo.CreateStudent(ctx, gradebook.Student{TeacherID: 1, Name: "Baraka", Grade: 5})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := gradebook.Assignment{Title: fmt.Sprintf("A%d", i), Score: i % 11, TotalMarks: 10, Date: time.Now().UTC()}
			_, err := repo.AppendAssignment(ctx, 1, s.ID, a, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.GetStudent(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.AssignmentCount())
}

func TestLessonRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLessonRepository(NewDB())
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"Fractions", "Addition", "Plants"} {
		_, err := repo.CreateLesson(ctx, lessonplan.Lesson{
			TeacherID: 1, Title: title, Subject: "mathematics", Grade: 6 - i, Objectives: []string{"count"}, CreatedAt: day.AddDate(0, 0, i),
		}, "")
		require.NoError(t, err)
	}
	_, err := repo.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 2, Title: "Other"}, "")
	require.NoError(t, err)

	first, err := repo.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 1, Title: "Queued", CreatedAt: day}, "0e0c7a3a-9d1c-4b1e-8f4e-6d2f0f1b2c3d")
	require.NoError(t, err)
	replay, err := repo.CreateLesson(ctx, lessonplan.Lesson{TeacherID: 1, Title: "Queued", CreatedAt: day}, "0e0c7a3a-9d1c-4b1e-8f4e-6d2f0f1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)

	tests := []struct {
		name      string
		orderings []core.DBOrdering
		want      []string
	}{
		{
			name:      "newest first",
			orderings: []core.DBOrdering{{Field: "createdAt"}},
			want:      []string{"Plants", "Addition", "Queued", "Fractions"},
		},
		{
			name:      "by title",
			orderings: []core.DBOrdering{{Field: "title", Ascending: true}},
			want:      []string{"Addition", "Fractions", "Plants", "Queued"},
		},
		{
			name:      "unknown field",
			orderings: []core.DBOrdering{{Field: "lol"}},
			want:      []string{"Queued", "Plants", "Addition", "Fractions"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lessons, err := repo.QueryLessons(ctx, 1, tt.orderings)
			require.NoError(t, err)
			titles := make([]string, 0, len(lessons))
			for _, l := range lessons {
				titles = append(titles, l.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	_, err = repo.GetLesson(ctx, 2, first.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestResourceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResourceRepository(NewDB())

	all, err := repo.QueryResources(ctx, resource.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{203, 156, 89}, []int{all[0].DownloadCount, all[1].DownloadCount, all[2].DownloadCount})

	grade4, err := repo.QueryResources(ctx, resource.QueryFilter{Grade: 4})
	require.NoError(t, err)
	require.Len(t, grade4, 2)

	r, err := repo.IncrementDownloads(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 90, r.DownloadCount)

	_, err = repo.IncrementDownloads(ctx, 99)
	assert.True(t, core.IsNotFound(err))
}

func TestTrainingRepository_SaveProgress(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainingRepository(NewDB())
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	t2 := t1.Add(24 * time.Hour)

	p, err := repo.SaveProgress(ctx, training.Progress{TeacherID: 1, CourseID: 3, Percentage: 40, StartedAt: t0})
	require.NoError(t, err)
	assert.Equal(t, t0, p.StartedAt)

	p, err = repo.SaveProgress(ctx, training.Progress{TeacherID: 1, CourseID: 3, Percentage: 100, Completed: true, StartedAt: t1, CompletedAt: null.TimeFrom(t1)})
	require.NoError(t, err)
	assert.Equal(t, t0, p.StartedAt)
	assert.Equal(t, null.TimeFrom(t1), p.CompletedAt)

	p, err = repo.SaveProgress(ctx, training.Progress{TeacherID: 1, CourseID: 3, Percentage: 100, Completed: true, StartedAt: t2, CompletedAt: null.TimeFrom(t2)})
	require.NoError(t, err)
	assert.Equal(t, null.TimeFrom(t1), p.CompletedAt, "first completion is kept")

	p, err = repo.SaveProgress(ctx, training.Progress{TeacherID: 1, CourseID: 3, Percentage: 60, StartedAt: t2})
	require.NoError(t, err)
	assert.False(t, p.CompletedAt.Valid)

	progress, err := repo.QueryProgress(ctx, 1)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 60, progress[0].Percentage)

	_, err = repo.SaveProgress(ctx, training.Progress{TeacherID: 1, CourseID: 42})
	assert.True(t, core.IsNotFound(err))
}
