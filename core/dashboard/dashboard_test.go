package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/training"
)

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func student(t *testing.T, name string, assignments ...gradebook.Assignment) gradebook.Student {
	s := gradebook.Student{Name: name}
	for _, a := range assignments {
		var err error
		s, err = gradebook.RecordAssignment(s, a)
		require.NoError(t, err)
	}
	return s
}

type (
	lessonsStub  []lessonplan.Lesson
	studentsStub struct {
		students []gradebook.Student
		err      error
	}
	trainingStub struct {
		completed int
		gotAct    training.Activity
	}
)

func (s lessonsStub) Query(context.Context, int, []core.DBOrdering) ([]lessonplan.Lesson, error) {
	return s, nil
}

func (s studentsStub) Query(context.Context, int) ([]gradebook.Student, error) {
	return s.students, s.err
}

func (s *trainingStub) CompletedCourses(context.Context, int) (int, error) { return s.completed, nil }

func (s *trainingStub) Badges(_ context.Context, _ int, act training.Activity) ([]training.Badge, error) {
	s.gotAct = act
	return training.Badges(act, nil, nil), nil
}

func TestRecentActivities(t *testing.T) {
	lessons := []lessonplan.Lesson{
		{Title: "Fractions Introduction", CreatedAt: day(10).Add(9 * time.Hour)},
		{Title: "Animal Classification", CreatedAt: day(2)},
	}
	students := []gradebook.Student{
		student(t, "John", gradebook.Assignment{Title: "Quiz 1", Score: 9, TotalMarks: 10, Date: day(5)}),
		student(t, "Mary",
			gradebook.Assignment{Title: "Quiz 1", Score: 6, TotalMarks: 10, Date: day(5)},
			gradebook.Assignment{Title: "Test", Score: 30, TotalMarks: 50, Date: day(12)},
		),
		student(t, "Peter"),
	}

	acts := RecentActivities(lessons, students, 5)
	assert.Equal(t, []Activity{
		{Type: ActivityAssignment, Description: "Graded: Test", Date: day(12)},
		{Type: ActivityLesson, Description: "Fractions Introduction", Date: day(10).Add(9 * time.Hour)},
		{Type: ActivityAssignment, Description: "Graded: Quiz 1", Date: day(5)},
		{Type: ActivityAssignment, Description: "Graded: Quiz 1", Date: day(5)},
		{Type: ActivityLesson, Description: "Animal Classification", Date: day(2)},
	}, acts)

	assert.Len(t, RecentActivities(lessons, students, 2), 2)
	assert.Empty(t, RecentActivities(nil, nil, 5))
}

func TestService_Get(t *testing.T) {
	lessons := lessonsStub{{Title: "A", CreatedAt: day(1)}, {Title: "B", CreatedAt: day(2)}}
	students := studentsStub{students: []gradebook.Student{
		student(t, "John",
			gradebook.Assignment{Title: "Q1", Score: 9, TotalMarks: 10, Date: day(3)},
			gradebook.Assignment{Title: "Q2", Score: 8, TotalMarks: 10, Date: day(4)},
		),
		student(t, "Peter"),
	}}
	trn := &trainingStub{completed: 1}

	dash, err := NewService(lessons, students, trn).Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Stats{LessonPlans: 2, AssignmentsGraded: 2, TotalStudents: 2, CompletedCourses: 1}, dash.Stats)
	assert.Len(t, dash.RecentActivities, 4)
	assert.Len(t, dash.Badges, 4)
	assert.Equal(t, training.Activity{LessonPlans: 2, GradedAssignments: 2}, trn.gotAct)
	assert.Equal(t, 10, dash.Badges[0].Progress) // 2 of 20 lesson plans

	_, err = NewService(lessons, studentsStub{err: errors.New("boom")}, trn).Get(context.Background(), 1)
	assert.EqualError(t, err, "querying students: boom")
}
