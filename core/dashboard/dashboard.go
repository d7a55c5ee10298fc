// Package dashboard summarizes a teacher's activity across the other domains.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/training"
)

// RecentActivitiesLimit is the number of activities shown on the dashboard.
const RecentActivitiesLimit = 5

type ActivityType string

const (
	ActivityLesson     ActivityType = "lesson"
	ActivityAssignment ActivityType = "assignment"
)

type (
	Stats struct {
		LessonPlans       int `json:"lessonPlans"`
		AssignmentsGraded int `json:"assignmentsGraded"`
		TotalStudents     int `json:"totalStudents"`
		CompletedCourses  int `json:"completedCourses"`
	}

	Activity struct {
		Type        ActivityType `json:"type"`
		Description string       `json:"description"`
		Date        time.Time    `json:"date"`
	}

	Dashboard struct {
		Stats            Stats            `json:"stats"`
		RecentActivities []Activity       `json:"recentActivities"`
		Badges           []training.Badge `json:"badges"`
	}
)

type (
	LessonSource interface {
		Query(ctx context.Context, teacherID int, orderings []core.DBOrdering) ([]lessonplan.Lesson, error)
	}

	StudentSource interface {
		Query(ctx context.Context, teacherID int) ([]gradebook.Student, error)
	}

	TrainingSource interface {
		CompletedCourses(ctx context.Context, teacherID int) (int, error)
		Badges(ctx context.Context, teacherID int, act training.Activity) ([]training.Badge, error)
	}

	Service struct {
		lessons  LessonSource
		students StudentSource
		training TrainingSource
	}
)

func NewService(lessons LessonSource, students StudentSource, training TrainingSource) *Service {
	return &Service{lessons: lessons, students: students, training: training}
}

type snapshot struct {
	lessons  []lessonplan.Lesson
	students []gradebook.Student
}

func (s snapshot) activity() training.Activity {
	act := training.Activity{LessonPlans: len(s.lessons)}
	for _, st := range s.students {
		act.GradedAssignments += st.AssignmentCount()
	}
	return act
}

func (svc *Service) snapshot(ctx context.Context, teacherID int) (snapshot, error) {
	lessons, err := svc.lessons.Query(ctx, teacherID, nil)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "querying lessons")
	}
	students, err := svc.students.Query(ctx, teacherID)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "querying students")
	}
	return snapshot{lessons: lessons, students: students}, nil
}

// Get returns the dashboard of the teacher.
func (svc *Service) Get(ctx context.Context, teacherID int) (Dashboard, error) {
	snap, err := svc.snapshot(ctx, teacherID)
	if err != nil {
		return Dashboard{}, err
	}
	completed, err := svc.training.CompletedCourses(ctx, teacherID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting completed courses")
	}
	act := snap.activity()
	badges, err := svc.training.Badges(ctx, teacherID, act)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "computing badges")
	}

	return Dashboard{
		Stats: Stats{
			LessonPlans:       act.LessonPlans,
			AssignmentsGraded: act.GradedAssignments,
			TotalStudents:     len(snap.students),
			CompletedCourses:  completed,
		},
		RecentActivities: RecentActivities(snap.lessons, snap.students, RecentActivitiesLimit),
		Badges:           badges,
	}, nil
}

// Badges returns the training badges of the teacher.
func (svc *Service) Badges(ctx context.Context, teacherID int) ([]training.Badge, error) {
	snap, err := svc.snapshot(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return svc.training.Badges(ctx, teacherID, snap.activity())
}

// RecentActivities merges saved lessons & graded assignments, newest first, up to limit.
func RecentActivities(lessons []lessonplan.Lesson, students []gradebook.Student, limit int) []Activity {
	acts := make([]Activity, 0, len(lessons))
	for _, l := range lessons {
		acts = append(acts, Activity{Type: ActivityLesson, Description: l.Title, Date: l.CreatedAt})
	}
	for _, s := range students {
		for _, a := range s.Assignments() {
			acts = append(acts, Activity{Type: ActivityAssignment, Description: "Graded: " + a.Title, Date: a.Date})
		}
	}

	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Date.After(acts[j].Date) })
	if len(acts) > limit {
		acts = acts[:limit]
	}
	return acts
}
