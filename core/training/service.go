package training

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrCourseNotFound = core.NewNotFoundError("course not found")
)

type (
	Repository interface {
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		QueryProgress(ctx context.Context, teacherID int) ([]Progress, error)
		// SaveProgress upserts the progress of the teacher in the course. The start time of existing progress is kept.
		// The completion time of an already completed course is kept; it is cleared when the course is no longer completed.
		SaveProgress(ctx context.Context, p Progress) (Progress, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func sortCourses(courses []Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if ri, rj := courses[i].Level.Rank(), courses[j].Level.Rank(); ri != rj {
			return ri < rj
		}
		return courses[i].Title < courses[j].Title
	})
}

func (svc *Service) progressByCourse(ctx context.Context, teacherID int) (map[int]Progress, error) {
	progress, err := svc.repo.QueryProgress(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[int]Progress, len(progress))
	for _, p := range progress {
		byCourse[p.CourseID] = p
	}
	return byCourse, nil
}

// Courses returns the catalogue (by level, then title) with the teacher's progress.
func (svc *Service) Courses(ctx context.Context, teacherID int) ([]CourseProgress, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, err
	}
	sortCourses(courses)
	progress, err := svc.progressByCourse(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	cps := make([]CourseProgress, 0, len(courses))
	for _, c := range courses {
		p := progress[c.ID]
		cps = append(cps, CourseProgress{Course: c, Progress: p.Percentage, Completed: p.Completed, CompletedAt: p.CompletedAt})
	}
	return cps, nil
}

func (svc *Service) UpdateProgress(ctx context.Context, teacherID, courseID int, up UpdateProgress) (CourseProgress, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return CourseProgress{}, err
	}

	now := nowFunc().UTC()
	p := Progress{
		TeacherID:  teacherID,
		CourseID:   courseID,
		Percentage: *up.Progress,
		Completed:  *up.Progress >= CompletionThreshold,
		StartedAt:  now,
	}
	if p.Completed {
		p.CompletedAt = null.TimeFrom(now)
	}
	if p, err = svc.repo.SaveProgress(ctx, p); err != nil {
		return CourseProgress{}, err
	}
	return CourseProgress{Course: c, Progress: p.Percentage, Completed: p.Completed, CompletedAt: p.CompletedAt}, nil
}

// CompletedCourses returns how many courses the teacher completed.
func (svc *Service) CompletedCourses(ctx context.Context, teacherID int) (int, error) {
	progress, err := svc.repo.QueryProgress(ctx, teacherID)
	if err != nil {
		return 0, err
	}
	var n int
	for _, p := range progress {
		if p.Completed {
			n++
		}
	}
	return n, nil
}

func (svc *Service) Badges(ctx context.Context, teacherID int, act Activity) ([]Badge, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := svc.progressByCourse(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return Badges(act, courses, progress), nil
}
