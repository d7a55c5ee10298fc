package gradebook

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrStudentNotFound = core.NewNotFoundError("student not found")
)

type (
	// AppendResult is returned by Repository.AppendAssignment.
	AppendResult struct {
		Before   Student
		After    Student
		Replayed bool // the submission had already been applied; nothing was written
	}

	// Repository is the student store.
	// AppendAssignment must serialize concurrent appends to the same student: it loads the student,
	// applies RecordAssignment and persists the result as one atomic step.
	// When submissionID is not empty and was already applied for the teacher, the current student is
	// returned with Replayed set and nothing is written.
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, teacherID, id int) (Student, error)
		QueryStudents(ctx context.Context, teacherID int) ([]Student, error)
		AppendAssignment(ctx context.Context, teacherID, studentID int, a Assignment, submissionID string) (AppendResult, error)
	}

	// Notifier is warned whenever a recorded assignment moves a student into the at-risk band.
	Notifier interface {
		StudentAtRisk(ctx context.Context, teacherID int, s Student)
	}

	// ClassReport is the class analytics along with the weekly performance trend.
	ClassReport struct {
		ClassAnalytics
		WeeklyPerformance []WeekPerformance `json:"weeklyPerformance"`
		SamplePerformance bool              `json:"samplePerformance"`
	}

	Service struct {
		repo     Repository
		notifier Notifier
		logger   core.Logger

		randMu  sync.Mutex
		randSrc rand.Source
	}
)

func NewService(repo Repository, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		randSrc:  rand.NewSource(nowFunc().UnixNano()),
	}
}

// SetRandSource replaces the source used to generate sample performance data.
func (svc *Service) SetRandSource(src rand.Source) {
	svc.randMu.Lock()
	svc.randSrc = src
	svc.randMu.Unlock()
}

func (svc *Service) Enroll(ctx context.Context, teacherID int, ns NewStudent) (Student, error) {
	s := Student{
		TeacherID: teacherID,
		Name:      ns.Name,
		Grade:     ns.Grade,
		Class:     ns.Class,
		CreatedAt: nowFunc().UTC(),
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Get(ctx context.Context, teacherID, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, teacherID, id)
}

func (svc *Service) Query(ctx context.Context, teacherID int) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, teacherID)
}

// RecordAssignment records na for the student and returns the updated student.
// Replaying an already applied submission returns the current student unchanged.
func (svc *Service) RecordAssignment(ctx context.Context, teacherID, studentID int, na NewAssignment) (Student, error) {
	a := na.toAssignment(nowFunc())
	if err := a.validate(); err != nil {
		return Student{}, err
	}

	res, err := svc.repo.AppendAssignment(ctx, teacherID, studentID, a, na.SubmissionID)
	if err != nil {
		return Student{}, err
	}
	if res.Replayed {
		svc.logger.Info(fmt.Sprintf("gradebook: submission %s already applied", na.SubmissionID))
		return res.After, nil
	}

	if svc.notifier != nil && res.After.Status() == StatusAtRisk && res.Before.Status() != StatusAtRisk {
		svc.notifier.StudentAtRisk(ctx, teacherID, res.After)
	}
	return res.After, nil
}

// Report returns the class analytics of the teacher's students.
// Weekly performance falls back to sample data when no assignment was recorded over the last weeks.
func (svc *Service) Report(ctx context.Context, teacherID int) (ClassReport, error) {
	students, err := svc.repo.QueryStudents(ctx, teacherID)
	if err != nil {
		return ClassReport{}, errors.Wrap(err, "querying students")
	}
	analytics, err := Analyse(students)
	if err != nil {
		return ClassReport{}, err
	}

	report := ClassReport{ClassAnalytics: analytics}
	if perfs, ok := WeeklyPerformance(students, nowFunc(), PerformanceWeeks); ok {
		report.WeeklyPerformance = perfs
	} else {
		svc.randMu.Lock()
		report.WeeklyPerformance = SamplePerformance(svc.randSrc)
		svc.randMu.Unlock()
		report.SamplePerformance = true
	}
	return report, nil
}
