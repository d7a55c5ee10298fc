package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core/training"
)

type trainingRepository struct {
	db *trainingTable
}

func NewTrainingRepository(db *DB) training.Repository {
	return &trainingRepository{db: db.training}
}

func copyCourse(c training.Course) training.Course {
	c.Modules = append(make([]string, 0, len(c.Modules)), c.Modules...)
	return c
}

func (repo *trainingRepository) QueryCourses(context.Context) ([]training.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]training.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, copyCourse(c))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *trainingRepository) GetCourse(_ context.Context, id int) (training.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return copyCourse(c), nil
	}
	return training.Course{}, training.ErrCourseNotFound
}

func (repo *trainingRepository) QueryProgress(_ context.Context, teacherID int) ([]training.Progress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	progress := make([]training.Progress, 0)
	for key, p := range repo.db.progress {
		if key.teacherID == teacherID {
			progress = append(progress, p)
		}
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].CourseID < progress[j].CourseID })
	return progress, nil
}

func (repo *trainingRepository) SaveProgress(_ context.Context, p training.Progress) (training.Progress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[p.CourseID]; !ok {
		return training.Progress{}, training.ErrCourseNotFound
	}
	key := progressKey{teacherID: p.TeacherID, courseID: p.CourseID}
	if orig, ok := repo.db.progress[key]; ok {
		p.StartedAt = orig.StartedAt
		if p.Completed && orig.CompletedAt.Valid {
			p.CompletedAt = orig.CompletedAt
		}
	}
	if !p.Completed {
		p.CompletedAt = null.Time{}
	}
	repo.db.progress[key] = p
	return p, nil
}
