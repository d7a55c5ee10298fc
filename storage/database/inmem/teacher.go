package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/mwalimu/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teacher}
}

func copyTeacher(t teacher.Teacher) teacher.Teacher {
	t.PasswordHash = append([]byte(nil), t.PasswordHash...)
	return t
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, tchr := range repo.db.table {
		if strings.EqualFold(tchr.Email, t.Email) {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
	}
	repo.db.pk++
	t.ID = repo.db.pk
	t = copyTeacher(t)
	repo.db.table[t.ID] = t
	return copyTeacher(t), nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id int) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return copyTeacher(t), nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(_ context.Context, email string) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.table {
		if strings.EqualFold(t.Email, email) {
			return copyTeacher(t), nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save mutable fields
	orig, ok := repo.db.table[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if t.PasswordHash != nil {
		orig.PasswordHash = append([]byte(nil), t.PasswordHash...)
	}
	orig.IsActive = t.IsActive
	orig.LastLogin = t.LastLogin
	orig.UpdatedAt = t.UpdatedAt

	repo.db.table[t.ID] = orig
	return copyTeacher(orig), nil
}
