package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) gradebook.Repository {
	return &studentRepository{db: db}
}

func (row studentRow) restore() gradebook.Student {
	return gradebook.RestoreStudent(row.student, row.assignments)
}

func (repo *studentRepository) CreateStudent(_ context.Context, s gradebook.Student) (gradebook.Student, error) {
	tbl := repo.db.student
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	tbl.pk++
	s.ID = tbl.pk
	row := studentRow{student: gradebook.RestoreStudent(s, nil), assignments: s.Assignments()}
	tbl.table[s.ID] = row
	tbl.locks[s.ID] = new(sync.Mutex)
	return row.restore(), nil
}

func (repo *studentRepository) get(teacherID, id int) (studentRow, bool) {
	tbl := repo.db.student
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	row, ok := tbl.table[id]
	if !ok || row.student.TeacherID != teacherID {
		return studentRow{}, false
	}
	return row, true
}

func (repo *studentRepository) GetStudent(_ context.Context, teacherID, id int) (gradebook.Student, error) {
	row, ok := repo.get(teacherID, id)
	if !ok {
		return gradebook.Student{}, gradebook.ErrStudentNotFound
	}
	return row.restore(), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, teacherID int) ([]gradebook.Student, error) {
	tbl := repo.db.student
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	students := make([]gradebook.Student, 0)
	for _, row := range tbl.table {
		if row.student.TeacherID == teacherID {
			students = append(students, row.restore())
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) lock(id int) *sync.Mutex {
	tbl := repo.db.student
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	return tbl.locks[id]
}

func (repo *studentRepository) AppendAssignment(
	_ context.Context,
	teacherID, studentID int,
	a gradebook.Assignment,
	submissionID string,
) (gradebook.AppendResult, error) {
	mu := repo.lock(studentID)
	if mu == nil {
		return gradebook.AppendResult{}, gradebook.ErrStudentNotFound
	}
	mu.Lock()
	defer mu.Unlock()

	row, ok := repo.get(teacherID, studentID)
	if !ok {
		return gradebook.AppendResult{}, gradebook.ErrStudentNotFound
	}
	before := row.restore()

	rcpt := repo.db.receipt
	rcpt.mutex.Lock()
	defer rcpt.mutex.Unlock()
	if r, ok := repo.db.receiptFor(teacherID, submissionID); ok {
		if r.kind != receiptGrade || r.objectID != studentID {
			return gradebook.AppendResult{}, core.NewSubmissionReusedError()
		}
		return gradebook.AppendResult{Before: before, After: before, Replayed: true}, nil
	}

	after, err := before.WithAssignment(a)
	if err != nil {
		return gradebook.AppendResult{}, err
	}

	tbl := repo.db.student
	tbl.mutex.Lock()
	tbl.table[studentID] = studentRow{student: row.student, assignments: after.Assignments()}
	tbl.mutex.Unlock()

	repo.db.saveReceipt(teacherID, submissionID, receiptGrade, studentID)
	return gradebook.AppendResult{Before: before, After: after}, nil
}
