package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/lessonplan"
)

type lessonRepository struct {
	db *DB
}

func NewLessonRepository(db *DB) lessonplan.Repository {
	return &lessonRepository{db: db}
}

func copyLesson(l lessonplan.Lesson) lessonplan.Lesson {
	l.Objectives = append(make([]string, 0, len(l.Objectives)), l.Objectives...)
	if l.Plan != nil {
		l.Plan = append(json.RawMessage(nil), l.Plan...)
	}
	return l
}

func (repo *lessonRepository) CreateLesson(_ context.Context, l lessonplan.Lesson, submissionID string) (lessonplan.Lesson, error) {
	rcpt := repo.db.receipt
	rcpt.mutex.Lock()
	defer rcpt.mutex.Unlock()

	tbl := repo.db.lesson
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if r, ok := repo.db.receiptFor(l.TeacherID, submissionID); ok {
		if r.kind != receiptLesson {
			return lessonplan.Lesson{}, core.NewSubmissionReusedError()
		}
		if orig, ok := tbl.table[r.objectID]; ok {
			return copyLesson(orig), nil
		}
	}

	tbl.pk++
	l.ID = tbl.pk
	tbl.table[l.ID] = copyLesson(l)
	repo.db.saveReceipt(l.TeacherID, submissionID, receiptLesson, l.ID)
	return copyLesson(l), nil
}

func (repo *lessonRepository) GetLesson(_ context.Context, teacherID, id int) (lessonplan.Lesson, error) {
	tbl := repo.db.lesson
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if l, ok := tbl.table[id]; ok && l.TeacherID == teacherID {
		return copyLesson(l), nil
	}
	return lessonplan.Lesson{}, lessonplan.ErrLessonNotFound
}

func (repo *lessonRepository) QueryLessons(_ context.Context, teacherID int, orderings []core.DBOrdering) ([]lessonplan.Lesson, error) {
	tbl := repo.db.lesson
	tbl.mutex.RLock()
	lessons := make([]lessonplan.Lesson, 0)
	for _, l := range tbl.table {
		if l.TeacherID == teacherID {
			lessons = append(lessons, copyLesson(l))
		}
	}
	tbl.mutex.RUnlock()

	sort.Slice(lessons, func(i, j int) bool {
		for _, ord := range orderings {
			if c := compareLessons(lessons[i], lessons[j], ord.Field); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		return lessons[i].ID > lessons[j].ID
	})
	return lessons, nil
}

// compareLessons compares a and b on an API ordering field; unknown fields compare equal.
func compareLessons(a, b lessonplan.Lesson, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "subject":
		return strings.Compare(string(a.Subject), string(b.Subject))
	case "grade":
		return a.Grade - b.Grade
	case "createdAt":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}
