package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/teacher"
)

// Logger is a core.Logger recording messages instead of printing them.
type Logger struct {
	mu       sync.Mutex
	messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	l.messages = append(l.messages, level+": "+msg)
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

// Messages returns the logged messages as "LEVEL: msg".
func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Contains reports whether a logged message contains s.
func (l *Logger) Contains(s string) bool {
	for _, msg := range l.Messages() {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.RegisterValidators(validate, translator)
	return validate, translator
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name, email, pwd string, isActive bool, createdAt ...time.Time) teacher.Teacher {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tchr := teacher.Teacher{
		Name:      name,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := tchr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher() failed: %v", err)
		}
	}
	tchr, err := repo.CreateTeacher(context.Background(), tchr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

// CreateStudent enrolls a student and records one assignment per score, each out of 100.
func CreateStudent(t *testing.T, repo gradebook.Repository, teacherID int, name string, grade int, scores ...int) gradebook.Student {
	ctx := context.Background()
	s, err := repo.CreateStudent(ctx, gradebook.Student{
		TeacherID: teacherID,
		Name:      name,
		Grade:     grade,
		Class:     "Class A",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	for i, score := range scores {
		a := gradebook.Assignment{
			Title:      fmt.Sprintf("Assignment %d", i+1),
			Score:      score,
			TotalMarks: 100,
			Date:       time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC),
		}
		res, err := repo.AppendAssignment(ctx, teacherID, s.ID, a, "")
		if err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
		s = res.After
	}
	return s
}
