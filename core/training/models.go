package training

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// CompletionThreshold is the progress percentage from which a course is completed.
const CompletionThreshold = 100

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var levelRanks = map[Level]int{LevelBeginner: 1, LevelIntermediate: 2, LevelAdvanced: 3}

// Rank orders levels from beginner to advanced; unknown levels come last.
func (l Level) Rank() int {
	if r, ok := levelRanks[l]; ok {
		return r
	}
	return len(levelRanks) + 1
}

// Course is a professional development course of the catalogue.
type Course struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"` // minutes
	Level       Level    `json:"level"`
	Modules     []string `json:"modules"`
}

// Progress is the progress of a teacher in a course.
type Progress struct {
	TeacherID   int       `json:"-"`
	CourseID    int       `json:"courseId"`
	Percentage  int       `json:"progress"`
	Completed   bool      `json:"completed"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt null.Time `json:"completedAt"`
}

// CompletedModules returns how many of the course modules the progress covers.
func (p Progress) CompletedModules(c Course) int {
	return p.Percentage * len(c.Modules) / 100
}

// CourseProgress is a course along with the teacher's progress in it.
type CourseProgress struct {
	Course
	Progress    int       `json:"progress"`
	Completed   bool      `json:"completed"`
	CompletedAt null.Time `json:"completedAt"`
}

// UpdateProgress contains the new progress of a teacher in a course.
type UpdateProgress struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

func (up UpdateProgress) Validate(validate *validator.Validate) error { return validate.Struct(up) }
