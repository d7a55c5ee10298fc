package gradebook

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const dateLayout = "2006-01-02"

type Status string

const (
	StatusExcellent    Status = "excellent"
	StatusGood         Status = "good"
	StatusNeedsSupport Status = "needs-support"
	StatusAtRisk       Status = "at-risk"
)

var (
	errNonPositiveTotal = errors.New("totalMarks must be greater than 0")
	errNegativeScore    = errors.New("score cannot be negative")
)

// Assignment is an immutable graded piece of work.
type Assignment struct {
	Title      string
	Score      int
	TotalMarks int
	Date       time.Time
}

func (a Assignment) validate() error {
	if a.TotalMarks <= 0 {
		return core.NewValidationError(errNonPositiveTotal, core.FieldError{Field: "totalMarks", Error: errNonPositiveTotal.Error()})
	}
	if a.Score < 0 {
		return core.NewValidationError(errNegativeScore, core.FieldError{Field: "score", Error: errNegativeScore.Error()})
	}
	return nil
}

// Percentage returns the unrounded percentage of a single assignment.
func (a Assignment) Percentage() float64 {
	return float64(a.Score) / float64(a.TotalMarks) * 100
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title      string `json:"title"`
		Score      int    `json:"score"`
		TotalMarks int    `json:"totalMarks"`
		Date       string `json:"date"`
	}{a.Title, a.Score, a.TotalMarks, a.Date.Format(dateLayout)})
}

// Student holds a pupil's assignment history.
// overallGrade & status are derived from the assignments and can only change through WithAssignment.
type Student struct {
	ID        int
	TeacherID int
	Name      string
	Grade     int
	Class     string
	CreatedAt time.Time

	assignments  []Assignment
	overallGrade int
	status       Status
}

// RestoreStudent rebuilds a Student from its stored assignment history, recomputing the derived fields.
func RestoreStudent(s Student, assignments []Assignment) Student {
	s.assignments = append([]Assignment(nil), assignments...)
	s.overallGrade, s.status = aggregate(s.assignments)
	return s
}

// WithAssignment returns a copy of the student with a appended and the derived fields recomputed.
// The receiver and its earlier assignments are left untouched.
func (s Student) WithAssignment(a Assignment) (Student, error) {
	if err := a.validate(); err != nil {
		return Student{}, err
	}
	assignments := make([]Assignment, len(s.assignments), len(s.assignments)+1)
	copy(assignments, s.assignments)
	s.assignments = append(assignments, a)
	s.overallGrade, s.status = aggregate(s.assignments)
	return s, nil
}

func (s Student) Assignments() []Assignment {
	return append([]Assignment(nil), s.assignments...)
}

func (s Student) AssignmentCount() int { return len(s.assignments) }

// OverallGrade is the rounded percentage over all assignments. It is 0 for ungraded students.
func (s Student) OverallGrade() int { return s.overallGrade }

// Status is empty for ungraded students.
func (s Student) Status() Status { return s.status }

func (s Student) IsGraded() bool { return len(s.assignments) > 0 }

func (s Student) MarshalJSON() ([]byte, error) {
	assignments := s.assignments
	if assignments == nil {
		assignments = []Assignment{}
	}
	var grade *int
	if s.IsGraded() {
		g := s.overallGrade
		grade = &g
	}
	return json.Marshal(struct {
		ID           int          `json:"id"`
		Name         string       `json:"name"`
		Grade        int          `json:"grade"`
		Class        string       `json:"class,omitempty"`
		Assignments  []Assignment `json:"assignments"`
		OverallGrade *int         `json:"overallGrade"`
		Status       Status       `json:"status,omitempty"`
		CreatedAt    time.Time    `json:"createdAt"`
	}{s.ID, s.Name, s.Grade, s.Class, assignments, grade, s.status, s.CreatedAt})
}

// NewStudent contains information needed to enroll a Student.
type NewStudent struct {
	Name  string `json:"name" validate:"required,notblank"`
	Grade int    `json:"grade" validate:"required,min=1,max=6"`
	Class string `json:"class"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	return validate.Struct(ns)
}

// NewAssignment contains information needed to record an Assignment.
type NewAssignment struct {
	Title string `json:"title" validate:"required,notblank"`
	// Assignment is accepted as an alias of Title.
	Assignment   string `json:"assignment,omitempty"`
	Score        *int   `json:"score" validate:"required,min=0"`
	TotalMarks   *int   `json:"totalMarks" validate:"required,gt=0"`
	Date         string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SubmissionID string `json:"submissionId,omitempty" validate:"omitempty,uuid"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	if na.Title == "" {
		na.Title = core.CleanString(na.Assignment)
	}
	na.Date = core.CleanString(na.Date)
	na.SubmissionID = core.CleanString(na.SubmissionID, true /* lower */)
	return validate.Struct(na)
}

// toAssignment must be called after Validate.
func (na NewAssignment) toAssignment(today time.Time) Assignment {
	date := today
	if na.Date != "" {
		if d, err := time.Parse(dateLayout, na.Date); err == nil {
			date = d
		}
	}
	a := Assignment{Title: na.Title, Date: truncateDay(date)}
	if na.Score != nil {
		a.Score = *na.Score
	}
	if na.TotalMarks != nil {
		a.TotalMarks = *na.TotalMarks
	}
	return a
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
