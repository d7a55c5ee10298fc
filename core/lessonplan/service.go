package lessonplan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrLessonNotFound = core.NewNotFoundError("lesson not found")

	// LessonOrderings maps the API ordering fields of lessons to their columns.
	LessonOrderings = map[string]string{
		"title":     "title",
		"subject":   "subject",
		"grade":     "grade",
		"createdAt": "created_at",
	}
	defaultLessonOrdering = []core.DBOrdering{{Field: "createdAt", Ascending: false}}
)

// Lesson is a lesson plan saved by a teacher.
type Lesson struct {
	ID          int             `json:"id"`
	TeacherID   int             `json:"-"`
	Title       string          `json:"title"`
	Subject     Subject         `json:"subject"`
	Grade       int             `json:"grade"`
	Duration    int             `json:"duration"`
	Objectives  []string        `json:"objectives"`
	Plan        json.RawMessage `json:"plan,omitempty"` // generated plan, stored as is
	AIGenerated bool            `json:"aiGenerated"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewLesson contains information needed to save a Lesson.
type NewLesson struct {
	Title        string          `json:"title" validate:"required,notblank"`
	Subject      string          `json:"subject" validate:"required,notblank"`
	Grade        int             `json:"grade" validate:"required,min=1,max=6"`
	Duration     int             `json:"duration" validate:"omitempty,gt=0"`
	Objectives   []string        `json:"objectives"`
	Plan         json.RawMessage `json:"plan,omitempty"`
	SubmissionID string          `json:"submissionId,omitempty" validate:"omitempty,uuid"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Subject = core.CleanString(nl.Subject)
	nl.SubmissionID = core.CleanString(nl.SubmissionID, true /* lower */)
	if nl.Duration == 0 {
		nl.Duration = DefaultDuration
	}
	objectives := make([]string, 0, len(nl.Objectives))
	for _, o := range nl.Objectives {
		if o = core.CleanString(o); o != "" {
			objectives = append(objectives, o)
		}
	}
	nl.Objectives = objectives
	if err := validate.Struct(nl); err != nil {
		return err
	}
	if len(nl.Plan) > 0 && !json.Valid(nl.Plan) {
		return core.NewValidationError(nil, core.FieldError{Field: "plan", Error: "invalid JSON document"})
	}
	return nil
}

type (
	// Repository stores saved lessons.
	// CreateLesson is idempotent per (teacher, submissionID): a replayed submission returns the lesson
	// created the first time.
	Repository interface {
		CreateLesson(ctx context.Context, l Lesson, submissionID string) (Lesson, error)
		GetLesson(ctx context.Context, teacherID, id int) (Lesson, error)
		QueryLessons(ctx context.Context, teacherID int, orderings []core.DBOrdering) ([]Lesson, error)
	}

	Service struct {
		repo      Repository
		generator *Generator
	}
)

func NewService(repo Repository, generator *Generator) *Service {
	return &Service{repo: repo, generator: generator}
}

func (svc *Service) Generate(req Request) (LessonPlan, error) {
	return svc.generator.Generate(req)
}

func (svc *Service) Curriculum() *Curriculum {
	return svc.generator.Curriculum()
}

func (svc *Service) Create(ctx context.Context, teacherID int, nl NewLesson) (Lesson, error) {
	l := Lesson{
		TeacherID:   teacherID,
		Title:       nl.Title,
		Subject:     ParseSubject(nl.Subject),
		Grade:       nl.Grade,
		Duration:    nl.Duration,
		Objectives:  nl.Objectives,
		Plan:        nl.Plan,
		AIGenerated: len(nl.Plan) > 0,
		CreatedAt:   nowFunc().UTC(),
	}
	return svc.repo.CreateLesson(ctx, l, nl.SubmissionID)
}

func (svc *Service) Get(ctx context.Context, teacherID, id int) (Lesson, error) {
	return svc.repo.GetLesson(ctx, teacherID, id)
}

// Query returns the teacher's lessons, newest first unless orderings say otherwise.
func (svc *Service) Query(ctx context.Context, teacherID int, orderings []core.DBOrdering) ([]Lesson, error) {
	if len(orderings) == 0 {
		orderings = defaultLessonOrdering
	}
	return svc.repo.QueryLessons(ctx, teacherID, orderings)
}
