package lessonplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

const (
	// DefaultDuration is used when a request does not specify a duration.
	DefaultDuration = 40

	cbcCurriculum = "CBC (Competency-Based Curriculum)"
)

var (
	errSubjectRequired = "subject is required"
	errTopicRequired   = "topic is required"
	errGradeRequired   = "grade is required"
	errGradeRange      = fmt.Sprintf("grade must be between %d and %d", MinGrade, MaxGrade)
	errDurationInvalid = "duration must be a positive number of minutes"
)

// Request is the input of Generator.Generate.
type Request struct {
	Subject  string `json:"subject"`
	Grade    int    `json:"grade"`
	Topic    string `json:"topic"`
	Duration int    `json:"duration"` // minutes; DefaultDuration when 0
}

// Validate cleans the request and checks it can be turned into a lesson plan.
func (r *Request) Validate() error {
	r.Subject = core.CleanString(r.Subject)
	r.Topic = core.CleanString(r.Topic)
	if r.Duration == 0 {
		r.Duration = DefaultDuration
	}

	var flds []core.FieldError
	if r.Subject == "" {
		flds = append(flds, core.FieldError{Field: "subject", Error: errSubjectRequired})
	}
	if r.Topic == "" {
		flds = append(flds, core.FieldError{Field: "topic", Error: errTopicRequired})
	}
	switch {
	case r.Grade == 0:
		flds = append(flds, core.FieldError{Field: "grade", Error: errGradeRequired})
	case r.Grade < MinGrade || r.Grade > MaxGrade:
		flds = append(flds, core.FieldError{Field: "grade", Error: errGradeRange})
	}
	if r.Duration < 0 {
		flds = append(flds, core.FieldError{Field: "duration", Error: errDurationInvalid})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid lesson plan request"), flds...)
	}
	return nil
}

// Generator derives lesson plans from the curriculum & the subject templates.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	curriculum *Curriculum
	now        func() time.Time
}

func NewGenerator(curriculum *Curriculum) *Generator {
	return &Generator{curriculum: curriculum, now: time.Now}
}

// WithClock returns a copy of the generator using now for the plan creation date.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	return &Generator{curriculum: g.curriculum, now: now}
}

func (g *Generator) Curriculum() *Curriculum {
	return g.curriculum
}

// Generate builds the lesson plan of req. Apart from the creation date, the output only depends on req.
func (g *Generator) Generate(req Request) (LessonPlan, error) {
	if err := req.Validate(); err != nil {
		return LessonPlan{}, err
	}

	subject := ParseSubject(req.Subject)
	topic := req.Topic
	tmpl := templateFor(subject)

	activities := make([]Activity, 0, len(tmpl.activities))
	for _, a := range tmpl.activities {
		a.Description = interpolate(a.Description, topic)
		activities = append(activities, a)
	}

	alignment := CBCAlignment{
		Topics:        g.curriculum.Topics(subject, req.Grade),
		RelatedTopics: g.curriculum.RelatedTopics(subject, req.Grade, topic),
	}
	if alignment.Topics == nil {
		alignment.Topics = []string{}
	}
	if alignment.RelatedTopics == nil {
		alignment.RelatedTopics = []string{}
	}

	return LessonPlan{
		Metadata: Metadata{
			Title:       topic,
			Subject:     subject.Title(),
			Grade:       fmt.Sprintf("Grade %d", req.Grade),
			Duration:    fmt.Sprintf("%d minutes", req.Duration),
			Curriculum:  cbcCurriculum,
			DateCreated: g.now().UTC(),
		},
		Competencies: clone(tmpl.competencies),
		Objectives: Objectives{
			Knowledge: fmt.Sprintf("Students will understand the fundamental concepts of %s", topic),
			Skills:    fmt.Sprintf("Students will demonstrate practical application of %s through hands-on activities", topic),
			Attitudes: fmt.Sprintf("Students will develop appreciation and curiosity about %s", topic),
		},
		Prerequisites: prerequisites(req.Grade),
		Materials: Materials{
			Local:     clone(tmpl.localMaterials),
			Classroom: clone(classroomMaterials),
			Optional:  clone(optionalMaterials),
		},
		LessonStructure: lessonStructure(req.Duration),
		Activities:      activities,
		Assessment: Assessment{
			Formative: clone(formativeAssessment),
			Summative: tmpl.summative,
			Rubric:    append(Pairs(nil), rubric...),
		},
		Differentiation:      differentiation(req.Grade),
		Homework:             interpolate(tmpl.homework, topic),
		Reflection:           reflectionPrompt,
		CrossCurricular:      clone(tmpl.crossCurricular),
		SafetyConsiderations: clone(tmpl.safety),
		CBCAlignment:         alignment,
	}, nil
}

func interpolate(s, topic string) string {
	if !strings.Contains(s, "%s") {
		return s
	}
	return fmt.Sprintf(s, topic)
}

// clone copies s so callers cannot alter the templates; nil becomes an empty slice.
func clone(s []string) []string {
	return append(make([]string, 0, len(s)), s...)
}
