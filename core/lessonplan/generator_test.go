package lessonplan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
)

var fixedNow = time.Date(2024, 5, 6, 8, 30, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultCurriculum()).WithClock(func() time.Time { return fixedNow })
}

func phaseNames(ps Phases) []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return names
}

func TestGenerator_Generate_mathematics(t *testing.T) {
	plan, err := newTestGenerator().Generate(Request{Subject: "mathematics", Grade: 4, Topic: "Fractions", Duration: 40})
	require.NoError(t, err)

	assert.Equal(t, Metadata{
		Title:       "Fractions",
		Subject:     "Mathematics",
		Grade:       "Grade 4",
		Duration:    "40 minutes",
		Curriculum:  "CBC (Competency-Based Curriculum)",
		DateCreated: fixedNow,
	}, plan.Metadata)

	assert.Equal(t, Phases{{PhaseIntroduction, 8}, {PhaseDevelopment, 24}, {PhaseConclusion, 8}}, plan.LessonStructure)
	assert.LessOrEqual(t, plan.LessonStructure.Total(), 40)
	assert.Equal(t, []string{"Stones and pebbles", "Sticks and twigs", "Seeds and fruits", "Bottles and containers"}, plan.Materials.Local)
	assert.Empty(t, plan.SafetyConsiderations)
	assert.NotNil(t, plan.SafetyConsiderations)
	assert.Equal(t, "Mathematical thinking and reasoning", plan.Competencies[0])
	assert.Equal(t, []string{"Concepts from Grade 3", "Fundamental subject knowledge", "Basic study skills"}, plan.Prerequisites)

	require.Len(t, plan.Activities, 2)
	assert.Equal(t, Activity{
		Name:        "Concrete Exploration",
		Description: "Use local materials like stones or seeds to explore Fractions concepts hands-on",
		Duration:    "15 minutes",
		Grouping:    GroupingPairs,
	}, plan.Activities[0])
	assert.Equal(t, GroupingIndividual, plan.Activities[1].Grouping)

	assert.Equal(t, "Short written exercise with 5-7 problems to solve", plan.Assessment.Summative)
	assert.Len(t, plan.Assessment.Formative, 4)
	assert.Equal(t, "Practice Fractions using objects at home (counting items, sorting, basic calculations)", plan.Homework)
	assert.Len(t, plan.CrossCurricular, 3)
	assert.Equal(t, []string{"Large Numbers", "Fractions", "Decimals", "Area and Perimeter"}, plan.CBCAlignment.Topics)
	assert.Equal(t, []string{"Fractions"}, plan.CBCAlignment.RelatedTopics)
}

func TestGenerator_Generate_science(t *testing.T) {
	plan, err := newTestGenerator().Generate(Request{Subject: "Science", Grade: 3, Topic: "Forces", Duration: 60})
	require.NoError(t, err)

	assert.Equal(t, Phases{{PhaseIntroduction, 9}, {PhaseDevelopment, 39}, {PhasePractice, 9}, {PhaseConclusion, 3}}, plan.LessonStructure)
	assert.Len(t, plan.SafetyConsiderations, 4)
	assert.Equal(t, "Investigation Activity", plan.Activities[0].Name)
	assert.Equal(t, "Students draw and write about what they discovered", plan.Activities[1].Description)
	assert.Equal(t, []string{"Previous knowledge from Grade 2", "Basic literacy and numeracy"}, plan.Prerequisites)
	lang, _ := plan.Differentiation.Get("Language support")
	assert.Equal(t, "Provide vocabulary support and clear explanations", lang)
	assert.Equal(t, []string{"Forces and Motion"}, plan.CBCAlignment.RelatedTopics)
}

func TestGenerator_Generate_english(t *testing.T) {
	plan, err := newTestGenerator().Generate(Request{Subject: "english", Grade: 1, Topic: "Simple Words", Duration: 30})
	require.NoError(t, err)

	assert.Equal(t, []string{"Basic counting and recognition skills"}, plan.Prerequisites)
	assert.Equal(t, []string{"Pictures and images", "Cardboard and paper", "Local story materials"}, plan.Materials.Local)
	assert.Equal(t, GroupingWholeClass, plan.Activities[0].Grouping)
	lang, _ := plan.Differentiation.Get("Language support")
	assert.Equal(t, "Use simple language and local language when necessary", lang)
	assert.Empty(t, plan.SafetyConsiderations)
}

func TestGenerator_Generate_unknownSubject(t *testing.T) {
	plan, err := newTestGenerator().Generate(Request{Subject: "Kiswahili", Grade: 5, Topic: "Methali", Duration: 35})
	require.NoError(t, err)

	assert.Equal(t, "Kiswahili", plan.Metadata.Subject)
	assert.Equal(t, []string{"Critical thinking", "Problem solving", "Communication", "Collaboration"}, plan.Competencies)
	assert.Equal(t, []string{"Stones and pebbles", "Sticks and twigs", "Leaves and flowers", "Clay or mud"}, plan.Materials.Local)
	assert.Equal(t, []Activity{{
		Name:        "Exploration Activity",
		Description: "Students explore Methali through guided discovery",
		Duration:    "20 minutes",
		Grouping:    GroupingSmallGroups,
	}}, plan.Activities)
	assert.Equal(t, "Brief written or practical assessment task", plan.Assessment.Summative)
	assert.Equal(t, "Research or practice Methali using available resources at home", plan.Homework)
	assert.Equal(t, []string{"Mathematics (data and measurement)", "English (vocabulary and communication)"}, plan.CrossCurricular)
	assert.Empty(t, plan.SafetyConsiderations)
	assert.Empty(t, plan.CBCAlignment.Topics)
}

func TestGenerator_Generate_lessonStructure(t *testing.T) {
	tests := []struct {
		duration int
		want     Phases
	}{
		{duration: 0, want: Phases{{PhaseIntroduction, 8}, {PhaseDevelopment, 24}, {PhaseConclusion, 8}}}, // default duration
		{duration: 1, want: Phases{{PhaseIntroduction, 0}, {PhaseDevelopment, 1}, {PhaseConclusion, 0}}},
		{duration: 35, want: Phases{{PhaseIntroduction, 7}, {PhaseDevelopment, 21}, {PhaseConclusion, 7}}},
		{duration: 41, want: Phases{{PhaseIntroduction, 6}, {PhaseDevelopment, 27}, {PhasePractice, 6}, {PhaseConclusion, 2}}},
		{duration: 90, want: Phases{{PhaseIntroduction, 14}, {PhaseDevelopment, 59}, {PhasePractice, 14}, {PhaseConclusion, 5}}},
	}
	for _, tt := range tests {
		plan, err := newTestGenerator().Generate(Request{Subject: "mathematics", Grade: 2, Topic: "Time and Money", Duration: tt.duration})
		require.NoError(t, err)
		assert.Equalf(t, tt.want, plan.LessonStructure, "duration %d", tt.duration)
		assert.Equalf(t, phaseNames(tt.want), phaseNames(plan.LessonStructure), "duration %d", tt.duration)
	}
}

func TestGenerator_Generate_invalid(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantFields []string
	}{
		{name: "empty", req: Request{}, wantFields: []string{"subject", "topic", "grade"}},
		{name: "blank subject", req: Request{Subject: "  ", Grade: 3, Topic: "Energy"}, wantFields: []string{"subject"}},
		{name: "blank topic", req: Request{Subject: "science", Grade: 3, Topic: " "}, wantFields: []string{"topic"}},
		{name: "missing grade", req: Request{Subject: "science", Topic: "Energy"}, wantFields: []string{"grade"}},
		{name: "grade too low", req: Request{Subject: "science", Grade: -1, Topic: "Energy"}, wantFields: []string{"grade"}},
		{name: "grade too high", req: Request{Subject: "science", Grade: 7, Topic: "Energy"}, wantFields: []string{"grade"}},
		{name: "negative duration", req: Request{Subject: "science", Grade: 3, Topic: "Energy", Duration: -10}, wantFields: []string{"duration"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGenerator().Generate(tt.req)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestGenerator_Generate_deterministic(t *testing.T) {
	req := Request{Subject: "science", Grade: 4, Topic: "Life Cycles", Duration: 45}
	first, err := newTestGenerator().Generate(req)
	require.NoError(t, err)
	second, err := newTestGenerator().Generate(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// mutating a plan does not leak into the next one
	first.Competencies[0] = "changed"
	first.SafetyConsiderations[0] = "changed"
	third, err := newTestGenerator().Generate(req)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestLessonPlan_MarshalJSON(t *testing.T) {
	plan, err := newTestGenerator().Generate(Request{Subject: "science", Grade: 3, Topic: "Forces", Duration: 60})
	require.NoError(t, err)

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"lessonStructure":{"introduction":9,"development":39,"practice":9,"conclusion":3}`)
	assert.Contains(t, s, `"rubric":{"Exceeds Expectations":"Student demonstrates complete understanding and can teach others",`)
	assert.Contains(t, s, `"Language support":"Provide vocabulary support and clear explanations"}`)

	short, err := newTestGenerator().Generate(Request{Subject: "history", Grade: 3, Topic: "Forces", Duration: 40})
	require.NoError(t, err)
	data, err = json.Marshal(short)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"safetyConsiderations":[]`)
}

func TestCurriculum(t *testing.T) {
	c := DefaultCurriculum()
	assert.Equal(t, []Subject{English, Mathematics, Science}, c.Subjects())
	for _, s := range c.Subjects() {
		for g := MinGrade; g <= MaxGrade; g++ {
			assert.Lenf(t, c.Topics(s, g), 4, "%s grade %d", s, g)
		}
	}
	assert.Nil(t, c.Topics(Mathematics, 7))

	topics := c.Topics(Mathematics, 4)
	topics[0] = "changed"
	assert.Equal(t, "Large Numbers", c.Topics(Mathematics, 4)[0])

	assert.Equal(t, []string{"Advanced Fractions"}, c.RelatedTopics(Mathematics, 5, "advanced fractions"))
	assert.Equal(t, "Mathematics", ParseSubject("  MATHEMATICS ").Title())
}
