package lessonplan

import (
	"fmt"

	"github.com/trezcool/mwalimu/core"
)

// subjectTemplate holds the per-subject content of a lesson plan.
// Strings containing %s are interpolated with the lesson topic.
type subjectTemplate struct {
	competencies    []string
	localMaterials  []string
	activities      []Activity
	summative       string
	homework        string
	crossCurricular []string
	safety          []string
}

var (
	generalLocalMaterials = []string{
		"Stones and pebbles",
		"Sticks and twigs",
		"Leaves and flowers",
		"Clay or mud",
		"Bottles and containers",
		"Cardboard and paper",
		"Seeds and fruits",
		"Sand and soil",
		"String and rope",
		"Plastic caps and lids",
	}

	classroomMaterials = []string{"Chalkboard and chalk", "Exercise books", "Pencils/pens"}
	optionalMaterials  = []string{"Charts or posters", "Simple calculator (if available)"}

	formativeAssessment = []string{
		"Observation during group activities",
		"Quick oral questions throughout the lesson",
		"Thumb up/down for understanding checks",
		"Exit ticket with one thing learned",
	}

	rubric = Pairs{
		{"Exceeds Expectations", "Student demonstrates complete understanding and can teach others"},
		{"Meets Expectations", "Student understands the concept and can apply it correctly"},
		{"Approaching Expectations", "Student shows partial understanding with minor gaps"},
		{"Below Expectations", "Student needs additional support to understand the concept"},
	}

	reflectionPrompt = "What went well? What could be improved? How did students respond?"
)

var subjectTemplates = map[Subject]subjectTemplate{
	Mathematics: {
		competencies: []string{
			"Mathematical thinking and reasoning",
			"Problem-solving and application",
			"Mathematical communication",
			"Mathematical connections",
		},
		localMaterials: []string{"Stones and pebbles", "Sticks and twigs", "Seeds and fruits", "Bottles and containers"},
		activities: []Activity{
			{
				Name:        "Concrete Exploration",
				Description: "Use local materials like stones or seeds to explore %s concepts hands-on",
				Duration:    "15 minutes",
				Grouping:    GroupingPairs,
			},
			{
				Name:        "Problem Solving",
				Description: "Present real-world problems related to %s that students can solve using local context",
				Duration:    "10 minutes",
				Grouping:    GroupingIndividual,
			},
		},
		summative:       "Short written exercise with 5-7 problems to solve",
		homework:        "Practice %s using objects at home (counting items, sorting, basic calculations)",
		crossCurricular: []string{"Science (measurement, data collection)", "Art (patterns, symmetry)", "Social Studies (maps, population)"},
	},
	Science: {
		competencies: []string{
			"Scientific inquiry and investigation",
			"Scientific knowledge and understanding",
			"Scientific skills and processes",
			"Science and society connections",
		},
		localMaterials: []string{"Leaves and flowers", "Sand and soil", "Water and containers", "Clay or mud"},
		activities: []Activity{
			{
				Name:        "Investigation Activity",
				Description: "Students observe and investigate %s using materials from their environment",
				Duration:    "20 minutes",
				Grouping:    GroupingSmallGroups,
			},
			{
				Name:        "Recording Observations",
				Description: "Students draw and write about what they discovered",
				Duration:    "10 minutes",
				Grouping:    GroupingIndividual,
			},
		},
		summative:       "Draw and label diagram with brief explanations",
		homework:        "Observe and record examples of %s in your environment",
		crossCurricular: []string{"Mathematics (measurements, calculations)", "English (vocabulary, writing observations)", "Art (scientific drawing)"},
		safety: []string{
			"Ensure all materials are safe and non-toxic",
			"Supervise students during hands-on activities",
			"Teach proper handling of materials",
			"Have first aid available",
		},
	},
	English: {
		competencies: []string{
			"Listening and speaking",
			"Reading and comprehension",
			"Writing and composition",
			"Language use and vocabulary",
		},
		localMaterials: []string{"Pictures and images", "Cardboard and paper", "Local story materials"},
		activities: []Activity{
			{
				Name:        "Interactive Discussion",
				Description: "Engage students in conversation about %s using familiar examples",
				Duration:    "15 minutes",
				Grouping:    GroupingWholeClass,
			},
			{
				Name:        "Creative Expression",
				Description: "Students create stories, poems, or drawings related to the topic",
				Duration:    "15 minutes",
				Grouping:    GroupingIndividual,
			},
		},
		summative:       "Short paragraph writing or reading comprehension task",
		homework:        "Write 3-5 sentences about %s or discuss with family members",
		crossCurricular: []string{"Social Studies (cultural stories)", "Science (reading scientific texts)", "Art (creative writing, illustration)"},
	},
}

// defaultTemplate is used for subjects without a dedicated template.
var defaultTemplate = subjectTemplate{
	competencies:   []string{"Critical thinking", "Problem solving", "Communication", "Collaboration"},
	localMaterials: generalLocalMaterials[:4],
	activities: []Activity{
		{
			Name:        "Exploration Activity",
			Description: "Students explore %s through guided discovery",
			Duration:    "20 minutes",
			Grouping:    GroupingSmallGroups,
		},
	},
	summative:       "Brief written or practical assessment task",
	homework:        "Research or practice %s using available resources at home",
	crossCurricular: []string{"Mathematics (data and measurement)", "English (vocabulary and communication)"},
}

func templateFor(subject Subject) subjectTemplate {
	if tmpl, ok := subjectTemplates[subject]; ok {
		return tmpl
	}
	return defaultTemplate
}

func prerequisites(grade int) []string {
	switch {
	case grade <= 1:
		return []string{"Basic counting and recognition skills"}
	case grade <= 3:
		return []string{fmt.Sprintf("Previous knowledge from Grade %d", grade-1), "Basic literacy and numeracy"}
	default:
		return []string{fmt.Sprintf("Concepts from Grade %d", grade-1), "Fundamental subject knowledge", "Basic study skills"}
	}
}

func differentiation(grade int) Pairs {
	language := "Provide vocabulary support and clear explanations"
	if grade <= 2 {
		language = "Use simple language and local language when necessary"
	}
	return Pairs{
		{"For struggling learners", "Provide additional visual aids, peer support, and simplified tasks"},
		{"For advanced learners", "Offer extension activities and leadership opportunities"},
		{"For different learning styles", "Include visual, auditory, and kinesthetic learning opportunities"},
		{"Language support", language},
	}
}

// lessonStructure splits duration into phases; each phase is rounded on its own.
func lessonStructure(duration int) Phases {
	if duration <= shortLessonMax {
		return Phases{
			{PhaseIntroduction, percentOf(duration, 20)},
			{PhaseDevelopment, percentOf(duration, 60)},
			{PhaseConclusion, percentOf(duration, 20)},
		}
	}
	return Phases{
		{PhaseIntroduction, percentOf(duration, 15)},
		{PhaseDevelopment, percentOf(duration, 65)},
		{PhasePractice, percentOf(duration, 15)},
		{PhaseConclusion, percentOf(duration, 5)},
	}
}

// percentOf returns pct% of minutes rounded half-up.
func percentOf(minutes, pct int) int {
	return core.RoundHalfUp(minutes*pct, 100)
}
