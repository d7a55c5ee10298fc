package lessonplan

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	MinGrade = 1
	MaxGrade = 6
)

// Subject is a curriculum subject. Subjects outside the known ones are valid and use the generic templates.
type Subject string

const (
	Mathematics Subject = "mathematics"
	English     Subject = "english"
	Science     Subject = "science"
)

// ParseSubject normalizes s: "  Mathematics " -> mathematics.
func ParseSubject(s string) Subject {
	return Subject(strings.ToLower(strings.TrimSpace(s)))
}

// Title returns the subject with its first letter capitalized.
func (s Subject) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Curriculum maps subjects to grades to topics. It is never mutated once built.
type Curriculum struct {
	topics map[Subject]map[int][]string
}

var defaultCurriculum = &Curriculum{
	topics: map[Subject]map[int][]string{
		Mathematics: {
			1: {"Numbers 1-10", "Basic Addition", "Basic Subtraction", "Shapes and Patterns"},
			2: {"Numbers 1-100", "Addition and Subtraction", "Multiplication Introduction", "Time and Money"},
			3: {"Place Value", "Multiplication Tables", "Division", "Fractions Introduction"},
			4: {"Large Numbers", "Fractions", "Decimals", "Area and Perimeter"},
			5: {"Advanced Fractions", "Percentages", "Data Handling", "Geometry"},
			6: {"Ratios and Proportions", "Algebra Introduction", "Statistics", "Advanced Geometry"},
		},
		English: {
			1: {"Letter Recognition", "Simple Words", "Basic Reading", "Listening Skills"},
			2: {"Phonics", "Simple Sentences", "Reading Comprehension", "Creative Writing"},
			3: {"Grammar Basics", "Storytelling", "Poetry Introduction", "Oral Communication"},
			4: {"Advanced Grammar", "Essay Writing", "Literature", "Public Speaking"},
			5: {"Critical Thinking", "Research Skills", "Drama and Performance", "Media Literacy"},
			6: {"Advanced Writing", "Literary Analysis", "Debate Skills", "Creative Expression"},
		},
		Science: {
			1: {"My Body", "Plants and Animals", "Water and Air", "Safety"},
			2: {"Living and Non-living", "Weather", "Simple Machines", "Health and Hygiene"},
			3: {"Classification", "Forces and Motion", "Energy", "Environment"},
			4: {"Life Cycles", "Matter and Materials", "Light and Sound", "Ecosystems"},
			5: {"Human Body Systems", "Chemical Changes", "Earth and Space", "Technology"},
			6: {"Advanced Biology", "Chemistry Basics", "Physics Principles", "Environmental Science"},
		},
	},
}

// DefaultCurriculum returns the CBC primary curriculum (grades 1 to 6).
func DefaultCurriculum() *Curriculum {
	return defaultCurriculum
}

// Subjects returns the known subjects, sorted.
func (c *Curriculum) Subjects() []Subject {
	subjects := make([]Subject, 0, len(c.topics))
	for s := range c.topics {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i] < subjects[j] })
	return subjects
}

// Topics returns a copy of the topics of subject at grade; nil when unknown.
func (c *Curriculum) Topics(subject Subject, grade int) []string {
	topics, ok := c.topics[subject][grade]
	if !ok {
		return nil
	}
	return append([]string(nil), topics...)
}

// RelatedTopics returns the topics of subject at grade containing the first word of topic (case-insensitive).
func (c *Curriculum) RelatedTopics(subject Subject, grade int, topic string) []string {
	words := strings.Fields(strings.ToLower(topic))
	if len(words) == 0 {
		return nil
	}
	var related []string
	for _, t := range c.topics[subject][grade] {
		if strings.Contains(strings.ToLower(t), words[0]) {
			related = append(related, t)
		}
	}
	return related
}

// MarshalJSON renders the curriculum as {subject: {grade: [topics]}}.
func (c *Curriculum) MarshalJSON() ([]byte, error) {
	out := make(map[Subject]map[string][]string, len(c.topics))
	for subject, grades := range c.topics {
		out[subject] = make(map[string][]string, len(grades))
		for grade, topics := range grades {
			out[subject][strconv.Itoa(grade)] = topics
		}
	}
	return json.Marshal(out)
}
