package lessonplan

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	PhaseIntroduction = "introduction"
	PhaseDevelopment  = "development"
	PhasePractice     = "practice"
	PhaseConclusion   = "conclusion"

	// lessons up to this duration (minutes) have no practice phase
	shortLessonMax = 40
)

type Grouping string

const (
	GroupingPairs       Grouping = "Pairs"
	GroupingIndividual  Grouping = "Individual"
	GroupingSmallGroups Grouping = "Small groups"
	GroupingWholeClass  Grouping = "Whole class"
)

type (
	LessonPlan struct {
		Metadata             Metadata     `json:"metadata"`
		Competencies         []string     `json:"competencies"`
		Objectives           Objectives   `json:"objectives"`
		Prerequisites        []string     `json:"prerequisites"`
		Materials            Materials    `json:"materials"`
		LessonStructure      Phases       `json:"lessonStructure"`
		Activities           []Activity   `json:"activities"`
		Assessment           Assessment   `json:"assessment"`
		Differentiation      Pairs        `json:"differentiation"`
		Homework             string       `json:"homework"`
		Reflection           string       `json:"reflection"`
		CrossCurricular      []string     `json:"crossCurricular"`
		SafetyConsiderations []string     `json:"safetyConsiderations"`
		CBCAlignment         CBCAlignment `json:"cbcAlignment"`
	}

	Metadata struct {
		Title       string    `json:"title"`
		Subject     string    `json:"subject"`
		Grade       string    `json:"grade"`
		Duration    string    `json:"duration"`
		Curriculum  string    `json:"curriculum"`
		DateCreated time.Time `json:"dateCreated"`
	}

	Objectives struct {
		Knowledge string `json:"knowledge"`
		Skills    string `json:"skills"`
		Attitudes string `json:"attitudes"`
	}

	Materials struct {
		Local     []string `json:"local"`
		Classroom []string `json:"classroom"`
		Optional  []string `json:"optional"`
	}

	Activity struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Duration    string   `json:"duration"`
		Grouping    Grouping `json:"grouping"`
	}

	Assessment struct {
		Formative []string `json:"formative"`
		Summative string   `json:"summative"`
		Rubric    Pairs    `json:"rubric"`
	}

	// CBCAlignment lists the curriculum topics of the lesson's subject & grade.
	CBCAlignment struct {
		Topics        []string `json:"topics"`
		RelatedTopics []string `json:"relatedTopics"`
	}

	Phase struct {
		Name    string
		Minutes int
	}

	// Phases is an ordered phase -> minutes mapping, rendered as a JSON object in order.
	Phases []Phase

	Pair struct {
		Key   string
		Value string
	}

	// Pairs is an ordered string mapping, rendered as a JSON object in order.
	Pairs []Pair
)

// Total returns the sum of all phases' minutes.
func (ps Phases) Total() int {
	var total int
	for _, p := range ps {
		total += p.Minutes
	}
	return total
}

func (ps Phases) Minutes(name string) (int, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Minutes, true
		}
	}
	return 0, false
}

func (ps Phases) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, p.Name, p.Minutes); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (ps Pairs) Get(key string) (string, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (ps Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONPair(buf *bytes.Buffer, key string, value interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
