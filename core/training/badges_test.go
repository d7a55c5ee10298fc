package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testCourses = []Course{
	{ID: 1, Title: "Classroom Management in Large Classes", Level: LevelBeginner, Modules: []string{"a", "b", "c", "d"}},
	{ID: 2, Title: "Using Technology in Rural Classrooms", Level: LevelIntermediate, Modules: []string{"a", "b", "c", "d"}},
	{ID: 3, Title: "CBC Assessment Strategies", Level: LevelAdvanced, Modules: []string{"a", "b", "c", "d"}},
}

func badgeProgress(badges []Badge) map[string]int {
	out := make(map[string]int, len(badges))
	for _, b := range badges {
		out[b.Name] = b.Progress
	}
	return out
}

func TestBadges(t *testing.T) {
	tests := []struct {
		name       string
		act        Activity
		progress   map[int]Progress
		want       map[string]int
		wantEarned []string
	}{
		{
			name: "no activity",
			want: map[string]int{"Lesson Master": 0, "Assessment Pro": 0, "Innovation Leader": 0, "CBC Expert": 0},
		},
		{
			name: "partial",
			act:  Activity{LessonPlans: 5, GradedAssignments: 40},
			progress: map[int]Progress{
				1: {CourseID: 1, Percentage: 30}, // 1 module
				3: {CourseID: 3, Percentage: 60}, // 2 modules
			},
			want: map[string]int{"Lesson Master": 25, "Assessment Pro": 40, "Innovation Leader": 30, "CBC Expert": 60},
		},
		{
			name: "earned",
			act:  Activity{LessonPlans: 25, GradedAssignments: 100},
			progress: map[int]Progress{
				1: {CourseID: 1, Percentage: 100, Completed: true},
				2: {CourseID: 2, Percentage: 100, Completed: true},
				3: {CourseID: 3, Percentage: 50},
			},
			want:       map[string]int{"Lesson Master": 100, "Assessment Pro": 100, "Innovation Leader": 100, "CBC Expert": 50},
			wantEarned: []string{"Lesson Master", "Assessment Pro", "Innovation Leader"},
		},
		{
			name:     "unknown course progress ignored",
			progress: map[int]Progress{42: {CourseID: 42, Percentage: 100}},
			want:     map[string]int{"Lesson Master": 0, "Assessment Pro": 0, "Innovation Leader": 0, "CBC Expert": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badges := Badges(tt.act, testCourses, tt.progress)
			assert.Len(t, badges, 4)
			assert.Equal(t, tt.want, badgeProgress(badges))

			var earned []string
			for _, b := range badges {
				if b.Earned {
					earned = append(earned, b.Name)
				}
			}
			assert.Equal(t, tt.wantEarned, earned)
		})
	}
}

func TestSortCourses(t *testing.T) {
	courses := []Course{
		{Title: "Z", Level: LevelAdvanced},
		{Title: "B", Level: LevelBeginner},
		{Title: "A", Level: LevelIntermediate},
		{Title: "A", Level: LevelBeginner},
		{Title: "X", Level: "expert"},
	}
	sortCourses(courses)
	var got []string
	for _, c := range courses {
		got = append(got, string(c.Level)+"/"+c.Title)
	}
	assert.Equal(t, []string{"beginner/A", "beginner/B", "intermediate/A", "advanced/Z", "expert/X"}, got)
}
