package training

const (
	lessonMasterTarget     = 20  // saved lesson plans
	assessmentProTarget    = 100 // graded assignments
	innovationLeaderTarget = 10  // completed course modules

	cbcCourseTitle = "CBC Assessment Strategies"
)

// Badge is an achievement derived from the teacher's activity.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
	Progress    int    `json:"progress"` // 0-100
}

// Activity is what the teacher did outside of training.
type Activity struct {
	LessonPlans       int
	GradedAssignments int
}

// Badges computes the badges of a teacher. progress is keyed by course ID.
func Badges(act Activity, courses []Course, progress map[int]Progress) []Badge {
	var modules, cbc int
	for _, c := range courses {
		p, ok := progress[c.ID]
		if !ok {
			continue
		}
		modules += p.CompletedModules(c)
		if c.Title == cbcCourseTitle {
			cbc = p.Percentage
		}
	}

	return []Badge{
		newBadge("Lesson Master", "Created 20+ lesson plans", "🏆", ratio(act.LessonPlans, lessonMasterTarget)),
		newBadge("Assessment Pro", "Graded 100+ assignments", "📊", ratio(act.GradedAssignments, assessmentProTarget)),
		newBadge("Innovation Leader", "Complete 10 training modules", "🎯", ratio(modules, innovationLeaderTarget)),
		newBadge("CBC Expert", "Master CBC curriculum", "🌟", clamp(cbc)),
	}
}

func newBadge(name, desc, icon string, progress int) Badge {
	return Badge{Name: name, Description: desc, Icon: icon, Earned: progress >= 100, Progress: progress}
}

// ratio returns n out of target as a percentage, capped to 100.
func ratio(n, target int) int {
	return clamp(n * 100 / target)
}

func clamp(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
