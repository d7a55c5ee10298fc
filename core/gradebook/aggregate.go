package gradebook

import (
	"github.com/trezcool/mwalimu/core"
)

// status thresholds, evaluated top-down
const (
	excellentThreshold    = 90
	goodThreshold         = 80
	needsSupportThreshold = 70
	passThreshold         = needsSupportThreshold
)

var errNoGradedStudents = core.NewEmptyInputError("no graded students to analyse")

// RecordAssignment appends a to the student's history and recomputes its overall grade & status.
func RecordAssignment(s Student, a Assignment) (Student, error) {
	return s.WithAssignment(a)
}

// OverallGrade returns round_half_up(Σscore / ΣtotalMarks × 100).
// ok is false when there is nothing to aggregate.
func OverallGrade(assignments []Assignment) (grade int, ok bool) {
	var score, total int
	for _, a := range assignments {
		score += a.Score
		total += a.TotalMarks
	}
	if total <= 0 {
		return 0, false
	}
	return core.RoundHalfUp(100*score, total), true
}

// StatusFor classifies an overall grade. Boundaries belong to the higher band.
func StatusFor(grade int) Status {
	switch {
	case grade >= excellentThreshold:
		return StatusExcellent
	case grade >= goodThreshold:
		return StatusGood
	case grade >= needsSupportThreshold:
		return StatusNeedsSupport
	default:
		return StatusAtRisk
	}
}

func aggregate(assignments []Assignment) (int, Status) {
	grade, ok := OverallGrade(assignments)
	if !ok {
		return 0, ""
	}
	return grade, StatusFor(grade)
}

// GradeDistribution is a histogram of overall grades over the A(>=90) B[80,90) C[70,80) D[60,70) E(<60) bands.
type GradeDistribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	E int `json:"E"`
}

func (d *GradeDistribution) add(grade int) {
	switch {
	case grade >= 90:
		d.A++
	case grade >= 80:
		d.B++
	case grade >= 70:
		d.C++
	case grade >= 60:
		d.D++
	default:
		d.E++
	}
}

type ClassAnalytics struct {
	ClassAverage      float64           `json:"classAverage"` // 1 decimal
	PassingRate       int               `json:"passingRate"`  // %
	AtRiskStudents    int               `json:"atRiskStudents"`
	TotalStudents     int               `json:"totalStudents"`
	GradeDistribution GradeDistribution `json:"gradeDistribution"`
}

// Analyse computes the class analytics over the graded students.
// Ungraded students are ignored; an EmptyInputError is returned when none is left.
func Analyse(students []Student) (ClassAnalytics, error) {
	var (
		res        ClassAnalytics
		sum, count int
		passing    int
	)
	for _, s := range students {
		if !s.IsGraded() {
			continue
		}
		count++
		sum += s.overallGrade
		if s.overallGrade >= passThreshold {
			passing++
		}
		if s.status == StatusAtRisk {
			res.AtRiskStudents++
		}
		res.GradeDistribution.add(s.overallGrade)
	}
	if count == 0 {
		return ClassAnalytics{}, errNoGradedStudents
	}

	res.TotalStudents = count
	res.ClassAverage = float64(core.RoundHalfUp(10*sum, count)) / 10
	res.PassingRate = core.RoundHalfUp(100*passing, count)
	return res, nil
}
