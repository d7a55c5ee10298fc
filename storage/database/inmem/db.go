package inmemdb

import (
	"sync"
	"time"

	"github.com/trezcool/mwalimu/core/gradebook"
	"github.com/trezcool/mwalimu/core/lessonplan"
	"github.com/trezcool/mwalimu/core/resource"
	"github.com/trezcool/mwalimu/core/teacher"
	"github.com/trezcool/mwalimu/core/training"
)

const (
	receiptLesson = "lesson"
	receiptGrade  = "grade"
)

type (
	// DB is an in-memory database, used in DEV mode & tests.
	DB struct {
		teacher  *teacherTable
		student  *studentTable
		lesson   *lessonTable
		resource *resourceTable
		training *trainingTable
		receipt  *receiptTable
	}

	teacherTable struct {
		mutex sync.RWMutex
		pk    int
		table map[int]teacher.Teacher
	}

	studentTable struct {
		mutex sync.RWMutex
		pk    int
		table map[int]studentRow
		locks map[int]*sync.Mutex // per student, serializes assignment appends
	}

	studentRow struct {
		student     gradebook.Student
		assignments []gradebook.Assignment
	}

	lessonTable struct {
		mutex sync.RWMutex
		pk    int
		table map[int]lessonplan.Lesson
	}

	resourceTable struct {
		mutex sync.RWMutex
		table map[int]resource.Resource
	}

	trainingTable struct {
		mutex    sync.RWMutex
		courses  map[int]training.Course
		progress map[progressKey]training.Progress
	}

	progressKey struct {
		teacherID int
		courseID  int
	}

	receiptTable struct {
		mutex sync.Mutex
		table map[receiptKey]receipt
	}

	receipt struct {
		kind     string
		objectID int
	}

	receiptKey struct {
		teacherID    int
		submissionID string
	}
)

// NewDB returns an empty database with the resources & training catalogue loaded.
func NewDB() *DB {
	db := &DB{
		teacher:  &teacherTable{table: make(map[int]teacher.Teacher)},
		student:  &studentTable{table: make(map[int]studentRow), locks: make(map[int]*sync.Mutex)},
		lesson:   &lessonTable{table: make(map[int]lessonplan.Lesson)},
		resource: &resourceTable{table: make(map[int]resource.Resource)},
		training: &trainingTable{courses: make(map[int]training.Course), progress: make(map[progressKey]training.Progress)},
		receipt:  &receiptTable{table: make(map[receiptKey]receipt)},
	}
	db.seed()
	return db
}

func (db *DB) seed() {
	created := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	for i, r := range []resource.Resource{
		{
			Title: "Primary Mathematics Grade 4", Type: resource.TypeTextbook, Subject: "mathematics",
			Grade: resource.GradeRange{Min: 4, Max: 4}, Description: "CBC-aligned digital textbook with interactive exercises",
			FilePath: "/resources/math-grade4.pdf", FileSize: 2048576, OfflineAvailable: true, DownloadCount: 156,
		},
		{
			Title: "Simple Science Experiments", Type: resource.TypeVideo, Subject: "science",
			Grade: resource.GradeRange{Min: 3, Max: 5}, Description: "Video collection of experiments using local materials",
			FilePath: "/resources/science-experiments.mp4", FileSize: 524288000, OfflineAvailable: true, DownloadCount: 89,
		},
		{
			Title: "English Comprehension Worksheets", Type: resource.TypeWorksheet, Subject: "english",
			Grade: resource.GradeRange{Min: 2, Max: 2}, Description: "Printable worksheets for reading comprehension practice",
			FilePath: "/resources/english-worksheets.pdf", FileSize: 1048576, OfflineAvailable: true, DownloadCount: 203,
		},
	} {
		r.ID = i + 1
		r.CreatedAt = created
		db.resource.table[r.ID] = r
	}

	for i, c := range []training.Course{
		{
			Title:       "Classroom Management in Large Classes",
			Description: "Learn effective strategies for managing overcrowded classrooms and maintaining student engagement.",
			Duration:    45,
			Level:       training.LevelBeginner,
			Modules: []string{
				"Understanding classroom dynamics",
				"Effective grouping strategies",
				"Maintaining attention and engagement",
				"Managing resources and materials",
			},
		},
		{
			Title:       "Using Technology in Rural Classrooms",
			Description: "Maximize teaching effectiveness with minimal technology resources and offline tools.",
			Duration:    60,
			Level:       training.LevelIntermediate,
			Modules: []string{
				"Offline teaching tools",
				"Mobile-first approaches",
				"Digital resource management",
				"Student engagement techniques",
			},
		},
		{
			Title:       "CBC Assessment Strategies",
			Description: "Master competency-based assessment methods and align with new curriculum standards.",
			Duration:    90,
			Level:       training.LevelAdvanced,
			Modules: []string{
				"Understanding CBC framework",
				"Designing competency assessments",
				"Rubric development",
				"Progress tracking methods",
			},
		},
	} {
		c.ID = i + 1
		db.training.courses[c.ID] = c
	}
}

// receiptFor returns the receipt recorded for the submission, if any. Callers hold db.receipt.mutex.
func (db *DB) receiptFor(teacherID int, submissionID string) (receipt, bool) {
	if submissionID == "" {
		return receipt{}, false
	}
	r, ok := db.receipt.table[receiptKey{teacherID, submissionID}]
	return r, ok
}

func (db *DB) saveReceipt(teacherID int, submissionID, kind string, objectID int) {
	if submissionID != "" {
		db.receipt.table[receiptKey{teacherID, submissionID}] = receipt{kind: kind, objectID: objectID}
	}
}
