package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/gradebook"
)

type (
	studentRepository struct {
		db *sqlx.DB
	}

	studentRow struct {
		ID           int       `db:"id"`
		TeacherID    int       `db:"teacher_id"`
		Name         string    `db:"name"`
		Grade        int       `db:"grade"`
		Class        string    `db:"class"`
		OverallGrade null.Int  `db:"overall_grade"`
		Status       string    `db:"status"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	assignmentRow struct {
		StudentID  int       `db:"student_id"`
		Position   int       `db:"position"`
		Title      string    `db:"title"`
		Score      int       `db:"score"`
		TotalMarks int       `db:"total_marks"`
		AssignedOn time.Time `db:"assigned_on"`
	}
)

const studentColumns = `id, teacher_id, name, grade, class, overall_grade, status, created_at, updated_at`

func NewStudentRepository(db *sqlx.DB) gradebook.Repository {
	return &studentRepository{db: db}
}

func (row studentRow) toStudent(assignments []assignmentRow) gradebook.Student {
	as := make([]gradebook.Assignment, 0, len(assignments))
	for _, a := range assignments {
		as = append(as, gradebook.Assignment{
			Title:      a.Title,
			Score:      a.Score,
			TotalMarks: a.TotalMarks,
			Date:       a.AssignedOn.UTC(),
		})
	}
	return gradebook.RestoreStudent(gradebook.Student{
		ID:        row.ID,
		TeacherID: row.TeacherID,
		Name:      row.Name,
		Grade:     row.Grade,
		Class:     row.Class,
		CreatedAt: row.CreatedAt.UTC(),
	}, as)
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s gradebook.Student) (gradebook.Student, error) {
	err := repo.db.GetContext(ctx, &s.ID, `
		INSERT INTO students (teacher_id, name, grade, class, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $5)
		RETURNING id`,
		s.TeacherID, s.Name, s.Grade, s.Class, s.CreatedAt,
	)
	if err != nil {
		return gradebook.Student{}, errors.Wrap(err, "inserting student")
	}
	return gradebook.RestoreStudent(s, nil), nil
}

// queryer is implemented by *sqlx.DB & *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func getStudent(ctx context.Context, q queryer, teacherID, id int, forUpdate bool) (gradebook.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND teacher_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var row studentRow
	if err := q.GetContext(ctx, &row, query, id, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gradebook.Student{}, gradebook.ErrStudentNotFound
		}
		return gradebook.Student{}, errors.Wrap(err, "selecting student")
	}

	var assignments []assignmentRow
	err := q.SelectContext(ctx, &assignments, `
		SELECT student_id, position, title, score, total_marks, assigned_on
		FROM assignments WHERE student_id = $1 ORDER BY position`, id)
	if err != nil {
		return gradebook.Student{}, errors.Wrap(err, "selecting assignments")
	}
	return row.toStudent(assignments), nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, teacherID, id int) (gradebook.Student, error) {
	return getStudent(ctx, repo.db, teacherID, id, false)
}

func (repo *studentRepository) QueryStudents(ctx context.Context, teacherID int) ([]gradebook.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+studentColumns+` FROM students WHERE teacher_id = $1 ORDER BY id`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	var assignments []assignmentRow
	err = repo.db.SelectContext(ctx, &assignments, `
		SELECT a.student_id, a.position, a.title, a.score, a.total_marks, a.assigned_on
		FROM assignments a JOIN students s ON s.id = a.student_id
		WHERE s.teacher_id = $1
		ORDER BY a.student_id, a.position`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	byStudent := make(map[int][]assignmentRow, len(rows))
	for _, a := range assignments {
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}

	students := make([]gradebook.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent(byStudent[row.ID]))
	}
	return students, nil
}

// AppendAssignment locks the student row for the duration of the transaction.
func (repo *studentRepository) AppendAssignment(
	ctx context.Context,
	teacherID, studentID int,
	a gradebook.Assignment,
	submissionID string,
) (res gradebook.AppendResult, err error) {
	err = withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		before, err := getStudent(ctx, tx, teacherID, studentID, true)
		if err != nil {
			return err
		}
		res.Before = before

		if r, ok, err := receipt(ctx, tx, teacherID, submissionID); err != nil {
			return err
		} else if ok {
			if r.Kind != receiptGrade || r.ObjectID != studentID {
				return core.NewSubmissionReusedError()
			}
			res.After, res.Replayed = before, true
			return nil
		}

		after, err := before.WithAssignment(a)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO assignments (student_id, position, title, score, total_marks, assigned_on)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			studentID, before.AssignmentCount(), a.Title, a.Score, a.TotalMarks, a.Date,
		)
		if err != nil {
			return errors.Wrap(err, "inserting assignment")
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE students SET overall_grade = $2, status = $3, updated_at = NOW() WHERE id = $1`,
			studentID, after.OverallGrade(), string(after.Status()),
		)
		if err != nil {
			return errors.Wrap(err, "updating student")
		}
		if err = saveReceipt(ctx, tx, teacherID, submissionID, receiptGrade, studentID); err != nil {
			return err
		}
		res.After = after
		return nil
	})
	if err != nil {
		return gradebook.AppendResult{}, err
	}
	return res, nil
}
