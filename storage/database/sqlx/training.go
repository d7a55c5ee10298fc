package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core/training"
)

type (
	trainingRepository struct {
		db *sqlx.DB
	}

	courseRow struct {
		ID          int            `db:"id"`
		Title       string         `db:"title"`
		Description string         `db:"description"`
		Duration    int            `db:"duration"`
		Level       string         `db:"level"`
		Modules     types.JSONText `db:"modules"`
	}

	progressRow struct {
		TeacherID   int       `db:"teacher_id"`
		CourseID    int       `db:"course_id"`
		Percentage  int       `db:"percentage"`
		Completed   bool      `db:"completed"`
		StartedAt   time.Time `db:"started_at"`
		CompletedAt null.Time `db:"completed_at"`
	}
)

func NewTrainingRepository(db *sqlx.DB) training.Repository {
	return &trainingRepository{db: db}
}

func (row courseRow) toCourse() (training.Course, error) {
	c := training.Course{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Duration:    row.Duration,
		Level:       training.Level(row.Level),
	}
	if err := row.Modules.Unmarshal(&c.Modules); err != nil {
		return training.Course{}, errors.Wrap(err, "decoding modules")
	}
	return c, nil
}

func (row progressRow) toProgress() training.Progress {
	p := training.Progress{
		TeacherID:   row.TeacherID,
		CourseID:    row.CourseID,
		Percentage:  row.Percentage,
		Completed:   row.Completed,
		StartedAt:   row.StartedAt.UTC(),
		CompletedAt: row.CompletedAt,
	}
	if p.CompletedAt.Valid {
		p.CompletedAt.Time = p.CompletedAt.Time.UTC()
	}
	return p
}

func (repo *trainingRepository) QueryCourses(ctx context.Context) ([]training.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT id, title, description, duration, level, modules FROM training_courses ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]training.Course, 0, len(rows))
	for _, row := range rows {
		c, err := row.toCourse()
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (repo *trainingRepository) GetCourse(ctx context.Context, id int) (training.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, title, description, duration, level, modules FROM training_courses WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return training.Course{}, training.ErrCourseNotFound
	}
	if err != nil {
		return training.Course{}, errors.Wrap(err, "selecting course")
	}
	return row.toCourse()
}

func (repo *trainingRepository) QueryProgress(ctx context.Context, teacherID int) ([]training.Progress, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT teacher_id, course_id, percentage, completed, started_at, completed_at
		FROM course_progress WHERE teacher_id = $1 ORDER BY course_id`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting progress")
	}
	progress := make([]training.Progress, 0, len(rows))
	for _, row := range rows {
		progress = append(progress, row.toProgress())
	}
	return progress, nil
}

func (repo *trainingRepository) SaveProgress(ctx context.Context, p training.Progress) (training.Progress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO course_progress (teacher_id, course_id, percentage, completed, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (teacher_id, course_id) DO UPDATE SET
			percentage   = EXCLUDED.percentage,
			completed    = EXCLUDED.completed,
			completed_at = CASE
				WHEN NOT EXCLUDED.completed THEN NULL
				ELSE COALESCE(course_progress.completed_at, EXCLUDED.completed_at)
			END
		RETURNING teacher_id, course_id, percentage, completed, started_at, completed_at`,
		p.TeacherID, p.CourseID, p.Percentage, p.Completed, p.StartedAt, p.CompletedAt,
	)
	if err != nil {
		return training.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return row.toProgress(), nil
}
