package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/lessonplan"
)

const lessonColumns = `id, teacher_id, title, subject, grade, duration, objectives, plan, ai_generated, created_at`

type (
	lessonRepository struct {
		db *sqlx.DB
	}

	lessonRow struct {
		ID          int                `db:"id"`
		TeacherID   int                `db:"teacher_id"`
		Title       string             `db:"title"`
		Subject     string             `db:"subject"`
		Grade       int                `db:"grade"`
		Duration    int                `db:"duration"`
		Objectives  types.JSONText     `db:"objectives"`
		Plan        types.NullJSONText `db:"plan"`
		AIGenerated bool               `db:"ai_generated"`
		CreatedAt   time.Time          `db:"created_at"`
	}
)

func NewLessonRepository(db *sqlx.DB) lessonplan.Repository {
	return &lessonRepository{db: db}
}

func (row lessonRow) toLesson() (lessonplan.Lesson, error) {
	l := lessonplan.Lesson{
		ID:          row.ID,
		TeacherID:   row.TeacherID,
		Title:       row.Title,
		Subject:     lessonplan.Subject(row.Subject),
		Grade:       row.Grade,
		Duration:    row.Duration,
		AIGenerated: row.AIGenerated,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if err := row.Objectives.Unmarshal(&l.Objectives); err != nil {
		return lessonplan.Lesson{}, errors.Wrap(err, "decoding objectives")
	}
	if l.Objectives == nil {
		l.Objectives = []string{}
	}
	if row.Plan.Valid {
		l.Plan = json.RawMessage(row.Plan.JSONText)
	}
	return l, nil
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, l lessonplan.Lesson, submissionID string) (lessonplan.Lesson, error) {
	objectives, err := json.Marshal(l.Objectives)
	if err != nil {
		return lessonplan.Lesson{}, errors.Wrap(err, "encoding objectives")
	}
	plan := types.NullJSONText{JSONText: types.JSONText(l.Plan), Valid: len(l.Plan) > 0}

	var created lessonplan.Lesson
	err = withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		r, ok, err := receipt(ctx, tx, l.TeacherID, submissionID)
		if err != nil {
			return err
		}
		if ok {
			if r.Kind != receiptLesson {
				return core.NewSubmissionReusedError()
			}
			created, err = getLesson(ctx, tx, l.TeacherID, r.ObjectID)
			return err
		}

		err = tx.GetContext(ctx, &l.ID, `
			INSERT INTO lesson_plans (teacher_id, title, subject, grade, duration, objectives, plan, ai_generated, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			l.TeacherID, l.Title, string(l.Subject), l.Grade, l.Duration, types.JSONText(objectives), plan, l.AIGenerated, l.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "inserting lesson")
		}
		created = l
		return saveReceipt(ctx, tx, l.TeacherID, submissionID, receiptLesson, l.ID)
	})
	if err != nil {
		return lessonplan.Lesson{}, err
	}
	return created, nil
}

func getLesson(ctx context.Context, q queryer, teacherID, id int) (lessonplan.Lesson, error) {
	var row lessonRow
	err := q.GetContext(ctx, &row, `SELECT `+lessonColumns+` FROM lesson_plans WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return lessonplan.Lesson{}, lessonplan.ErrLessonNotFound
	}
	if err != nil {
		return lessonplan.Lesson{}, errors.Wrap(err, "selecting lesson")
	}
	return row.toLesson()
}

func (repo *lessonRepository) GetLesson(ctx context.Context, teacherID, id int) (lessonplan.Lesson, error) {
	return getLesson(ctx, repo.db, teacherID, id)
}

func (repo *lessonRepository) QueryLessons(ctx context.Context, teacherID int, orderings []core.DBOrdering) ([]lessonplan.Lesson, error) {
	orderBy := core.OrderBy(orderings, lessonplan.LessonOrderings, "created_at DESC")

	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+lessonColumns+` FROM lesson_plans WHERE teacher_id = $1 ORDER BY `+orderBy+`, id DESC`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}

	lessons := make([]lessonplan.Lesson, 0, len(rows))
	for _, row := range rows {
		l, err := row.toLesson()
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}
