package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/teacher"
)

const teacherColumns = `id, name, email, school, phone, is_active, password_hash, created_at, updated_at, last_login`

type teacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	err := repo.db.GetContext(ctx, &t.ID, `
		INSERT INTO teachers (name, email, school, phone, is_active, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.Name, t.Email, t.School, t.Phone, t.IsActive, t.PasswordHash, t.CreatedAt, t.UpdatedAt, t.LastLogin,
	)
	if isUniqueViolation(err) {
		return teacher.Teacher{}, teacher.ErrEmailExists
	}
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) getBy(ctx context.Context, where string, arg interface{}) (teacher.Teacher, error) {
	var t teacher.Teacher
	err := repo.db.QueryRowxContext(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE `+where, arg).Scan(
		&t.ID, &t.Name, &t.Email, &t.School, &t.Phone, &t.IsActive, &t.PasswordHash, &t.CreatedAt, &t.UpdatedAt, &t.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "selecting teacher")
	}
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	return repo.getBy(ctx, "id = $1", id)
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string) (teacher.Teacher, error) {
	return repo.getBy(ctx, "LOWER(email) = LOWER($1)", email)
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE teachers
		SET password_hash = COALESCE($2, password_hash), is_active = $3, last_login = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, t.PasswordHash, t.IsActive, t.LastLogin, t.UpdatedAt,
	)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, t.ID)
}
