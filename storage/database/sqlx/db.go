package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// withTx runs fn in a transaction, committed when fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

const (
	receiptLesson = "lesson"
	receiptGrade  = "grade"
)

type syncReceipt struct {
	Kind     string `db:"kind"`
	ObjectID int    `db:"object_id"`
}

// receipt returns the receipt recorded for the submission. ok is false when the submission is new.
func receipt(ctx context.Context, tx *sqlx.Tx, teacherID int, submissionID string) (r syncReceipt, ok bool, err error) {
	if submissionID == "" {
		return r, false, nil
	}
	err = tx.GetContext(ctx, &r,
		`SELECT kind, object_id FROM sync_receipts WHERE teacher_id = $1 AND submission_id = $2`, teacherID, submissionID)
	switch {
	case err == nil:
		return r, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return r, false, nil
	}
	return r, false, errors.Wrap(err, "selecting sync receipt")
}

func saveReceipt(ctx context.Context, tx *sqlx.Tx, teacherID int, submissionID, kind string, objectID int) error {
	if submissionID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sync_receipts (teacher_id, submission_id, kind, object_id) VALUES ($1, $2, $3, $4)`,
		teacherID, submissionID, kind, objectID)
	return errors.Wrap(err, "inserting sync receipt")
}
