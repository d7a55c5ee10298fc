package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core/resource"
)

const resourceColumns = `id, title, type, subject, grade_min, grade_max, description, file_path, file_size,
	offline_available, download_count, created_at`

type (
	resourceRepository struct {
		db *sqlx.DB
	}

	resourceRow struct {
		ID               int       `db:"id"`
		Title            string    `db:"title"`
		Type             string    `db:"type"`
		Subject          string    `db:"subject"`
		GradeMin         int       `db:"grade_min"`
		GradeMax         int       `db:"grade_max"`
		Description      string    `db:"description"`
		FilePath         string    `db:"file_path"`
		FileSize         int64     `db:"file_size"`
		OfflineAvailable bool      `db:"offline_available"`
		DownloadCount    int       `db:"download_count"`
		CreatedAt        time.Time `db:"created_at"`
	}
)

func NewResourceRepository(db *sqlx.DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (row resourceRow) toResource() resource.Resource {
	return resource.Resource{
		ID:               row.ID,
		Title:            row.Title,
		Type:             resource.Type(row.Type),
		Subject:          row.Subject,
		Grade:            resource.GradeRange{Min: row.GradeMin, Max: row.GradeMax},
		Description:      row.Description,
		FilePath:         row.FilePath,
		FileSize:         row.FileSize,
		OfflineAvailable: row.OfflineAvailable,
		DownloadCount:    row.DownloadCount,
		CreatedAt:        row.CreatedAt.UTC(),
	}
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter resource.QueryFilter) ([]resource.Resource, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		where = append(where, "subject = ?")
	}
	if filter.Grade != 0 {
		args = append(args, filter.Grade, filter.Grade)
		where = append(where, "grade_min <= ? AND grade_max >= ?")
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, "type = ?")
	}

	query := `SELECT ` + resourceColumns + ` FROM resources`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query = repo.db.Rebind(query + ` ORDER BY download_count DESC, id`)

	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting resources")
	}
	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.toResource())
	}
	return resources, nil
}

func (repo *resourceRepository) get(ctx context.Context, query string, id int) (resource.Resource, error) {
	var row resourceRow
	err := repo.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return resource.Resource{}, resource.ErrNotFound
	}
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "selecting resource")
	}
	return row.toResource(), nil
}

func (repo *resourceRepository) GetResource(ctx context.Context, id int) (resource.Resource, error) {
	return repo.get(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
}

func (repo *resourceRepository) IncrementDownloads(ctx context.Context, id int) (resource.Resource, error) {
	return repo.get(ctx,
		`UPDATE resources SET download_count = download_count + 1 WHERE id = $1 RETURNING `+resourceColumns, id)
}
