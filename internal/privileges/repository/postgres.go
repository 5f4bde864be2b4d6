package repository

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a moderator repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// IsModeratorOfAny reports whether uid moderates at least one category.
func (r *PostgresRepository) IsModeratorOfAny(ctx context.Context, uid int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM category_moderators WHERE uid = $1)`, uid).Scan(&exists)
	return exists, err
}

// AddModerator assigns uid as a moderator of category cid. Idempotent.
func (r *PostgresRepository) AddModerator(ctx context.Context, uid, cid int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_moderators (uid, cid) VALUES ($1, $2) ON CONFLICT DO NOTHING`, uid, cid)
	return err
}

// ModeratedCategories returns the category ids uid moderates.
func (r *PostgresRepository) ModeratedCategories(ctx context.Context, uid int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cid FROM category_moderators WHERE uid = $1 ORDER BY cid`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, rows.Err()
}
