package repository

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an upload repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Delete removes the named upload row for uid. Missing rows are ignored.
func (r *PostgresRepository) Delete(ctx context.Context, uid int64, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE uid = $1 AND name = $2`, uid, name)
	return err
}
