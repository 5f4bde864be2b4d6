package repository

import (
	"context"
	"database/sql"

	"github.com/NaderBhrr/NodeBB/internal/moderation/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a moderation note repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append persists the note. The note must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Append(ctx context.Context, n *domain.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO moderation_notes (id, target_uid, author_uid, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.TargetUID, n.AuthorUID, n.Content, n.CreatedAt)
	return err
}

// ListByTarget returns notes for the target user, newest first.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByTarget(ctx context.Context, targetUID int64, limit, offset int32) ([]*domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, target_uid, author_uid, content, created_at
		FROM moderation_notes
		WHERE target_uid = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, targetUID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.TargetUID, &n.AuthorUID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
