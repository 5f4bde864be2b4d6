package repository

import (
	"context"
	"database/sql"

	"github.com/NaderBhrr/NodeBB/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, uid, target_uid, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UID, a.TargetUID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt)
	return err
}

// ListByUID returns audit logs for the acting user, newest first.
func (r *PostgresRepository) ListByUID(ctx context.Context, uid int64, limit, offset int32) ([]*domain.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, uid, target_uid, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE uid = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, uid, limit, offset)
}

// ListByAction returns audit logs with the given action, newest first.
func (r *PostgresRepository) ListByAction(ctx context.Context, action string, limit, offset int32) ([]*domain.AuditLog, error) {
	return r.list(ctx, `
		SELECT id, uid, target_uid, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE action = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, action, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		if err := rows.Scan(&a.ID, &a.UID, &a.TargetUID, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
