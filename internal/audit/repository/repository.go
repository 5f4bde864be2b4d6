package repository

import (
	"context"

	"github.com/NaderBhrr/NodeBB/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListByUID returns audit logs for the acting user, newest first, paginated by limit and offset.
	ListByUID(ctx context.Context, uid int64, limit, offset int32) ([]*domain.AuditLog, error)
	// ListByAction returns audit logs with the given action, newest first.
	ListByAction(ctx context.Context, action string, limit, offset int32) ([]*domain.AuditLog, error)
}
