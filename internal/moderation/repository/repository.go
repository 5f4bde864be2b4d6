package repository

import (
	"context"

	"github.com/NaderBhrr/NodeBB/internal/moderation/domain"
)

// Repository defines persistence for moderation notes.
type Repository interface {
	// Append stores a new note. Notes are never updated or deleted.
	Append(ctx context.Context, n *domain.Note) error
	// ListByTarget returns notes for the target user, newest first, paginated by limit and offset.
	ListByTarget(ctx context.Context, targetUID int64, limit, offset int32) ([]*domain.Note, error)
}
