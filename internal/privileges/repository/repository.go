package repository

import "context"

// Repository defines persistence for category moderator assignments.
type Repository interface {
	// IsModeratorOfAny reports whether uid moderates at least one category.
	IsModeratorOfAny(ctx context.Context, uid int64) (bool, error)
	// ModeratedCategories returns the category ids uid moderates.
	ModeratedCategories(ctx context.Context, uid int64) ([]int64, error)
	// AddModerator assigns uid as a moderator of category cid. Idempotent.
	AddModerator(ctx context.Context, uid, cid int64) error
}
