package repository

import "context"

// Repository defines persistence for per-user uploads.
type Repository interface {
	// Delete removes the named upload owned by uid. Deleting a missing upload is not an error.
	Delete(ctx context.Context, uid int64, name string) error
}
