package repository

import (
	"context"

	"github.com/NaderBhrr/NodeBB/internal/users/domain"
)

// Repository defines persistence for user accounts and their relations.
type Repository interface {
	GetByUID(ctx context.Context, uid int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *domain.User) error
	// Delete removes the account and, via cascading constraints, its relations.
	Delete(ctx context.Context, uid int64) error
	UpdatePasswordHash(ctx context.Context, uid int64, hash string) error
	// UpdateSettings merges the given settings into the stored map and returns the merged result.
	UpdateSettings(ctx context.Context, uid int64, settings map[string]string) (map[string]string, error)
	SetTopicSort(ctx context.Context, uid int64, sort string) error
	SetCategorySort(ctx context.Context, uid int64, sort string) error
	SetGdprConsent(ctx context.Context, uid int64, consented bool) error
	SetEmailConfirmed(ctx context.Context, uid int64, confirmed bool) error

	Follow(ctx context.Context, followerUID, followedUID int64) error
	Unfollow(ctx context.Context, followerUID, followedUID int64) error
	IsFollowing(ctx context.Context, followerUID, followedUID int64) (bool, error)
}
