package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NaderBhrr/NodeBB/internal/users/domain"
)

const userColumns = `uid, username, userslug, email, password_hash, is_admin, is_global_mod,
	banned, email_confirmed, gdpr_consent, topic_sort, category_sort, settings, joined_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUID returns the user for uid, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	return scanUser(row)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UsernameExists reports whether a user with the given username exists.
func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// EmailExists reports whether a user with the given email exists.
func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// Create persists the user. The uid is assigned by the database and written back to u.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	settings, err := json.Marshal(settingsOrEmpty(u.Settings))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.JoinedAt.IsZero() {
		u.JoinedAt = now
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, userslug, email, password_hash, is_admin, is_global_mod,
			banned, email_confirmed, gdpr_consent, topic_sort, category_sort, settings, joined_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING uid`,
		u.Username, u.Userslug, u.Email, u.PasswordHash, u.IsAdmin, u.IsGlobalMod,
		u.Banned, u.EmailConfirmed, u.GdprConsent, sortOrDefault(u.TopicSort, "newest_to_oldest"),
		sortOrDefault(u.CategorySort, "recently_replied"), settings, u.JoinedAt, now,
	).Scan(&u.UID)
}

// Delete removes the user row; follower rows, notes, and uploads cascade.
func (r *PostgresRepository) Delete(ctx context.Context, uid int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("users: delete: uid %d not found", uid)
	}
	return nil
}

// UpdatePasswordHash sets the stored password hash for uid.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, uid int64, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE uid = $1`, uid, hash)
	return err
}

// UpdateSettings merges settings into the stored jsonb map and returns the merged result.
func (r *PostgresRepository) UpdateSettings(ctx context.Context, uid int64, settings map[string]string) (map[string]string, error) {
	patch, err := json.Marshal(settingsOrEmpty(settings))
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = r.db.QueryRowContext(ctx, `
		UPDATE users SET settings = settings || $2::jsonb, updated_at = now()
		WHERE uid = $1
		RETURNING settings`, uid, patch).Scan(&raw)
	if err != nil {
		return nil, err
	}
	merged := map[string]string{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// SetTopicSort sets the per-user topic sort preference.
func (r *PostgresRepository) SetTopicSort(ctx context.Context, uid int64, sort string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET topic_sort = $2, updated_at = now() WHERE uid = $1`, uid, sort)
	return err
}

// SetCategorySort sets the per-user category sort preference.
func (r *PostgresRepository) SetCategorySort(ctx context.Context, uid int64, sort string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET category_sort = $2, updated_at = now() WHERE uid = $1`, uid, sort)
	return err
}

// SetGdprConsent records the GDPR consent flag for uid.
func (r *PostgresRepository) SetGdprConsent(ctx context.Context, uid int64, consented bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET gdpr_consent = $2, updated_at = now() WHERE uid = $1`, uid, consented)
	return err
}

// SetEmailConfirmed records the email confirmation flag for uid.
func (r *PostgresRepository) SetEmailConfirmed(ctx context.Context, uid int64, confirmed bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_confirmed = $2, updated_at = now() WHERE uid = $1`, uid, confirmed)
	return err
}

// Follow records that follower follows followed. Idempotent: re-following is a no-op.
func (r *PostgresRepository) Follow(ctx context.Context, followerUID, followedUID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO followers (follower_uid, followed_uid) VALUES ($1, $2)
		ON CONFLICT (follower_uid, followed_uid) DO NOTHING`, followerUID, followedUID)
	return err
}

// Unfollow removes the follow edge. Idempotent.
func (r *PostgresRepository) Unfollow(ctx context.Context, followerUID, followedUID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_uid = $1 AND followed_uid = $2`, followerUID, followedUID)
	return err
}

// IsFollowing reports whether follower currently follows followed.
func (r *PostgresRepository) IsFollowing(ctx context.Context, followerUID, followedUID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM followers WHERE follower_uid = $1 AND followed_uid = $2)`,
		followerUID, followedUID).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var rawSettings []byte
	err := row.Scan(&u.UID, &u.Username, &u.Userslug, &u.Email, &u.PasswordHash, &u.IsAdmin,
		&u.IsGlobalMod, &u.Banned, &u.EmailConfirmed, &u.GdprConsent, &u.TopicSort,
		&u.CategorySort, &rawSettings, &u.JoinedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Settings = map[string]string{}
	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, &u.Settings); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func settingsOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func sortOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
