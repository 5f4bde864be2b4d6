package domain

import "time"

// Note is a moderation note appended to a target user's record.
// Notes are append-only: never mutated or removed.
type Note struct {
	ID        string
	TargetUID int64
	AuthorUID int64
	Content   string
	CreatedAt time.Time
}
