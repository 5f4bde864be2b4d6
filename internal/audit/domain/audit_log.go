package domain

import "time"

// AuditLog represents an audit event recorded by the gateway.
// UID is the acting user (0 for anonymous); TargetUID is the affected user
// when different from the actor (e.g. moderation notes, password resets).
type AuditLog struct {
	ID        string
	UID       int64
	TargetUID int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
