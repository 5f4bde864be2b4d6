package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/NaderBhrr/NodeBB/internal/audit/domain"
	auditrepo "github.com/NaderBhrr/NodeBB/internal/audit/repository"
)

// Event names recorded by the password-reset flow.
const (
	ActionPasswordResetRequested = "password-reset-requested"
	ActionPasswordReset          = "password-reset"
)

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, uid, targetUID int64, action, resource, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
// Uses a background-derived context so an already-closed connection cannot drop the entry.
func (l *Logger) LogEvent(ctx context.Context, uid, targetUID int64, action, resource, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UID:       uid,
		TargetUID: targetUID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.repo.Create(writeCtx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
