package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/NaderBhrr/NodeBB/internal/audit/domain"
)

// fakeRepo implements repository.Repository for tests.
type fakeRepo struct {
	entries []*domain.AuditLog
	err     error
}

func (f *fakeRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, a)
	return nil
}

func (f *fakeRepo) ListByUID(ctx context.Context, uid int64, limit, offset int32) ([]*domain.AuditLog, error) {
	return f.entries, nil
}

func (f *fakeRepo) ListByAction(ctx context.Context, action string, limit, offset int32) ([]*domain.AuditLog, error) {
	return f.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &fakeRepo{}
	l := NewLogger(repo)

	l.LogEvent(context.Background(), 7, 9, ActionPasswordReset, "user", "203.0.113.5", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry ID should be set")
	}
	if e.UID != 7 || e.TargetUID != 9 {
		t.Errorf("uid/target = %d/%d, want 7/9", e.UID, e.TargetUID)
	}
	if e.Action != ActionPasswordReset || e.Resource != "user" {
		t.Errorf("action/resource = %q/%q", e.Action, e.Resource)
	}
	if e.IP != "203.0.113.5" {
		t.Errorf("ip = %q", e.IP)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogger_LogEvent_BestEffort(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	l := NewLogger(repo)

	// Must not panic or propagate the repo failure.
	l.LogEvent(context.Background(), 1, 0, "exists", "user", "", "")
}

func TestLogger_LogEvent_CancelledContext(t *testing.T) {
	repo := &fakeRepo{}
	l := NewLogger(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.LogEvent(ctx, 1, 0, ActionPasswordResetRequested, "user", "", "")

	// The write context is detached from the caller's, so the entry still lands.
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
}

func TestLogger_NilRepo(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), 1, 0, "exists", "user", "", "")

	l2 := NewLogger(nil)
	l2.LogEvent(context.Background(), 1, 0, "exists", "user", "", "")
}
