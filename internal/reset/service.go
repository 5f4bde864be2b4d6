// Package reset implements the password-reset flow: issuance of single-use
// codes by email, and committing a new password against a code. Issuance is
// rate limited per email and always replies behind a fixed cooldown so the
// response carries no signal about whether the email is registered.
package reset

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NaderBhrr/NodeBB/internal/audit"
	"github.com/NaderBhrr/NodeBB/internal/hooks"
	"github.com/NaderBhrr/NodeBB/internal/mailer"
	"github.com/NaderBhrr/NodeBB/internal/rate"
	"github.com/NaderBhrr/NodeBB/internal/security"
	"github.com/NaderBhrr/NodeBB/internal/users/domain"
)

// minPasswordLength is the shortest replacement password Commit accepts.
const minPasswordLength = 6

// UserStore is the slice of the user repository the reset flow needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUID(ctx context.Context, uid int64) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, uid int64, hash string) error
	SetEmailConfirmed(ctx context.Context, uid int64, confirmed bool) error
}

// SendLimiter bounds issuance attempts per email address.
type SendLimiter interface {
	Allow(ctx context.Context, identifier string) error
}

// Config holds reset flow tuning.
type Config struct {
	// Disabled administratively turns off issuance; Send fails with ErrDisabled.
	Disabled bool
	// Cooldown is the fixed delay imposed before Send returns, success or not.
	Cooldown time.Duration
	// CodeTTL is how long an issued code stays valid.
	CodeTTL time.Duration
	// PublicURL is the forum base URL used in the reset email link.
	PublicURL string
}

// Service coordinates storage, rate limiting, hashing, audit, and email for
// the reset flow.
type Service struct {
	users   UserStore
	store   Store
	limiter SendLimiter
	hasher  *security.Hasher
	mailer  mailer.Mailer
	audit   audit.AuditLogger
	hooks   hooks.Dispatcher
	config  Config

	// sleep is replaceable in tests; nil means real time.
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

// NewService wires a reset Service from its collaborators. auditLogger and
// dispatcher may be nil; those concerns then degrade to no-ops.
func NewService(users UserStore, store Store, limiter SendLimiter, hasher *security.Hasher, m mailer.Mailer, auditLogger audit.AuditLogger, dispatcher hooks.Dispatcher, cfg Config) *Service {
	return &Service{
		users:   users,
		store:   store,
		limiter: limiter,
		hasher:  hasher,
		mailer:  m,
		audit:   auditLogger,
		hooks:   dispatcher,
		config:  cfg,
		now:     time.Now,
	}
}

// Send issues a reset code for email and mails it to the account owner.
// Every outcome, including errors, is delayed by the configured cooldown so
// callers cannot time-probe for registered addresses. Issuance failures are
// audit-logged; the two expected kinds, unknown email and rate limiting, are
// then swallowed so the response does not reveal whether the email exists.
// Any other failure propagates.
func (s *Service) Send(ctx context.Context, callerUID int64, email, ip string) error {
	defer s.cooldown(ctx)

	if s.config.Disabled {
		return ErrDisabled
	}

	uid, err := s.issue(ctx, email)
	status := "ok"
	if err != nil {
		status = err.Error()
	}
	s.logEvent(ctx, callerUID, uid, audit.ActionPasswordResetRequested, ip,
		fmt.Sprintf(`{"email":%q,"status":%q}`, email, status))

	// Swallow only the two expected issuance failures. Everything else is a
	// real fault the caller should see.
	if err == ErrInvalidEmail || err == rate.ErrRateLimited {
		log.Printf("reset: issuance for %s suppressed: %v", email, err)
		return nil
	}
	return err
}

func (s *Service) issue(ctx context.Context, email string) (int64, error) {
	if err := s.limiter.Allow(ctx, strings.ToLower(email)); err != nil {
		return 0, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, ErrInvalidEmail
	}
	code := uuid.NewString()
	if err := s.store.Save(ctx, code, u.UID, s.config.CodeTTL); err != nil {
		return u.UID, err
	}
	if err := s.mailer.Send(ctx, mailer.ResetEmail(u.Email, s.config.PublicURL+"/reset", code)); err != nil {
		return u.UID, err
	}
	return u.UID, nil
}

// Commit sets a new password for the account the code was issued to and
// invalidates the code. Resolving the code's owner, committing the password,
// and notifying hooks run concurrently; all three are awaited before the
// audit entry is written. The "password changed" notification email is
// fire-and-forget and cannot fail the commit.
func (s *Service) Commit(ctx context.Context, code, password, ip string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var (
		wg          sync.WaitGroup
		resolvedUID int64
		resolveErr  error
		commitUID   int64
		commitErr   error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		resolvedUID, resolveErr = s.store.Resolve(ctx, code)
	}()
	go func() {
		defer wg.Done()
		commitUID, commitErr = s.commit(ctx, code, password)
	}()
	go func() {
		defer wg.Done()
		if s.hooks == nil {
			return
		}
		if err := s.hooks.Fire(ctx, hooks.Event{Name: "action:password.reset"}); err != nil {
			log.Printf("reset: hook dispatch failed: %v", err)
		}
	}()
	wg.Wait()

	if commitErr != nil {
		return commitErr
	}
	// Both derive from the same code; prefer the uid the commit acted on.
	uid := commitUID
	if uid == 0 {
		uid = resolvedUID
	}
	if resolveErr != nil && resolveErr != ErrCodeInvalid {
		log.Printf("reset: resolve during commit failed: %v", resolveErr)
	}

	s.logEvent(ctx, uid, uid, audit.ActionPasswordReset, ip, "")
	s.notifyPasswordChanged(ctx, uid)
	return nil
}

func (s *Service) commit(ctx context.Context, code, password string) (int64, error) {
	uid, err := s.store.Consume(ctx, code)
	if err != nil {
		return 0, err
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return uid, err
	}
	if err := s.users.UpdatePasswordHash(ctx, uid, hash); err != nil {
		return uid, err
	}
	// A completed reset proves the owner controls the email the code was sent to.
	if err := s.users.SetEmailConfirmed(ctx, uid, true); err != nil {
		return uid, err
	}
	return uid, nil
}

func (s *Service) notifyPasswordChanged(ctx context.Context, uid int64) {
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil || u == nil || u.Email == "" {
		if err != nil {
			log.Printf("reset: lookup for change notification failed: %v", err)
		}
		return
	}
	mailer.SendAsync(s.mailer, ctx, mailer.PasswordChangedEmail(u.Email, u.Username, s.now()))
}

func (s *Service) logEvent(ctx context.Context, uid, targetUID int64, action, ip, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, uid, targetUID, action, "user", ip, metadata)
}

func (s *Service) cooldown(ctx context.Context) {
	d := s.config.Cooldown
	if d <= 0 {
		return
	}
	if s.sleep != nil {
		s.sleep(ctx, d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
