package sockets

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NaderBhrr/NodeBB/internal/audit"
	"github.com/NaderBhrr/NodeBB/internal/mailer"
	moddomain "github.com/NaderBhrr/NodeBB/internal/moderation/domain"
	modrepo "github.com/NaderBhrr/NodeBB/internal/moderation/repository"
	"github.com/NaderBhrr/NodeBB/internal/privileges"
	"github.com/NaderBhrr/NodeBB/internal/unread"
	uploadsrepo "github.com/NaderBhrr/NodeBB/internal/uploads/repository"
	userdomain "github.com/NaderBhrr/NodeBB/internal/users/domain"
	usersrepo "github.com/NaderBhrr/NodeBB/internal/users/repository"
)

// ResetFlow is the slice of the password-reset service the gateway calls.
type ResetFlow interface {
	Send(ctx context.Context, callerUID int64, email, ip string) error
	Commit(ctx context.Context, code, password, ip string) error
}

// UnreadCounts is the slice of the unread aggregator the gateway calls.
type UnreadCounts interface {
	Counts(ctx context.Context, uid int64) (unread.Bundle, error)
	TopicCount(ctx context.Context, uid int64) (int64, error)
	ChatCount(ctx context.Context, uid int64) (int64, error)
}

// UserProcedures bundles the collaborators behind the user.* procedure
// namespace. The gateway holds no mutable domain state of its own; every
// mutation is delegated.
type UserProcedures struct {
	users      usersrepo.Repository
	privileges privileges.Evaluator
	reset      ResetFlow
	unread     UnreadCounts
	notes      modrepo.Repository
	uploads    uploadsrepo.Repository
	mailer     mailer.Mailer
	audit      audit.AuditLogger

	// emailConfirmationEnabled gates user.emailConfirm system-wide.
	emailConfirmationEnabled bool
	// publicURL is the forum base URL used in confirmation links.
	publicURL string
}

// NewUserProcedures wires the user.* namespace from its collaborators.
func NewUserProcedures(
	users usersrepo.Repository,
	priv privileges.Evaluator,
	resetFlow ResetFlow,
	unreadCounts UnreadCounts,
	notes modrepo.Repository,
	uploads uploadsrepo.Repository,
	m mailer.Mailer,
	auditLogger audit.AuditLogger,
	emailConfirmationEnabled bool,
	publicURL string,
) *UserProcedures {
	return &UserProcedures{
		users:                    users,
		privileges:               priv,
		reset:                    resetFlow,
		unread:                   unreadCounts,
		notes:                    notes,
		uploads:                  uploads,
		mailer:                   m,
		audit:                    auditLogger,
		emailConfirmationEnabled: emailConfirmationEnabled,
		publicURL:                publicURL,
	}
}

// Procedures returns every user.* procedure with its dispatch metadata.
func (p *UserProcedures) Procedures() []Procedure {
	return []Procedure{
		{Name: "user.exists", Handler: p.exists, DeprecatedBy: "HEAD /api/v3/users/bySlug/:userslug"},
		{Name: "user.deleteAccount", Handler: p.deleteAccount, RequireLogin: true},
		{Name: "user.emailExists", Handler: p.emailExists},
		{Name: "user.emailConfirm", Handler: p.emailConfirm, RequireLogin: true},
		{Name: "user.reset.send", Handler: p.resetSend},
		{Name: "user.reset.commit", Handler: p.resetCommit},
		{Name: "user.isFollowing", Handler: p.isFollowing},
		{Name: "user.follow", Handler: p.follow, RequireLogin: true},
		{Name: "user.unfollow", Handler: p.unfollow, RequireLogin: true},
		{Name: "user.saveSettings", Handler: p.saveSettings, RequireLogin: true},
		{Name: "user.setTopicSort", Handler: p.setTopicSort, RequireLogin: true},
		{Name: "user.setCategorySort", Handler: p.setCategorySort, RequireLogin: true},
		{Name: "user.getUnreadCount", Handler: p.getUnreadCount, DeprecatedBy: "GET /api/unread/total"},
		{Name: "user.getUnreadChatCount", Handler: p.getUnreadChatCount, DeprecatedBy: "GET /api/chats/unread"},
		{Name: "user.getUnreadCounts", Handler: p.getUnreadCounts, DeprecatedBy: "GET /api/unread/counts"},
		{Name: "user.getUserByUID", Handler: p.getUserByUID},
		{Name: "user.getUserByUsername", Handler: p.getUserByUsername},
		{Name: "user.getUserByEmail", Handler: p.getUserByEmail},
		{Name: "user.setModerationNote", Handler: p.setModerationNote, RequireLogin: true},
		{Name: "user.deleteUpload", Handler: p.deleteUpload, RequireLogin: true},
		{Name: "user.gdpr.consent", Handler: p.gdprConsent, RequireLogin: true},
		{Name: "user.gdpr.check", Handler: p.gdprCheck, RequireLogin: true},
	}
}

// decode unmarshals payload into v, mapping any malformation to ErrInvalidData.
func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return ErrInvalidData
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return ErrInvalidData
	}
	return nil
}

func (p *UserProcedures) exists(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decode(payload, &req); err != nil || req.Username == "" {
		return nil, ErrInvalidData
	}
	return p.users.UsernameExists(ctx, req.Username)
}

func (p *UserProcedures) deleteAccount(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	isAdmin, err := p.privileges.IsAdmin(ctx, s.UID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return nil, ErrCantDeleteAdmin
	}
	if err := p.users.Delete(ctx, s.UID); err != nil {
		return nil, err
	}
	p.logEvent(ctx, s, "user.deleteAccount", s.UID)
	return nil, nil
}

// logEvent records a mutation audit entry, deriving action and resource from
// the procedure name. Best-effort; a nil logger is a no-op.
func (p *UserProcedures) logEvent(ctx context.Context, s *Session, procedure string, targetUID int64) {
	if p.audit == nil {
		return
	}
	ar := audit.ParseProcedure(procedure)
	p.audit.LogEvent(ctx, s.UID, targetUID, ar.Action, ar.Resource, s.IP, "")
}

func (p *UserProcedures) emailExists(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(payload, &req); err != nil || req.Email == "" {
		return nil, ErrInvalidData
	}
	return p.users.EmailExists(ctx, req.Email)
}

func (p *UserProcedures) emailConfirm(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	if !p.emailConfirmationEnabled {
		return nil, ErrEmailConfirmationsDisabled
	}
	u, err := p.users.GetByUID(ctx, s.UID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Email == "" {
		return nil, ErrInvalidData
	}
	code := uuid.NewString()
	return nil, p.mailer.Send(ctx, mailer.ConfirmEmail(u.Email, p.publicURL+"/confirm/"+code))
}

func (p *UserProcedures) resetSend(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var email string
	if err := decode(payload, &email); err != nil {
		return nil, ErrInvalidData
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidData
	}
	return nil, p.reset.Send(ctx, s.UID, email, s.IP)
}

func (p *UserProcedures) resetCommit(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := decode(payload, &req); err != nil || req.Code == "" || req.Password == "" {
		return nil, ErrInvalidData
	}
	return nil, p.reset.Commit(ctx, req.Code, req.Password, s.IP)
}

func (p *UserProcedures) isFollowing(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		UID int64 `json:"uid"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, ErrInvalidData
	}
	if !s.Authenticated() || req.UID <= 0 {
		return false, nil
	}
	return p.users.IsFollowing(ctx, s.UID, req.UID)
}

func (p *UserProcedures) follow(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	target, err := p.followTarget(ctx, s, payload)
	if err != nil {
		return nil, err
	}
	return nil, p.users.Follow(ctx, s.UID, target)
}

func (p *UserProcedures) unfollow(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	target, err := p.followTarget(ctx, s, payload)
	if err != nil {
		return nil, err
	}
	return nil, p.users.Unfollow(ctx, s.UID, target)
}

func (p *UserProcedures) followTarget(ctx context.Context, s *Session, payload json.RawMessage) (int64, error) {
	var req struct {
		UID int64 `json:"uid"`
	}
	if err := decode(payload, &req); err != nil || req.UID <= 0 {
		return 0, ErrInvalidData
	}
	if req.UID == s.UID {
		return 0, ErrCantFollowSelf
	}
	u, err := p.users.GetByUID(ctx, req.UID)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, ErrNoUser
	}
	return req.UID, nil
}

func (p *UserProcedures) saveSettings(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		UID      int64             `json:"uid"`
		Settings map[string]string `json:"settings"`
	}
	if err := decode(payload, &req); err != nil || len(req.Settings) == 0 {
		return nil, ErrInvalidData
	}
	target := req.UID
	if target == 0 {
		target = s.UID
	}
	if target != s.UID {
		ok, err := p.privileges.CanEdit(ctx, s.UID, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoPrivileges
		}
	}
	return p.users.UpdateSettings(ctx, target, req.Settings)
}

func (p *UserProcedures) setTopicSort(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var sort string
	if err := decode(payload, &sort); err != nil || sort == "" {
		return nil, ErrInvalidData
	}
	return nil, p.users.SetTopicSort(ctx, s.UID, sort)
}

func (p *UserProcedures) setCategorySort(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var sort string
	if err := decode(payload, &sort); err != nil || sort == "" {
		return nil, ErrInvalidData
	}
	return nil, p.users.SetCategorySort(ctx, s.UID, sort)
}

func (p *UserProcedures) getUnreadCount(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	return p.unread.TopicCount(ctx, s.UID)
}

func (p *UserProcedures) getUnreadChatCount(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	return p.unread.ChatCount(ctx, s.UID)
}

func (p *UserProcedures) getUnreadCounts(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	return p.unread.Counts(ctx, s.UID)
}

func (p *UserProcedures) getUserByUID(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var uid int64
	if err := decode(payload, &uid); err != nil || uid <= 0 {
		return nil, ErrInvalidData
	}
	u, err := p.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return p.publicView(ctx, s, u)
}

func (p *UserProcedures) getUserByUsername(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var username string
	if err := decode(payload, &username); err != nil || username == "" {
		return nil, ErrInvalidData
	}
	u, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return p.publicView(ctx, s, u)
}

func (p *UserProcedures) getUserByEmail(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var email string
	if err := decode(payload, &email); err != nil || email == "" {
		return nil, ErrInvalidData
	}
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return p.publicView(ctx, s, u)
}

// publicView projects u for the calling session. Email is visible to the
// account owner and to administrators only.
func (p *UserProcedures) publicView(ctx context.Context, s *Session, u *userdomain.User) (interface{}, error) {
	if u == nil {
		return nil, ErrNoUser
	}
	withEmail := false
	if s.Authenticated() {
		if s.UID == u.UID {
			withEmail = true
		} else if isAdmin, err := p.privileges.IsAdmin(ctx, s.UID); err == nil && isAdmin {
			withEmail = true
		}
	}
	return u.Public(withEmail), nil
}

func (p *UserProcedures) setModerationNote(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		UID  int64  `json:"uid"`
		Note string `json:"note"`
	}
	if err := decode(payload, &req); err != nil || req.UID <= 0 || strings.TrimSpace(req.Note) == "" {
		return nil, ErrInvalidData
	}

	// Cheap privilege check first; only fall back to the broader moderator
	// scan when it denies.
	allowed, err := p.privileges.CanEdit(ctx, s.UID, req.UID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		allowed, err = p.privileges.ModeratesAny(ctx, s.UID)
		if err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, ErrNoPrivileges
	}

	note := &moddomain.Note{
		ID:        uuid.NewString(),
		TargetUID: req.UID,
		AuthorUID: s.UID,
		Content:   strings.TrimSpace(req.Note),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.notes.Append(ctx, note); err != nil {
		return nil, err
	}
	p.logEvent(ctx, s, "user.setModerationNote", req.UID)
	return nil, nil
}

func (p *UserProcedures) deleteUpload(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		UID  int64  `json:"uid"`
		Name string `json:"name"`
	}
	if err := decode(payload, &req); err != nil || req.Name == "" {
		return nil, ErrInvalidData
	}
	target := req.UID
	if target == 0 {
		target = s.UID
	}
	if target != s.UID {
		ok, err := p.privileges.CanEdit(ctx, s.UID, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoPrivileges
		}
	}
	return nil, p.uploads.Delete(ctx, target, req.Name)
}

func (p *UserProcedures) gdprConsent(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	if err := p.users.SetGdprConsent(ctx, s.UID, true); err != nil {
		return nil, err
	}
	p.logEvent(ctx, s, "user.gdpr.consent", s.UID)
	return nil, nil
}

// gdprCheck returns the consent flag for the requested uid. Non-administrators
// always get their own flag: the target uid is silently overridden rather than
// rejected, so nothing about other accounts leaks.
func (p *UserProcedures) gdprCheck(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
	var req struct {
		UID int64 `json:"uid"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, ErrInvalidData
	}
	target := req.UID
	if target == 0 {
		target = s.UID
	}
	if target != s.UID {
		isAdmin, err := p.privileges.IsAdmin(ctx, s.UID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			target = s.UID
		}
	}
	u, err := p.users.GetByUID(ctx, target)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNoUser
	}
	return u.GdprConsent, nil
}
