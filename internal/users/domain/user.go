package domain

import "time"

// User represents a user account row. PasswordHash is never exposed through Public().
type User struct {
	UID            int64
	Username       string
	Userslug       string
	Email          string
	PasswordHash   string
	IsAdmin        bool
	IsGlobalMod    bool
	Banned         bool
	EmailConfirmed bool
	GdprConsent    bool
	TopicSort      string
	CategorySort   string
	Settings       map[string]string
	JoinedAt       time.Time
	UpdatedAt      time.Time
}

// View is the public projection of a user returned by lookup procedures.
// It carries no credentials and no email unless the viewer may see it.
type View struct {
	UID         int64  `json:"uid"`
	Username    string `json:"username"`
	Userslug    string `json:"userslug"`
	Email       string `json:"email,omitempty"`
	Banned      bool   `json:"banned"`
	JoinedAt    int64  `json:"joindate"`
	GdprConsent bool   `json:"gdpr_consent"`
}

// Public returns the view of u as seen by the caller. Email is included only
// when withEmail is true (self or privileged viewer).
func (u *User) Public(withEmail bool) *View {
	if u == nil {
		return nil
	}
	v := &View{
		UID:         u.UID,
		Username:    u.Username,
		Userslug:    u.Userslug,
		Banned:      u.Banned,
		JoinedAt:    u.JoinedAt.UnixMilli(),
		GdprConsent: u.GdprConsent,
	}
	if withEmail {
		v.Email = u.Email
	}
	return v
}
