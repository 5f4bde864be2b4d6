// Package sockets is the bidirectional RPC gateway: it accepts persistent
// connections, binds each to a session identity, and dispatches named
// procedure calls into the service layer under a uniform contract of
// validation, authorization gating, and deprecation tracking.
package sockets

// Session is the per-connection identity attached to every inbound call.
// It is owned by the transport and read-only to procedure handlers.
type Session struct {
	// UID is the authenticated user id; 0 means anonymous.
	UID int64
	// IP is the remote address of the connection.
	IP string
	// ChannelID identifies the connection; one user may hold several.
	ChannelID string
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UID > 0
}
