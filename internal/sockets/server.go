package sockets

import (
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenValidator checks a handshake token and returns the authenticated uid.
type TokenValidator interface {
	ValidateSocketToken(tokenString string) (int64, error)
}

// Server upgrades HTTP requests to socket connections and binds each to a
// Session. A missing or invalid handshake token downgrades the connection to
// anonymous instead of rejecting it; gated procedures still fail per call.
type Server struct {
	registry *Registry
	tokens   TokenValidator
	upgrader websocket.Upgrader
}

// NewServer builds a Server dispatching into registry. validator may be nil;
// every connection is then anonymous.
func NewServer(registry *Registry, validator TokenValidator) *Server {
	return &Server{
		registry: registry,
		tokens:   validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Session identity comes from the signed token, not the Origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles the websocket handshake.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := s.authenticate(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("sockets: upgrade failed: %v", err)
		return
	}

	session := &Session{
		UID:       uid,
		IP:        clientIP(r),
		ChannelID: uuid.NewString(),
	}
	client := newClient(conn, session, s.registry)
	client.run()
}

// authenticate extracts and validates the handshake token. Order: Authorization
// bearer header, then the token query parameter. Any failure means anonymous.
func (s *Server) authenticate(r *http.Request) int64 {
	if s.tokens == nil {
		return 0
	}
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return 0
	}
	uid, err := s.tokens.ValidateSocketToken(token)
	if err != nil {
		log.Printf("sockets: handshake token rejected: %v", err)
		return 0
	}
	return uid
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// clientIP prefers the first X-Forwarded-For hop, set by the fronting proxy,
// and falls back to the socket's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
