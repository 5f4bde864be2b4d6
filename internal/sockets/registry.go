package sockets

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc is one procedure body. It receives the caller's session and the
// raw payload, and returns a JSON-serializable result or an error carrying a
// localization token.
type HandlerFunc func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error)

// Procedure describes one named remote operation and its dispatch metadata.
type Procedure struct {
	Name    string
	Handler HandlerFunc
	// RequireLogin rejects anonymous sessions with ErrNoPrivileges before the
	// handler runs.
	RequireLogin bool
	// DeprecatedBy names the REST replacement (method and path) when the
	// procedure is legacy; empty means not deprecated.
	DeprecatedBy string
}

// Registry is the immutable set of procedures, assembled once at startup.
type Registry struct {
	procedures map[string]Procedure
	notifier   *DeprecationNotifier
}

// NewRegistry builds a Registry from the given procedures. Duplicate or empty
// names and nil handlers are construction errors, not runtime surprises.
func NewRegistry(notifier *DeprecationNotifier, procedures ...Procedure) (*Registry, error) {
	m := make(map[string]Procedure, len(procedures))
	for _, p := range procedures {
		if p.Name == "" || p.Handler == nil {
			return nil, fmt.Errorf("sockets: procedure %q is incomplete", p.Name)
		}
		if _, dup := m[p.Name]; dup {
			return nil, fmt.Errorf("sockets: duplicate procedure %q", p.Name)
		}
		m[p.Name] = p
	}
	return &Registry{procedures: m, notifier: notifier}, nil
}

// Names returns the registered procedure names, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		out = append(out, name)
	}
	return out
}

// Dispatch routes one call: deprecation notice first, then the auth gate,
// then the handler. The auth gate runs before any handler code so a rejected
// call never reaches an external service.
func (r *Registry) Dispatch(ctx context.Context, s *Session, name string, payload json.RawMessage) (interface{}, error) {
	p, ok := r.procedures[name]
	if !ok {
		return nil, ErrInvalidEvent
	}
	if p.DeprecatedBy != "" {
		r.notifier.Notify(ctx, p.Name, p.DeprecatedBy)
	}
	if p.RequireLogin && !s.Authenticated() {
		return nil, ErrNoPrivileges
	}
	return p.Handler(ctx, s, payload)
}
