// Package hooks dispatches plugin hook events (e.g. action:password.reset)
// to out-of-process consumers. Publishing is best-effort and must never block
// or fail the procedure that fired the hook.
package hooks

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Event is one plugin hook firing.
type Event struct {
	// Name is the hook name (e.g. "action:password.reset").
	Name string `json:"name"`
	// UID is the user the hook concerns, 0 when not user-scoped.
	UID int64 `json:"uid"`
	// Data carries hook-specific fields.
	Data map[string]any `json:"data,omitempty"`
	// CreatedAt is when the hook fired, RFC3339.
	CreatedAt time.Time `json:"createdAt"`
}

// Dispatcher publishes hook events. Implementations must be safe for concurrent use.
type Dispatcher interface {
	Fire(ctx context.Context, event Event) error
}

// fireTimeout is the max time allowed for a single async dispatch. Used by FireAsync.
const fireTimeout = 5 * time.Second

// FireAsync runs Fire in a goroutine with a short timeout so the caller is not blocked.
// Use from procedure handlers for fire-and-forget hooks; errors are logged.
//
// dispatcher may be nil; FireAsync returns immediately without starting a goroutine.
// The goroutine detaches from the caller's context so connection teardown does not
// abort an in-flight dispatch.
func FireAsync(dispatcher Dispatcher, ctx context.Context, event Event) {
	if dispatcher == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	go func() {
		fireCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fireTimeout)
		defer cancel()
		if err := dispatcher.Fire(fireCtx, event); err != nil {
			log.Printf("hooks: async fire %s failed: %v", event.Name, err)
		}
	}()
}

// Marshal returns the wire form of an event (JSON). Shared by dispatchers and the worker.
func Marshal(event Event) ([]byte, error) {
	return json.Marshal(event)
}
