// Package privileges evaluates what a calling user may do to a target user.
// Decisions are expressed as Rego policy evaluated in-process with OPA;
// category moderator membership comes from the privileges repository.
package privileges

import "context"

// Evaluator is the decision interface consumed by the socket gateway.
type Evaluator interface {
	// IsAdmin reports whether uid is an administrator.
	IsAdmin(ctx context.Context, uid int64) (bool, error)
	// CanEdit reports whether callerUID may edit targetUID's account.
	CanEdit(ctx context.Context, callerUID, targetUID int64) (bool, error)
	// ModeratesAny reports whether uid moderates at least one category.
	ModeratesAny(ctx context.Context, uid int64) (bool, error)
}
