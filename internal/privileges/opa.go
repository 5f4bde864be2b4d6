package privileges

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	moderatorrepo "github.com/NaderBhrr/NodeBB/internal/privileges/repository"
	userdomain "github.com/NaderBhrr/NodeBB/internal/users/domain"
)

// Default Rego policy for user-edit decisions. Admins may edit anyone; users
// may edit themselves unless banned; global moderators may edit non-admins.
const defaultRegoPolicy = `package nodebb.privileges

default admin = false
default can_edit = false

admin if {
	input.caller.is_admin
}

can_edit if {
	admin
}

can_edit if {
	input.caller.uid == input.target.uid
	not input.caller.banned
}

can_edit if {
	input.caller.is_global_mod
	not input.target.is_admin
}
`

// UserLookup is the minimal user access needed to build policy input.
type UserLookup interface {
	GetByUID(ctx context.Context, uid int64) (*userdomain.User, error)
}

// OPAEvaluator evaluates user privileges using OPA Rego. The policy is
// compiled once at construction.
type OPAEvaluator struct {
	users      UserLookup
	moderators moderatorrepo.Repository
	compiler   *ast.Compiler
	compileErr error
}

// NewOPAEvaluator returns an OPA-based privilege evaluator.
func NewOPAEvaluator(users UserLookup, moderators moderatorrepo.Repository) *OPAEvaluator {
	e := &OPAEvaluator{users: users, moderators: moderators}
	e.compiler, e.compileErr = ast.CompileModules(map[string]string{"privileges.rego": defaultRegoPolicy})
	return e
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and evaluate the policy.
// Does not touch the database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	input := map[string]interface{}{
		"caller": map[string]interface{}{"uid": 0, "is_admin": false, "is_global_mod": false, "banned": false},
		"target": map[string]interface{}{"uid": 0, "is_admin": false},
	}
	_, err := e.evaluate(ctx, "data.nodebb.privileges.can_edit", input)
	return err
}

// IsAdmin reports whether uid is an administrator per the policy.
func (e *OPAEvaluator) IsAdmin(ctx context.Context, uid int64) (bool, error) {
	caller, err := e.users.GetByUID(ctx, uid)
	if err != nil {
		return false, err
	}
	input := map[string]interface{}{
		"caller": callerInput(caller),
		"target": map[string]interface{}{"uid": 0, "is_admin": false},
	}
	return e.evaluate(ctx, "data.nodebb.privileges.admin", input)
}

// CanEdit reports whether callerUID may edit targetUID's account per the policy.
func (e *OPAEvaluator) CanEdit(ctx context.Context, callerUID, targetUID int64) (bool, error) {
	caller, err := e.users.GetByUID(ctx, callerUID)
	if err != nil {
		return false, err
	}
	target, err := e.users.GetByUID(ctx, targetUID)
	if err != nil {
		return false, err
	}
	input := map[string]interface{}{
		"caller": callerInput(caller),
		"target": targetInput(target),
	}
	return e.evaluate(ctx, "data.nodebb.privileges.can_edit", input)
}

// ModeratesAny reports whether uid moderates at least one category.
func (e *OPAEvaluator) ModeratesAny(ctx context.Context, uid int64) (bool, error) {
	return e.moderators.IsModeratorOfAny(ctx, uid)
}

func (e *OPAEvaluator) evaluate(ctx context.Context, query string, input map[string]interface{}) (bool, error) {
	if e.compileErr != nil {
		return false, fmt.Errorf("compile policy: %w", e.compileErr)
	}
	q := rego.New(
		rego.Query(query),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query %q returned no result", query)
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy query %q returned non-boolean", query)
	}
	return allowed, nil
}

func callerInput(u *userdomain.User) map[string]interface{} {
	if u == nil {
		return map[string]interface{}{"uid": 0, "is_admin": false, "is_global_mod": false, "banned": false}
	}
	return map[string]interface{}{
		"uid":           u.UID,
		"is_admin":      u.IsAdmin,
		"is_global_mod": u.IsGlobalMod,
		"banned":        u.Banned,
	}
}

func targetInput(u *userdomain.User) map[string]interface{} {
	if u == nil {
		return map[string]interface{}{"uid": 0, "is_admin": false}
	}
	return map[string]interface{}{
		"uid":      u.UID,
		"is_admin": u.IsAdmin,
	}
}
