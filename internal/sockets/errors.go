package sockets

import (
	"errors"

	"github.com/NaderBhrr/NodeBB/internal/reset"
)

// Gateway errors carry stable localization tokens as their message. Clients
// translate the token; no stack traces or internal detail crosses the wire.
var (
	ErrInvalidData                = errors.New("[[error:invalid-data]]")
	ErrNoPrivileges               = errors.New("[[error:no-privileges]]")
	ErrEmailConfirmationsDisabled = errors.New("[[error:email-confirmations-are-disabled]]")
	ErrInvalidEvent               = errors.New("[[error:invalid-event]]")
	ErrNoUser                     = errors.New("[[error:no-user]]")
	ErrCantDeleteAdmin            = errors.New("[[error:cant-delete-admin]]")
	ErrCantFollowSelf             = errors.New("[[error:you-cant-follow-yourself]]")
)

// wireMessage translates err into the token sent to the client. Known service
// errors map to their tokens; anything else passes through verbatim.
func wireMessage(err error) string {
	switch {
	case errors.Is(err, reset.ErrDisabled):
		return ErrNoPrivileges.Error()
	case errors.Is(err, reset.ErrCodeInvalid):
		return "[[error:reset-code-not-valid]]"
	case errors.Is(err, reset.ErrPasswordTooShort):
		return "[[reset_password:password_too_short]]"
	default:
		return err.Error()
	}
}
