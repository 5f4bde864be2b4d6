package reset

import "errors"

var (
	// ErrDisabled means password reset issuance has been administratively disabled.
	ErrDisabled = errors.New("password reset is disabled")
	// ErrInvalidEmail means no account exists for the given email address.
	// Callers must not surface this to end users; see Service.Send.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrCodeInvalid means the reset code does not exist, expired, or was already used.
	ErrCodeInvalid = errors.New("reset code not valid")
	// ErrPasswordTooShort means the replacement password fails the minimum length policy.
	ErrPasswordTooShort = errors.New("password too short")
)
