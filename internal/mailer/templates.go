package mailer

import (
	"fmt"
	"time"
)

// LocalDate formats t as YYYY/M/D in t's location. Month and day are not
// zero padded.
func LocalDate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%d/%d/%d", y, int(m), d)
}

// ResetEmail builds the password reset message for the given code.
// codeURL is the base URL the reset code is appended to.
func ResetEmail(to, codeURL, code string) Email {
	return Email{
		To:      to,
		Subject: "Password Reset Requested",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"To reset your password, visit:\n%s/%s\n\n"+
			"If you did not request this, you can safely ignore this email.", codeURL, code),
	}
}

// ConfirmEmail builds the address-confirmation message.
func ConfirmEmail(to, confirmURL string) Email {
	return Email{
		To:      to,
		Subject: "Confirm your email address",
		Body: fmt.Sprintf("Please confirm your email address by visiting:\n%s\n\n"+
			"If you did not register this account, you can ignore this email.", confirmURL),
	}
}

// PasswordChangedEmail builds the notification sent after a successful
// password reset. when is rendered as a local date.
func PasswordChangedEmail(to, username string, when time.Time) Email {
	return Email{
		To:      to,
		Subject: "Your password has been changed",
		Body: fmt.Sprintf("Hi %s,\n\nThe password for your account was changed on %s.\n\n"+
			"If this was not you, reset your password immediately and contact an administrator.", username, LocalDate(when)),
	}
}
