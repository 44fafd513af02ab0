package domain

import (
	"errors"
	"time"
)

var (
	ErrOTPNotFound = errors.New("no OTP issued for this email")
	ErrOTPExpired  = errors.New("OTP has expired")
	ErrOTPMismatch = errors.New("OTP does not match")
)

// OTPCode is a live one-time code for an email address. At most one record
// exists per email; a new issue replaces any previous one.
type OTPCode struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// EmailVerification mirrors a verification token server-side. A signup (or
// password change) is only authorized while a matching mirror row exists and
// its timestamp is within the verification window.
type EmailVerification struct {
	Email     string
	Token     string
	CreatedAt time.Time
}
