// Package common defines shared constants, sentinel errors and error kinds
// used across client and server layers of verikeep. Callers should use
// errors.Is to match these values and KindOf to classify them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("duplicate email")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Verification state machine errors.
	ErrorAlreadyRegistered  = errors.New("email already registered")
	ErrorAlreadyVerified    = errors.New("email already verified")
	ErrorCodeExpired        = errors.New("verification code has expired")
	ErrorInvalidCode        = errors.New("invalid verification code")
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorEmailNotVerified   = errors.New("email not verified")

	// Auth gate errors.
	ErrMissingToken    = errors.New("token is missing")
	ErrAccountNotFound = errors.New("account not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Notifier errors; never fail a state transition.
	ErrorNotificationFailed = errors.New("notification failed")
)
