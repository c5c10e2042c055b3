package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email address not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrCodeMismatch       = errors.New("invalid verification code")
	ErrCodeAlreadyUsed    = errors.New("verification code already used")
	ErrDispatchFailed     = errors.New("notification dispatch failed")
	ErrPasswordUnchanged  = errors.New("new password must be different from current password")
	ErrGoogleAuthDisabled = errors.New("google auth is disabled")
	ErrContactNotFound    = errors.New("contact not found")
	ErrDebtNotFound       = errors.New("debt not found")
	ErrPhoneTaken         = errors.New("contact with this phone number already exists")
	ErrStorageDisabled    = errors.New("statement storage is disabled")
)

// ValidationError reports bad caller input. Handlers surface Error() verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ThrottledError is returned while an auth cooldown is active.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %s", e.RetryAfter.Round(time.Second))
}
