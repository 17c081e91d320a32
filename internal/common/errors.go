// Package common defines sentinel errors and small helpers shared by the
// LoanDesk stores, services and surfaces. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Auth errors.
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors (invalid, malformed or expired bearer token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Application errors.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")

	// ErrStorageFailure wraps persistence I/O or decode failures surfaced
	// from mutating operations.
	ErrStorageFailure = errors.New("storage failure")
)
