// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/service layers.
var (
	// ErrNotFound indicates the requested account or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., account already bound).
	ErrAlreadyExists = errors.New("already exists")

	// ErrSessionInvalid indicates the stored session lacks the tokens required for privileged calls.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrSolverNotConfigured indicates no verification solver endpoint is set for the account.
	ErrSolverNotConfigured = errors.New("solver not configured")
)
