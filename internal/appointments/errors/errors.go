package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrTimeConflict = errors.New("appointment time conflicts with an existing appointment")

	ErrScopeLocked = errors.New("scheduling scope is being modified by a concurrent request")

	ErrInvalidTransition = errors.New("appointment status transition not allowed")
)
