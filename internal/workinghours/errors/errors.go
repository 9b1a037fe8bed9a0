package errors

import "errors"

var (
	ErrNotFound = errors.New("working hours not found")

	ErrInvalidHours = errors.New("invalid working hours")
)
