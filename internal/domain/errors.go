package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict (slug, order number).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompletedRequiresPaid is returned when an unpaid order would be marked completed.
	ErrCompletedRequiresPaid = errors.New("order must be paid before it can be completed")
)
