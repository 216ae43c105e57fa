package models

import "errors"

// Workflow error kinds. Services wrap these with context via fmt.Errorf and
// %w; callers test with errors.Is. All are recoverable: the front end
// returns to the prior menu.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidState     = errors.New("invalid state")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrValidation       = errors.New("validation failed")
)
