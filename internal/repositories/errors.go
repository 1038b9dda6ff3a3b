package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrVersionConflict is returned when a cart was modified by another
	// request between load and save.
	ErrVersionConflict = errors.New("version conflict")
)
