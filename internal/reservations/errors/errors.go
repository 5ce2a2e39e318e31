package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrTableNotFound = errors.New("table not found")

	ErrDuplicate = errors.New("reservation already exists for phone and date")

	ErrInvalidDateFormat = errors.New("invalid date format")

	ErrInvalidTime = errors.New("invalid time of day")

	ErrLockHeld = errors.New("slot is locked by another request")
)
