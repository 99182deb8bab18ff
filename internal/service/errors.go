package service

import "errors"

// Engine errors. Callers compare with errors.Is; wrapped variants carry detail.
var (
	// ErrUserNotFound is returned by mutations when the acting user does not exist.
	// Read-side settings calls return empty results instead.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbiddenReference is returned when a vocabulary id is not owned by the acting user.
	ErrForbiddenReference = errors.New("vocabulary item does not belong to user")

	// ErrInvalidDurationUnit is returned when a duration carries an unknown unit.
	ErrInvalidDurationUnit = errors.New("invalid duration unit")

	// ErrNegativeDuration is returned when a duration magnitude is below zero.
	ErrNegativeDuration = errors.New("duration magnitude must not be negative")

	// ErrInvalidPageRequest is returned for a non-positive page or page size.
	ErrInvalidPageRequest = errors.New("invalid page request")

	// ErrInvalidSortField is returned when sorting by an unsupported field.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidDate is returned when a date or timestamp cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnknownKind is returned for a vocabulary kind outside status, priority, duration and type.
	ErrUnknownKind = errors.New("unknown vocabulary kind")

	// ErrInvalidItem is returned when a vocabulary item fails validation.
	ErrInvalidItem = errors.New("invalid vocabulary item")

	// ErrDuplicateItem is returned when the user already has an item of that kind with the same name.
	ErrDuplicateItem = errors.New("vocabulary item already exists")

	// ErrNotFound is returned when a task or item does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
)
