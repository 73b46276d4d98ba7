package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidAccuracy is returned when a session accuracy is outside [0, 1].
	ErrInvalidAccuracy = errors.New("accuracy must be between 0 and 1")

	// ErrInvalidSessionKind is returned when a practice session kind is not valid.
	ErrInvalidSessionKind = errors.New("invalid session kind")

	// ErrInvalidAchievementCategory is returned when an achievement category is not valid.
	ErrInvalidAchievementCategory = errors.New("invalid achievement category")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
