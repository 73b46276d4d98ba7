package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is the generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrProgressNotFound indicates that the learner has no progress record yet.
	ErrProgressNotFound = fmt.Errorf("%w: user progress", ErrNotFound)

	// ErrReviewStateNotFound indicates that the requested word review state does not exist.
	ErrReviewStateNotFound = fmt.Errorf("%w: word review state", ErrNotFound)

	// ErrAchievementNotFound indicates that the achievement id is not in the seeded catalog.
	ErrAchievementNotFound = fmt.Errorf("%w: achievement", ErrNotFound)

	// ErrEntityNotFound indicates that the gated entity id is not in the seeded catalog.
	ErrEntityNotFound = fmt.Errorf("%w: gated entity", ErrNotFound)

	// ErrSectionNotFound indicates that the content section id is unknown.
	ErrSectionNotFound = fmt.Errorf("%w: section", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
