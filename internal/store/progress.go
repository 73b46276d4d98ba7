package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// ProgressStore defines the interface for the per-learner progress record
// (currency totals, streak). There is exactly one record per learner; it
// is created lazily by the reward ledger.
type ProgressStore interface {
	// Create saves a new progress record.
	// Returns ErrDuplicate if the learner already has one.
	Create(ctx context.Context, progress *domain.UserProgress) error

	// Get retrieves the learner's progress record without locking.
	// Returns ErrProgressNotFound if none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// GetForUpdate retrieves the progress record with a row-level lock
	// (SELECT ... FOR UPDATE). Every mutating reward path must go through
	// this inside a transaction so overlapping awards against the same
	// learner serialize instead of losing increments.
	// Returns ErrProgressNotFound if none exists yet.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// Update persists a modified progress record.
	// Returns ErrProgressNotFound if the record does not exist.
	Update(ctx context.Context, progress *domain.UserProgress) error

	// WithTx returns a ProgressStore bound to the given transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
