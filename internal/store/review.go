package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// ReviewStateStore defines the interface for per-word Leitner review
// state. Rows are created lazily on first review and never deleted.
type ReviewStateStore interface {
	// Create saves review state for a word the learner has not seen before.
	Create(ctx context.Context, state *domain.WordReviewState) error

	// Get retrieves the review state for a single word.
	// Returns ErrReviewStateNotFound if the learner has never reviewed it.
	Get(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error)

	// GetForUpdate retrieves the review state with a row-level lock.
	// Returns ErrReviewStateNotFound if the learner has never reviewed it.
	GetForUpdate(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error)

	// GetBatch retrieves review state for a set of words in one query.
	// Words without state are simply absent from the result map; that is
	// how new cards are detected.
	GetBatch(ctx context.Context, userID uuid.UUID, wordIDs []string) (map[string]*domain.WordReviewState, error)

	// Update persists a modified review state.
	// Returns ErrReviewStateNotFound if the record does not exist.
	Update(ctx context.Context, state *domain.WordReviewState) error

	// CountReviewed returns the number of distinct words the learner has
	// ever reviewed. Drives the learning-milestone achievements.
	CountReviewed(ctx context.Context, userID uuid.UUID) (int, error)

	// CountMastered returns the number of words currently in the top box.
	CountMastered(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a ReviewStateStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewStateStore
}
