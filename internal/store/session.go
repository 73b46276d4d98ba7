package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// SessionStore defines the interface for completed practice session
// records. Cumulative session signals are derived by counting rows here.
type SessionStore interface {
	// Create saves a completed session.
	Create(ctx context.Context, session *domain.PracticeSession) error

	// CountByUser returns the number of sessions the learner has completed.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// CountPerfect returns the number of sessions completed with 100% accuracy.
	CountPerfect(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a SessionStore bound to the given transaction.
	WithTx(tx *sql.Tx) SessionStore
}

// CatalogStore is the read-only view of the external word catalog the
// engine needs: which words belong to a section, in their catalog order,
// plus completion counts derived from review state. The engine never
// mutates catalog data.
type CatalogStore interface {
	// WordsInSection returns the word ids of a section in catalog order.
	// Returns ErrSectionNotFound for unknown sections.
	WordsInSection(ctx context.Context, sectionID string) ([]string, error)

	// CountSectionsMastered returns the number of sections whose every
	// word the learner has brought to the top box.
	CountSectionsMastered(ctx context.Context, userID uuid.UUID) (int, error)

	// CountUnitsMastered returns the number of units whose every section
	// the learner has mastered.
	CountUnitsMastered(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a CatalogStore bound to the given transaction, so
	// completion counts observe review-state writes made earlier in the
	// same transaction.
	WithTx(tx *sql.Tx) CatalogStore
}
