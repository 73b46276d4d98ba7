package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// AchievementStore defines the interface for the seeded achievement
// catalog and per-learner achievement progress.
type AchievementStore interface {
	// GetDefinition retrieves one catalog entry.
	// Returns ErrAchievementNotFound for ids outside the seeded catalog.
	GetDefinition(ctx context.Context, id string) (*domain.AchievementDefinition, error)

	// ListDefinitions returns the whole catalog ordered by category and position.
	ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error)

	// ListDefinitionsByCategory returns catalog entries of one category
	// ordered by position.
	ListDefinitionsByCategory(ctx context.Context, category domain.AchievementCategory) ([]*domain.AchievementDefinition, error)

	// GetProgress retrieves the learner's progress against one catalog entry.
	// Returns ErrNotFound if the learner has no progress row yet.
	GetProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error)

	// GetProgressForUpdate retrieves progress with a row-level lock. The
	// unlock check-then-set runs under this lock so a reward can never be
	// granted twice for the same achievement.
	// Returns ErrNotFound if the learner has no progress row yet.
	GetProgressForUpdate(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error)

	// ListProgress returns all progress rows for a learner keyed by
	// achievement id.
	ListProgress(ctx context.Context, userID uuid.UUID) (map[string]*domain.AchievementProgress, error)

	// CreateProgress saves a new progress row.
	CreateProgress(ctx context.Context, progress *domain.AchievementProgress) error

	// UpdateProgress persists a modified progress row.
	// Returns ErrNotFound if the row does not exist.
	UpdateProgress(ctx context.Context, progress *domain.AchievementProgress) error

	// WithTx returns an AchievementStore bound to the given transaction.
	WithTx(tx *sql.Tx) AchievementStore
}
