package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// EntityStore defines the interface for gated content entities and
// per-learner unlock state. Entity definitions (and their thresholds)
// are seeded content; the engine only compares against them.
type EntityStore interface {
	// Get retrieves one gated entity definition.
	// Returns ErrEntityNotFound for ids outside the seeded catalog.
	Get(ctx context.Context, id string) (*domain.GatedEntity, error)

	// List returns all gated entities ordered by kind and position.
	List(ctx context.Context) ([]*domain.GatedEntity, error)

	// ListByCostType returns entities with the given cost type ordered by
	// ascending threshold, the order the unlock gate scans them in.
	ListByCostType(ctx context.Context, costType domain.CostType) ([]*domain.GatedEntity, error)

	// IsUnlocked reports whether the learner has unlocked the entity.
	// Default entities (zero thresholds) are always unlocked.
	IsUnlocked(ctx context.Context, userID uuid.UUID, entityID string) (bool, error)

	// ListUnlocked returns the ids of all entities the learner has
	// unlocked, mapped to the unlock time.
	ListUnlocked(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error)

	// Unlock records an unlock for the learner. Unlocking an already
	// unlocked entity is a no-op, which keeps the operation idempotent
	// under re-evaluation.
	Unlock(ctx context.Context, userID uuid.UUID, entityID string, at time.Time) error

	// CountUnlockedUnits returns how many learning units the learner has
	// unlocked, defaults included. Drives the exploration achievements.
	CountUnlockedUnits(ctx context.Context, userID uuid.UUID) (int, error)

	// RelockAll removes every unlock row for the learner. Default
	// entities stay available because they never needed a row. Only the
	// explicit progress reset calls this.
	RelockAll(ctx context.Context, userID uuid.UUID) error

	// WithTx returns an EntityStore bound to the given transaction.
	WithTx(tx *sql.Tx) EntityStore
}
