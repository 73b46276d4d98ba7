package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EntityKind identifies the kind of gated content.
type EntityKind string

// Possible gated entity kinds.
const (
	EntityKindUnit      EntityKind = "unit"
	EntityKindGameMode  EntityKind = "game_mode"
	EntityKindStorybook EntityKind = "storybook"
)

// CostType distinguishes the two unlock models: point thresholds are pure
// rank checks and never spend anything; gem costs are consumed on unlock.
type CostType string

// Possible cost types.
const (
	CostTypePoints CostType = "points"
	CostTypeGems   CostType = "gems"
)

// Common validation errors for GatedEntity.
var (
	ErrEmptyEntityID      = errors.New("gated entity ID cannot be empty")
	ErrInvalidEntityKind  = errors.New("invalid gated entity kind")
	ErrInvalidCostType    = errors.New("invalid gated entity cost type")
	ErrNegativeThreshold  = errors.New("unlock thresholds cannot be negative")
	ErrMixedEntityCost    = errors.New("gated entity must require points or gems, not both")
)

// GatedEntity is a content unit, game mode or storybook whose availability
// is gated behind a currency threshold. The definitions (and their
// thresholds) are seeded content; per-learner unlock state is tracked
// separately with EntityUnlock rows.
type GatedEntity struct {
	ID             string     `json:"id"`
	Kind           EntityKind `json:"kind"`
	Title          string     `json:"title"`
	CostType       CostType   `json:"cost_type"`
	RequiredPoints int        `json:"required_points"`
	RequiredGems   int        `json:"required_gems"`
	Position       int        `json:"position"` // display and evaluation order
}

// Validate checks if the GatedEntity has valid data.
func (e *GatedEntity) Validate() error {
	if e.ID == "" {
		return ErrEmptyEntityID
	}

	switch e.Kind {
	case EntityKindUnit, EntityKindGameMode, EntityKindStorybook:
	default:
		return ErrInvalidEntityKind
	}

	switch e.CostType {
	case CostTypePoints, CostTypeGems:
	default:
		return ErrInvalidCostType
	}

	if e.RequiredPoints < 0 || e.RequiredGems < 0 {
		return ErrNegativeThreshold
	}

	if e.RequiredPoints > 0 && e.RequiredGems > 0 {
		return ErrMixedEntityCost
	}

	return nil
}

// IsDefault reports whether the entity is available without any unlock,
// like the first learning unit. Default entities survive a progress reset.
func (e *GatedEntity) IsDefault() bool {
	return e.RequiredPoints == 0 && e.RequiredGems == 0
}

// EntityUnlock records that a learner has unlocked a gated entity.
// Existence of the row is the unlock; rows are only ever removed by an
// explicit progress reset.
type EntityUnlock struct {
	UserID     uuid.UUID `json:"user_id"`
	EntityID   string    `json:"entity_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
