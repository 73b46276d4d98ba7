// Package unlock implements the unlock gate for gated content entities.
// Point-gated entities unlock automatically when the learner's permanent
// points total crosses their threshold; gem-gated entities are unlocked
// by an explicit, consumptive gem spend. Unlocks are permanent outside an
// explicit progress reset.
package unlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/store"
)

// ErrNotGemGated indicates a gem spend was attempted on an entity that is
// not gated behind gems.
var ErrNotGemGated = errors.New("entity is not gem-gated")

// Gate is the unlock gate service.
type Gate struct {
	entityStore store.EntityStore
	ledger      *reward.Ledger
	clock       clock.Clock
	logger      *slog.Logger
}

// NewGate creates an unlock gate. The ledger is attached after
// construction with SetLedger because the ledger itself needs the gate
// for post-award re-evaluation.
func NewGate(entityStore store.EntityStore, clk clock.Clock, logger *slog.Logger) *Gate {
	if entityStore == nil {
		panic("entityStore cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		entityStore: entityStore,
		clock:       clk,
		logger:      logger.With(slog.String("component", "unlock_gate")),
	}
}

// SetLedger wires the reward ledger used for gem spending. Must be called
// once during startup, before any gem-gated unlock is served.
func (g *Gate) SetLedger(ledger *reward.Ledger) {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	g.ledger = ledger
}

// Reevaluate scans point-gated entities in ascending threshold order and
// unlocks every one whose threshold the new total meets. Returns the ids
// unlocked by this call. It never locks anything: points are permanent,
// so a met threshold stays met.
func (g *Gate) Reevaluate(ctx context.Context, tx *sql.Tx, userID uuid.UUID, totalPoints int) ([]string, error) {
	txStore := g.entityStore.WithTx(tx)

	entities, err := txStore.ListByCostType(ctx, domain.CostTypePoints)
	if err != nil {
		return nil, fmt.Errorf("failed to list point-gated entities: %w", err)
	}

	already, err := txStore.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}

	var unlocked []string
	now := g.clock.Now()
	for _, entity := range entities {
		if entity.RequiredPoints > totalPoints {
			// Ascending threshold order, nothing further can match.
			break
		}
		if entity.IsDefault() {
			continue
		}
		if _, ok := already[entity.ID]; ok {
			continue
		}

		if err := txStore.Unlock(ctx, userID, entity.ID, now); err != nil {
			return nil, fmt.Errorf("failed to unlock entity %s: %w", entity.ID, err)
		}
		unlocked = append(unlocked, entity.ID)

		g.logger.Info("unlocked point-gated entity",
			slog.String("user_id", userID.String()),
			slog.String("entity_id", entity.ID),
			slog.Int("threshold", entity.RequiredPoints),
			slog.Int("total_points", totalPoints))
	}

	return unlocked, nil
}

// SpendResult is the outcome of a gem-gated unlock.
type SpendResult struct {
	Entity          *domain.GatedEntity
	AlreadyUnlocked bool
	GemsSpent       int
	GemsRemaining   int
}

// UnlockWithGems unlocks a gem-gated entity by spending the required gems
// inside the caller's transaction. Unlocking an already unlocked entity
// is an idempotent success that spends nothing. A short gem balance
// returns reward.ErrInsufficientGems with no state changed.
func (g *Gate) UnlockWithGems(ctx context.Context, tx *sql.Tx, userID uuid.UUID, entityID string) (*SpendResult, error) {
	txStore := g.entityStore.WithTx(tx)

	entity, err := txStore.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}

	unlocked, err := txStore.IsUnlocked(ctx, userID, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to check unlock state: %w", err)
	}
	if unlocked {
		return &SpendResult{Entity: entity, AlreadyUnlocked: true}, nil
	}

	if entity.CostType != domain.CostTypeGems {
		return nil, fmt.Errorf("%w: %s", ErrNotGemGated, entityID)
	}

	progress, err := g.ledger.SpendGems(ctx, tx, userID, entity.RequiredGems, "unlock "+entityID)
	if err != nil {
		return nil, err
	}

	if err := txStore.Unlock(ctx, userID, entityID, g.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to unlock entity %s: %w", entityID, err)
	}

	g.logger.Info("unlocked gem-gated entity",
		slog.String("user_id", userID.String()),
		slog.String("entity_id", entityID),
		slog.Int("gems_spent", entity.RequiredGems),
		slog.Int("gems_remaining", progress.TotalGems))

	return &SpendResult{
		Entity:        entity,
		GemsSpent:     entity.RequiredGems,
		GemsRemaining: progress.TotalGems,
	}, nil
}

// EntityStatus pairs an entity definition with the learner's unlock state.
type EntityStatus struct {
	Entity     *domain.GatedEntity `json:"entity"`
	Unlocked   bool                `json:"unlocked"`
	UnlockedAt *time.Time          `json:"unlocked_at,omitempty"`
}

// UnlockState returns every gated entity with the learner's unlock state.
// Default entities always read as unlocked.
func (g *Gate) UnlockState(ctx context.Context, userID uuid.UUID) ([]*EntityStatus, error) {
	entities, err := g.entityStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	unlocked, err := g.entityStore.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}

	statuses := make([]*EntityStatus, 0, len(entities))
	for _, entity := range entities {
		status := &EntityStatus{Entity: entity}
		if entity.IsDefault() {
			status.Unlocked = true
		} else if at, ok := unlocked[entity.ID]; ok {
			status.Unlocked = true
			t := at
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// EntityState returns one entity with the learner's unlock state.
func (g *Gate) EntityState(ctx context.Context, userID uuid.UUID, entityID string) (*EntityStatus, error) {
	entity, err := g.entityStore.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}

	status := &EntityStatus{Entity: entity}
	if entity.IsDefault() {
		status.Unlocked = true
		return status, nil
	}

	unlocked, err := g.entityStore.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	if at, ok := unlocked[entityID]; ok {
		status.Unlocked = true
		t := at
		status.UnlockedAt = &t
	}

	return status, nil
}
