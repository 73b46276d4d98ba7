package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

// Status pairs a catalog entry with the learner's progress against it.
// Learners without a progress row read as zero progress.
type Status struct {
	Definition      *domain.AchievementDefinition `json:"definition"`
	CurrentProgress int                           `json:"current_progress"`
	UnlockedAt      *time.Time                    `json:"unlocked_at,omitempty"`
	ReadyToClaim    bool                          `json:"ready_to_claim"`
}

// All returns the learner's status for every catalog entry, in catalog
// order.
func (e *Engine) All(ctx context.Context, userID uuid.UUID) ([]*Status, error) {
	defs, err := e.achievementStore.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return e.statuses(ctx, userID, defs)
}

// ByCategory returns the learner's status for one category.
func (e *Engine) ByCategory(ctx context.Context, userID uuid.UUID, category domain.AchievementCategory) ([]*Status, error) {
	if !domain.ValidAchievementCategory(category) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAchievementCategory, category)
	}

	defs, err := e.achievementStore.ListDefinitionsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for %s: %w", category, err)
	}
	return e.statuses(ctx, userID, defs)
}

// Stats summarizes a learner's standing across the whole catalog.
type Stats struct {
	Total      int `json:"total"`
	Unlocked   int `json:"unlocked"`
	InProgress int `json:"in_progress"`
}

// Statistics returns catalog-wide counts for the learner.
func (e *Engine) Statistics(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	defs, err := e.achievementStore.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	progress, err := e.achievementStore.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement progress: %w", err)
	}

	stats := &Stats{Total: len(defs)}
	for _, def := range defs {
		p, ok := progress[def.ID]
		if !ok {
			continue
		}
		if p.IsUnlocked() {
			stats.Unlocked++
		} else if p.IsInProgress() {
			stats.InProgress++
		}
	}

	return stats, nil
}

func (e *Engine) statuses(ctx context.Context, userID uuid.UUID, defs []*domain.AchievementDefinition) ([]*Status, error) {
	progress, err := e.achievementStore.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievement progress: %w", err)
	}

	statuses := make([]*Status, 0, len(defs))
	for _, def := range defs {
		status := &Status{Definition: def}
		if p, ok := progress[def.ID]; ok {
			status.CurrentProgress = p.CurrentProgress
			status.UnlockedAt = p.UnlockedAt
			status.ReadyToClaim = p.IsReadyToClaim(def.TargetValue)
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}
