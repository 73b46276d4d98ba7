// Package achievement implements the achievement engine: evaluation of
// learner signals against the seeded achievement catalog, unlock with a
// single reward grant per achievement, and the explicit claim path.
//
// Progress is monotone: evaluation always receives current absolute
// counts, never deltas, and stored progress only moves towards the
// target. Granted rewards flow through the reward ledger, which re-runs
// unlock re-evaluation but never re-enters achievement evaluation.
package achievement

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

// Time-of-day windows for the special achievements, in local-clock hours.
// The night window wraps midnight.
const (
	earlyBirdFromHour = 5
	earlyBirdToHour   = 8
	nightOwlFromHour  = 22
	nightOwlToHour    = 2

	speedRunMaxSeconds = 60
	perfectSingleWords = 20
)

// Signals carries the absolute counts a single evaluation pass reads.
// Zero values are always safe: progress never regresses.
type Signals struct {
	WordsReviewed    int
	Sessions         int
	PerfectSessions  int
	Streak           int
	TotalPoints      int
	UnitsUnlocked    int // units explicitly unlocked, defaults excluded
	SectionsMastered int
	UnitsMastered    int

	// Session-scoped signals, meaningful only when a session was just
	// completed. SessionAt stays zero otherwise.
	SessionAt       time.Time
	SessionWords    int
	SessionSeconds  int
	SessionPerfect  bool
	SessionBirthday bool
}

// Unlocked describes one achievement unlocked during an evaluation pass.
type Unlocked struct {
	Definition       *domain.AchievementDefinition
	PointsAwarded    int
	GemsAwarded      int
	UnlockedEntities []string
}

// Engine is the achievement engine service. Mutating methods are
// transaction-scoped; the caller owns the transaction.
type Engine struct {
	achievementStore store.AchievementStore
	ledger           *reward.Ledger
	clock            clock.Clock
	logger           *slog.Logger
}

// NewEngine creates an achievement engine.
func NewEngine(
	achievementStore store.AchievementStore,
	ledger *reward.Ledger,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	if achievementStore == nil {
		panic("achievementStore cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		achievementStore: achievementStore,
		ledger:           ledger,
		clock:            clk,
		logger:           logger.With(slog.String("component", "achievement_engine")),
	}
}

// Evaluate runs the given signals against the catalog and returns the
// achievements unlocked by this pass. When categories are given, only
// those are evaluated; an empty list means the whole catalog.
func (e *Engine) Evaluate(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	sig Signals,
	categories ...domain.AchievementCategory,
) ([]*Unlocked, error) {
	defs, err := e.definitions(ctx, tx, categories)
	if err != nil {
		return nil, err
	}

	var unlocked []*Unlocked
	for _, def := range defs {
		value, err := signalValue(def, sig)
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			continue
		}

		result, err := e.UpdateProgress(ctx, tx, userID, def.ID, value)
		if err != nil {
			return nil, err
		}
		if result != nil {
			unlocked = append(unlocked, result)
		}
	}

	return unlocked, nil
}

// UpdateProgress records an absolute progress value against one catalog
// entry, clamped to the target and never decreasing. Reaching the target
// on a locked record unlocks it and grants its reward exactly once; the
// returned Unlocked is nil when nothing new was unlocked.
func (e *Engine) UpdateProgress(ctx context.Context, tx *sql.Tx, userID uuid.UUID, achievementID string, value int) (*Unlocked, error) {
	txStore := e.achievementStore.WithTx(tx)

	def, err := txStore.GetDefinition(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	progress, created, err := e.getOrCreateProgress(ctx, txStore, userID, achievementID)
	if err != nil {
		return nil, err
	}

	clamped := value
	if clamped > def.TargetValue {
		clamped = def.TargetValue
	}

	changed := false
	if clamped > progress.CurrentProgress {
		progress.CurrentProgress = clamped
		changed = true
	}

	var unlocked *Unlocked
	if !progress.IsUnlocked() && progress.CurrentProgress >= def.TargetValue {
		granted, err := e.grant(ctx, tx, userID, def, progress)
		if err != nil {
			return nil, err
		}
		unlocked = granted
		changed = true
	}

	if changed && !created {
		progress.UpdatedAt = e.clock.Now()
	}
	if changed || created {
		if err := txStore.UpdateProgress(ctx, progress); err != nil {
			return nil, fmt.Errorf("failed to update achievement progress: %w", err)
		}
	}

	return unlocked, nil
}

// ClaimResult is the outcome of an explicit claim.
type ClaimResult struct {
	Definition       *domain.AchievementDefinition
	UnlockedAt       time.Time
	PointsAwarded    int
	GemsAwarded      int
	UnlockedEntities []string
}

// Claim explicitly unlocks a ready-to-claim achievement. Returns
// ErrNotReadyToClaim when the target has not been reached and
// ErrAlreadyClaimed when the reward was already granted.
func (e *Engine) Claim(ctx context.Context, tx *sql.Tx, userID uuid.UUID, achievementID string) (*ClaimResult, error) {
	txStore := e.achievementStore.WithTx(tx)

	def, err := txStore.GetDefinition(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	progress, err := txStore.GetProgressForUpdate(ctx, userID, achievementID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotReadyToClaim, achievementID)
		}
		return nil, fmt.Errorf("failed to lock achievement progress: %w", err)
	}

	if progress.IsUnlocked() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, achievementID)
	}
	if progress.CurrentProgress < def.TargetValue {
		return nil, fmt.Errorf("%w: %s", ErrNotReadyToClaim, achievementID)
	}

	granted, err := e.grant(ctx, tx, userID, def, progress)
	if err != nil {
		return nil, err
	}

	progress.UpdatedAt = e.clock.Now()
	if err := txStore.UpdateProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update achievement progress: %w", err)
	}

	return &ClaimResult{
		Definition:       def,
		UnlockedAt:       *progress.UnlockedAt,
		PointsAwarded:    granted.PointsAwarded,
		GemsAwarded:      granted.GemsAwarded,
		UnlockedEntities: granted.UnlockedEntities,
	}, nil
}

// grant stamps the unlock time on the progress record and pushes the
// reward through the ledger. Callers hold the row lock and persist the
// record afterwards; the unlockedAt check-then-set under that lock is
// what makes the grant single-shot.
func (e *Engine) grant(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	def *domain.AchievementDefinition,
	progress *domain.AchievementProgress,
) (*Unlocked, error) {
	now := e.clock.Now()
	progress.UnlockedAt = &now

	var unlockedEntities []string
	if def.PointsReward > 0 {
		award, err := e.ledger.Award(ctx, tx, userID, def.PointsReward, "achievement "+def.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to grant achievement points: %w", err)
		}
		unlockedEntities = award.UnlockedEntities
	}
	if def.GemsReward > 0 {
		if _, err := e.ledger.AwardGems(ctx, tx, userID, def.GemsReward, "achievement "+def.ID); err != nil {
			return nil, fmt.Errorf("failed to grant achievement gems: %w", err)
		}
	}

	e.logger.Info("unlocked achievement",
		slog.String("user_id", userID.String()),
		slog.String("achievement_id", def.ID),
		slog.Int("points_reward", def.PointsReward),
		slog.Int("gems_reward", def.GemsReward))

	return &Unlocked{
		Definition:       def,
		PointsAwarded:    def.PointsReward,
		GemsAwarded:      def.GemsReward,
		UnlockedEntities: unlockedEntities,
	}, nil
}

func (e *Engine) definitions(
	ctx context.Context,
	tx *sql.Tx,
	categories []domain.AchievementCategory,
) ([]*domain.AchievementDefinition, error) {
	txStore := e.achievementStore.WithTx(tx)

	if len(categories) == 0 {
		defs, err := txStore.ListDefinitions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list achievements: %w", err)
		}
		return defs, nil
	}

	var defs []*domain.AchievementDefinition
	for _, category := range categories {
		if !domain.ValidAchievementCategory(category) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAchievementCategory, category)
		}
		catDefs, err := txStore.ListDefinitionsByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("failed to list achievements for %s: %w", category, err)
		}
		defs = append(defs, catDefs...)
	}
	return defs, nil
}

func (e *Engine) getOrCreateProgress(
	ctx context.Context,
	txStore store.AchievementStore,
	userID uuid.UUID,
	achievementID string,
) (progress *domain.AchievementProgress, created bool, err error) {
	progress, err = txStore.GetProgressForUpdate(ctx, userID, achievementID)
	if err == nil {
		return progress, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to lock achievement progress: %w", err)
	}

	fresh, err := domain.NewAchievementProgress(userID, achievementID, e.clock.Now())
	if err != nil {
		return nil, false, err
	}
	if err := txStore.CreateProgress(ctx, fresh); err != nil {
		if store.IsDuplicateError(err) {
			progress, err = txStore.GetProgressForUpdate(ctx, userID, achievementID)
			if err != nil {
				return nil, false, fmt.Errorf("failed to lock achievement progress after create: %w", err)
			}
			return progress, false, nil
		}
		return nil, false, fmt.Errorf("failed to create achievement progress: %w", err)
	}
	return fresh, true, nil
}

// signalValue maps a catalog entry to the signal value that advances it.
// The category switch is exhaustive over the closed category set; a
// definition with an unknown category is a data error, not a silent skip.
func signalValue(def *domain.AchievementDefinition, sig Signals) (int, error) {
	switch def.Category {
	case domain.CategoryLearning:
		return sig.WordsReviewed, nil

	case domain.CategoryPractice:
		return practiceValue(def, sig), nil

	case domain.CategoryStreak:
		return sig.Streak, nil

	case domain.CategoryPoints:
		return sig.TotalPoints, nil

	case domain.CategoryExploration:
		return explorationValue(def, sig), nil

	case domain.CategorySpecial:
		return specialValue(def, sig), nil

	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidAchievementCategory, def.Category)
	}
}

func practiceValue(def *domain.AchievementDefinition, sig Signals) int {
	switch def.ID {
	case "perfect_10":
		return sig.PerfectSessions
	case "perfect_single_20":
		if sig.SessionPerfect && sig.SessionWords >= perfectSingleWords {
			return 1
		}
		return 0
	default:
		return sig.Sessions
	}
}

func explorationValue(def *domain.AchievementDefinition, sig Signals) int {
	switch def.ID {
	case "unlock_unit_1":
		return sig.UnitsUnlocked
	case "complete_section_10":
		return sig.SectionsMastered
	case "complete_unit_1":
		return sig.UnitsMastered
	default:
		return 0
	}
}

func specialValue(def *domain.AchievementDefinition, sig Signals) int {
	if sig.SessionAt.IsZero() {
		return 0
	}

	switch def.ID {
	case "early_bird":
		hour := sig.SessionAt.Hour()
		if hour >= earlyBirdFromHour && hour < earlyBirdToHour {
			return 1
		}
	case "night_owl":
		hour := sig.SessionAt.Hour()
		if hour >= nightOwlFromHour || hour < nightOwlToHour {
			return 1
		}
	case "speed_run":
		if sig.SessionPerfect && sig.SessionWords > 0 && sig.SessionSeconds < speedRunMaxSeconds {
			return 1
		}
	case "birthday":
		if sig.SessionBirthday {
			return 1
		}
	}
	return 0
}
