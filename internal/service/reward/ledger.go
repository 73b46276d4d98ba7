// Package reward implements the reward ledger: the single mutation path
// for a learner's points, gems and study streak. Points are a permanent
// threshold currency; gems are consumptive. Every award runs against a
// row-locked progress record and re-evaluates point-gated unlocks before
// the transaction commits.
package reward

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
	"github.com/lexora-app/mastery-api/internal/store"
)

// Fixed reward amounts. These are part of the observable contract.
const (
	DailyLoginPoints    = 2
	WeeklyStreakPoints  = 50
	SectionBrowsePoints = 5
	MasteredCardPoints  = 10
	FirstCorrectPoints  = 5
	QueueClearedPoints  = 15

	// MasteredPerGem is how many mastered cards earn one gem.
	MasteredPerGem = 10

	weeklyStreakEvery = 7
)

// AccuracyPoints returns the session completion award for an accuracy
// ratio in [0, 1]: 20 points at 90%+, 15 at 80%+, 10 at 60%+, else none.
func AccuracyPoints(accuracy float64) int {
	switch {
	case accuracy >= 0.9:
		return 20
	case accuracy >= 0.8:
		return 15
	case accuracy >= 0.6:
		return 10
	default:
		return 0
	}
}

// Reevaluator re-checks point-gated content against a new points total.
// Implemented by the unlock gate; the indirection keeps the ledger free
// of an unlock dependency.
type Reevaluator interface {
	Reevaluate(ctx context.Context, tx *sql.Tx, userID uuid.UUID, totalPoints int) ([]string, error)
}

// Ledger is the reward ledger service. All mutating methods are
// transaction-scoped: the caller owns the transaction and the ledger
// takes the learner's progress row lock inside it.
type Ledger struct {
	progressStore store.ProgressStore
	entityStore   store.EntityStore
	gate          Reevaluator
	clock         clock.Clock
	logger        *slog.Logger
}

// NewLedger creates a reward ledger.
func NewLedger(
	progressStore store.ProgressStore,
	entityStore store.EntityStore,
	gate Reevaluator,
	clk clock.Clock,
	logger *slog.Logger,
) *Ledger {
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if entityStore == nil {
		panic("entityStore cannot be nil")
	}
	if gate == nil {
		panic("gate cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Ledger{
		progressStore: progressStore,
		entityStore:   entityStore,
		gate:          gate,
		clock:         clk,
		logger:        logger.With(slog.String("component", "reward_ledger")),
	}
}

// AwardResult is the outcome of a points award.
type AwardResult struct {
	Progress         *domain.UserProgress
	PointsAwarded    int
	UnlockedEntities []string
}

// Award adds points to the learner's total and re-evaluates point-gated
// unlocks against the new total, all inside the caller's transaction.
// Non-positive amounts are a no-op that still reports current totals.
func (l *Ledger) Award(ctx context.Context, tx *sql.Tx, userID uuid.UUID, points int, reason string) (*AwardResult, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if points <= 0 {
		return &AwardResult{Progress: progress}, nil
	}

	progress.TotalPoints += points
	progress.UpdatedAt = l.clock.Now()

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	l.logger.Debug("awarded points",
		slog.String("user_id", userID.String()),
		slog.Int("points", points),
		slog.Int("total", progress.TotalPoints),
		slog.String("reason", reason))

	unlocked, err := l.gate.Reevaluate(ctx, tx, userID, progress.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to re-evaluate unlocks: %w", err)
	}

	return &AwardResult{
		Progress:         progress,
		PointsAwarded:    points,
		UnlockedEntities: unlocked,
	}, nil
}

// AwardGems adds gems to the learner's total. Gems never trigger unlock
// re-evaluation; gem-gated content is unlocked by explicit spending.
func (l *Ledger) AwardGems(ctx context.Context, tx *sql.Tx, userID uuid.UUID, gems int, reason string) (*domain.UserProgress, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if gems <= 0 {
		return progress, nil
	}

	progress.TotalGems += gems
	progress.UpdatedAt = l.clock.Now()

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	l.logger.Debug("awarded gems",
		slog.String("user_id", userID.String()),
		slog.Int("gems", gems),
		slog.Int("total", progress.TotalGems),
		slog.String("reason", reason))

	return progress, nil
}

// SpendGems subtracts gems from the learner's total. Returns
// ErrInsufficientGems, with nothing mutated, if the balance is short.
func (l *Ledger) SpendGems(ctx context.Context, tx *sql.Tx, userID uuid.UUID, gems int, reason string) (*domain.UserProgress, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if gems <= 0 {
		return progress, nil
	}

	if progress.TotalGems < gems {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientGems, progress.TotalGems, gems)
	}

	progress.TotalGems -= gems
	progress.UpdatedAt = l.clock.Now()

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	l.logger.Debug("spent gems",
		slog.String("user_id", userID.String()),
		slog.Int("gems", gems),
		slog.Int("remaining", progress.TotalGems),
		slog.String("reason", reason))

	return progress, nil
}

// MasteredMilestone converts the learner's mastered-card count into gems:
// one gem per full group of MasteredPerGem cards, awarded once per group
// via the high-water mark on the progress row. Passing a count below the
// recorded mark is a no-op; the mark never moves backwards.
func (l *Ledger) MasteredMilestone(ctx context.Context, tx *sql.Tx, userID uuid.UUID, masteredCount int) (int, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	milestone := masteredCount / MasteredPerGem
	if milestone <= progress.LastMasteredMilestone {
		return 0, nil
	}

	gems := milestone - progress.LastMasteredMilestone
	progress.TotalGems += gems
	progress.LastMasteredMilestone = milestone
	progress.UpdatedAt = l.clock.Now()

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return 0, fmt.Errorf("failed to update progress: %w", err)
	}

	l.logger.Debug("awarded mastery milestone gems",
		slog.String("user_id", userID.String()),
		slog.Int("mastered", masteredCount),
		slog.Int("gems", gems))

	return gems, nil
}

// DailyLoginResult is the outcome of a daily login check-in.
type DailyLoginResult struct {
	Progress         *domain.UserProgress
	PointsAwarded    int
	AlreadyCounted   bool
	WeeklyBonus      bool
	UnlockedEntities []string
}

// RecordDailyLogin records the learner's daily check-in. The first call
// of a UTC calendar day awards the login bonus and advances the streak
// (reset to 1 after a missed day, +1 after a consecutive day, and the
// weekly bonus on every seventh consecutive day). Repeat calls on the
// same day change nothing.
func (l *Ledger) RecordDailyLogin(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*DailyLoginResult, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	if progress.StudiedOn(now) {
		return &DailyLoginResult{Progress: progress, AlreadyCounted: true}, nil
	}

	if progress.LastStudyDate != nil && isNextDay(*progress.LastStudyDate, now) {
		progress.CurrentStreak++
	} else {
		progress.CurrentStreak = 1
	}

	points := DailyLoginPoints
	weekly := progress.CurrentStreak > 0 && progress.CurrentStreak%weeklyStreakEvery == 0
	if weekly {
		points += WeeklyStreakPoints
	}

	studyDate := now
	progress.LastStudyDate = &studyDate
	progress.TotalPoints += points
	progress.UpdatedAt = now

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	l.logger.Info("recorded daily login",
		slog.String("user_id", userID.String()),
		slog.Int("streak", progress.CurrentStreak),
		slog.Int("points", points),
		slog.Bool("weekly_bonus", weekly))

	unlocked, err := l.gate.Reevaluate(ctx, tx, userID, progress.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to re-evaluate unlocks: %w", err)
	}

	return &DailyLoginResult{
		Progress:         progress,
		PointsAwarded:    points,
		WeeklyBonus:      weekly,
		UnlockedEntities: unlocked,
	}, nil
}

// ResetAll zeroes the learner's points, gems, streak, study date and
// mastery milestone, and removes every unlock row. Default entities stay
// available, so the learner is never locked out of the starting content.
// This is the only decreasing path besides gem spending.
func (l *Ledger) ResetAll(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.UserProgress, error) {
	progress, err := l.getOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	progress.TotalPoints = 0
	progress.TotalGems = 0
	progress.CurrentStreak = 0
	progress.LastStudyDate = nil
	progress.LastMasteredMilestone = 0
	progress.UpdatedAt = l.clock.Now()

	if err := l.progressStore.WithTx(tx).Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	if err := l.entityStore.WithTx(tx).RelockAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to relock entities: %w", err)
	}

	l.logger.Info("reset all progress",
		slog.String("user_id", userID.String()))

	return progress, nil
}

// Totals returns the learner's progress record without locking. A learner
// with no record yet sees zero totals rather than an error.
func (l *Ledger) Totals(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	progress, err := l.progressStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return domain.NewUserProgress(userID, l.clock.Now())
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// getOrCreateForUpdate fetches the learner's progress row under a row
// lock, creating it first if this is the learner's first reward. A
// concurrent create loses the insert race but wins the lock wait, so both
// callers end up serialized on the same row.
func (l *Ledger) getOrCreateForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.UserProgress, error) {
	txStore := l.progressStore.WithTx(tx)

	progress, err := txStore.GetForUpdate(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrProgressNotFound) {
		return nil, fmt.Errorf("failed to lock progress: %w", err)
	}

	fresh, err := domain.NewUserProgress(userID, l.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := txStore.Create(ctx, fresh); err != nil && !store.IsDuplicateError(err) {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	progress, err = txStore.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock progress after create: %w", err)
	}
	return progress, nil
}

// isNextDay reports whether now falls on the UTC calendar day immediately
// after last.
func isNextDay(last, now time.Time) bool {
	y, m, d := last.UTC().Date()
	lastDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.UTC().Date()
	nowDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nowDay.Sub(lastDay) == 24*time.Hour
}
