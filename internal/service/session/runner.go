// Package session implements the application facade over the engine
// services. Every mutating entry point runs in a single database
// transaction with a fixed ordering: record the event, award currency
// (which re-evaluates point-gated unlocks), then feed the persisted
// totals to achievement evaluation. Achievement evaluation always reads
// state that is already written, never in-flight values.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/domain/leitner"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/scheduler"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
	"github.com/lexora-app/mastery-api/internal/store"
)

// Runner is the session facade service.
type Runner struct {
	db           *sql.DB
	scheduler    *scheduler.Scheduler
	ledger       *reward.Ledger
	gate         *unlock.Gate
	engine       *achievement.Engine
	userStore    store.UserStore
	reviewStore  store.ReviewStateStore
	sessionStore store.SessionStore
	entityStore  store.EntityStore
	catalogStore store.CatalogStore
	clock        clock.Clock
	logger       *slog.Logger
}

// NewRunner creates the session facade.
func NewRunner(
	db *sql.DB,
	sched *scheduler.Scheduler,
	ledger *reward.Ledger,
	gate *unlock.Gate,
	engine *achievement.Engine,
	userStore store.UserStore,
	reviewStore store.ReviewStateStore,
	sessionStore store.SessionStore,
	entityStore store.EntityStore,
	catalogStore store.CatalogStore,
	clk clock.Clock,
	logger *slog.Logger,
) *Runner {
	if db == nil {
		panic("db cannot be nil")
	}
	if sched == nil {
		panic("scheduler cannot be nil")
	}
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	if gate == nil {
		panic("gate cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if entityStore == nil {
		panic("entityStore cannot be nil")
	}
	if catalogStore == nil {
		panic("catalogStore cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		db:           db,
		scheduler:    sched,
		ledger:       ledger,
		gate:         gate,
		engine:       engine,
		userStore:    userStore,
		reviewStore:  reviewStore,
		sessionStore: sessionStore,
		entityStore:  entityStore,
		catalogStore: catalogStore,
		clock:        clk,
		logger:       logger.With(slog.String("component", "session_runner")),
	}
}

// ReviewResult is the outcome of a single card review.
type ReviewResult struct {
	Box          int  `json:"box"`
	JustMastered bool `json:"just_mastered"`
	FirstCorrect bool `json:"first_correct"`
	QueueCleared bool `json:"queue_cleared"`

	PointsAwarded int `json:"points_awarded"`
	GemsAwarded   int `json:"gems_awarded"`

	UnlockedEntities     []string                `json:"unlocked_entities,omitempty"`
	UnlockedAchievements []*achievement.Unlocked `json:"-"`
}

// ReviewOutcome records one card review and applies its rewards: the box
// move, the first-correct and mastery bonuses, mastery milestone gems and
// the queue-cleared bonus when the review empties the section's due
// queue. sectionID is optional; without it no queue check runs.
func (r *Runner) ReviewOutcome(ctx context.Context, userID uuid.UUID, wordID string, knewIt bool, sectionID string) (*ReviewResult, error) {
	var result *ReviewResult

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		wasDue, err := r.wasDue(ctx, tx, userID, wordID)
		if err != nil {
			return err
		}

		outcome, err := r.scheduler.RecordOutcome(ctx, tx, userID, wordID, knewIt)
		if err != nil {
			return err
		}

		bonus := 0
		if outcome.FirstCorrect {
			bonus += reward.FirstCorrectPoints
		}
		if outcome.JustMastered {
			bonus += reward.MasteredCardPoints
		}

		queueCleared := false
		if sectionID != "" && wasDue {
			remaining, err := r.scheduler.WithTx(tx).DueCount(ctx, userID, sectionID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				queueCleared = true
				bonus += reward.QueueClearedPoints
			}
		}

		award, err := r.ledger.Award(ctx, tx, userID, bonus, "review outcome")
		if err != nil {
			return err
		}

		gems := 0
		if outcome.JustMastered {
			mastered, err := r.reviewStore.WithTx(tx).CountMastered(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to count mastered cards: %w", err)
			}
			gems, err = r.ledger.MasteredMilestone(ctx, tx, userID, mastered)
			if err != nil {
				return err
			}
		}

		sig, err := r.reviewSignals(ctx, tx, userID, award.Progress, outcome.JustMastered)
		if err != nil {
			return err
		}

		categories := []domain.AchievementCategory{domain.CategoryLearning, domain.CategoryPoints}
		if outcome.JustMastered {
			categories = append(categories, domain.CategoryExploration)
		}

		unlockedAchievements, err := r.engine.Evaluate(ctx, tx, userID, sig, categories...)
		if err != nil {
			return err
		}

		result = &ReviewResult{
			Box:                  outcome.State.BoxNumber,
			JustMastered:         outcome.JustMastered,
			FirstCorrect:         outcome.FirstCorrect,
			QueueCleared:         queueCleared,
			PointsAwarded:        bonus,
			GemsAwarded:          gems,
			UnlockedEntities:     collectEntities(award.UnlockedEntities, unlockedAchievements),
			UnlockedAchievements: unlockedAchievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SessionResult is the outcome of a completed practice session.
type SessionResult struct {
	Session       *domain.PracticeSession `json:"session"`
	PointsAwarded int                     `json:"points_awarded"`

	UnlockedEntities     []string                `json:"unlocked_entities,omitempty"`
	UnlockedAchievements []*achievement.Unlocked `json:"-"`
}

// CompleteSession persists a finished practice session, awards points per
// the accuracy table and runs the full achievement evaluation against the
// persisted totals.
func (r *Runner) CompleteSession(
	ctx context.Context,
	userID uuid.UUID,
	kind domain.SessionKind,
	wordsStudied int,
	accuracy float64,
	durationSeconds int,
) (*SessionResult, error) {
	session, err := domain.NewPracticeSession(userID, kind, wordsStudied, accuracy, durationSeconds, r.clock.Now())
	if err != nil {
		return nil, err
	}

	var result *SessionResult

	err = store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := r.sessionStore.WithTx(tx).Create(ctx, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		points := reward.AccuracyPoints(accuracy)
		award, err := r.ledger.Award(ctx, tx, userID, points, "session completed")
		if err != nil {
			return err
		}

		sig, err := r.sessionSignals(ctx, tx, userID, award.Progress, session)
		if err != nil {
			return err
		}

		unlockedAchievements, err := r.engine.Evaluate(ctx, tx, userID, sig)
		if err != nil {
			return err
		}

		result = &SessionResult{
			Session:              session,
			PointsAwarded:        points,
			UnlockedEntities:     collectEntities(award.UnlockedEntities, unlockedAchievements),
			UnlockedAchievements: unlockedAchievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// BrowseResult is the outcome of browsing a section.
type BrowseResult struct {
	PointsAwarded int `json:"points_awarded"`

	UnlockedEntities     []string                `json:"unlocked_entities,omitempty"`
	UnlockedAchievements []*achievement.Unlocked `json:"-"`
}

// SectionBrowsed awards the browse bonus for visiting a section.
func (r *Runner) SectionBrowsed(ctx context.Context, userID uuid.UUID, sectionID string) (*BrowseResult, error) {
	var result *BrowseResult

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := r.catalogStore.WithTx(tx).WordsInSection(ctx, sectionID); err != nil {
			return err
		}

		award, err := r.ledger.Award(ctx, tx, userID, reward.SectionBrowsePoints, "section browsed")
		if err != nil {
			return err
		}

		sig := achievement.Signals{TotalPoints: award.Progress.TotalPoints, Streak: award.Progress.CurrentStreak}
		unlockedAchievements, err := r.engine.Evaluate(ctx, tx, userID, sig, domain.CategoryPoints)
		if err != nil {
			return err
		}

		result = &BrowseResult{
			PointsAwarded:        reward.SectionBrowsePoints,
			UnlockedEntities:     collectEntities(award.UnlockedEntities, unlockedAchievements),
			UnlockedAchievements: unlockedAchievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// LoginResult is the outcome of a daily login check-in.
type LoginResult struct {
	Progress       *domain.UserProgress `json:"progress"`
	PointsAwarded  int                  `json:"points_awarded"`
	AlreadyCounted bool                 `json:"already_counted"`
	WeeklyBonus    bool                 `json:"weekly_bonus"`

	UnlockedEntities     []string                `json:"unlocked_entities,omitempty"`
	UnlockedAchievements []*achievement.Unlocked `json:"-"`
}

// DailyLogin records the daily check-in and evaluates streak and points
// achievements against the new streak. Repeat calls on the same UTC day
// are reported, not rewarded.
func (r *Runner) DailyLogin(ctx context.Context, userID uuid.UUID) (*LoginResult, error) {
	var result *LoginResult

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		login, err := r.ledger.RecordDailyLogin(ctx, tx, userID)
		if err != nil {
			return err
		}

		result = &LoginResult{
			Progress:         login.Progress,
			PointsAwarded:    login.PointsAwarded,
			AlreadyCounted:   login.AlreadyCounted,
			WeeklyBonus:      login.WeeklyBonus,
			UnlockedEntities: login.UnlockedEntities,
		}
		if login.AlreadyCounted {
			return nil
		}

		sig := achievement.Signals{
			Streak:      login.Progress.CurrentStreak,
			TotalPoints: login.Progress.TotalPoints,
		}
		unlockedAchievements, err := r.engine.Evaluate(ctx, tx, userID, sig,
			domain.CategoryStreak, domain.CategoryPoints)
		if err != nil {
			return err
		}

		result.UnlockedEntities = collectEntities(login.UnlockedEntities, unlockedAchievements)
		result.UnlockedAchievements = unlockedAchievements
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UnlockResult is the outcome of a gem-gated unlock.
type UnlockResult struct {
	Entity          *domain.GatedEntity `json:"entity"`
	AlreadyUnlocked bool                `json:"already_unlocked"`
	GemsSpent       int                 `json:"gems_spent"`
	GemsRemaining   int                 `json:"gems_remaining"`

	UnlockedAchievements []*achievement.Unlocked `json:"-"`
}

// UnlockEntity spends gems to unlock a gem-gated entity, then evaluates
// exploration achievements when a unit was unlocked.
func (r *Runner) UnlockEntity(ctx context.Context, userID uuid.UUID, entityID string) (*UnlockResult, error) {
	var result *UnlockResult

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		spend, err := r.gate.UnlockWithGems(ctx, tx, userID, entityID)
		if err != nil {
			return err
		}

		result = &UnlockResult{
			Entity:          spend.Entity,
			AlreadyUnlocked: spend.AlreadyUnlocked,
			GemsSpent:       spend.GemsSpent,
			GemsRemaining:   spend.GemsRemaining,
		}
		if spend.AlreadyUnlocked || spend.Entity.Kind != domain.EntityKindUnit {
			return nil
		}

		unitsUnlocked, err := r.unitsUnlocked(ctx, tx, userID)
		if err != nil {
			return err
		}

		sig := achievement.Signals{UnitsUnlocked: unitsUnlocked}
		unlockedAchievements, err := r.engine.Evaluate(ctx, tx, userID, sig, domain.CategoryExploration)
		if err != nil {
			return err
		}

		result.UnlockedAchievements = unlockedAchievements
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ClaimAchievement explicitly claims a ready-to-claim achievement.
func (r *Runner) ClaimAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*achievement.ClaimResult, error) {
	var result *achievement.ClaimResult

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		claimed, err := r.engine.Claim(ctx, tx, userID, achievementID)
		if err != nil {
			return err
		}
		result = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ResetProgress zeroes the learner's progress and relocks gated content.
func (r *Runner) ResetProgress(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	var progress *domain.UserProgress

	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		reset, err := r.ledger.ResetAll(ctx, tx, userID)
		if err != nil {
			return err
		}
		progress = reset
		return nil
	})
	if err != nil {
		return nil, err
	}

	return progress, nil
}

// wasDue reports whether the word was due before the current review.
// Missing state means a new card, which is always due.
func (r *Runner) wasDue(ctx context.Context, tx *sql.Tx, userID uuid.UUID, wordID string) (bool, error) {
	state, err := r.reviewStore.WithTx(tx).Get(ctx, userID, wordID)
	if err != nil {
		if errors.Is(err, store.ErrReviewStateNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to load review state: %w", err)
	}
	return leitner.IsDue(state, r.clock.Now()), nil
}

func (r *Runner) reviewSignals(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	progress *domain.UserProgress,
	justMastered bool,
) (achievement.Signals, error) {
	sig := achievement.Signals{
		Streak:      progress.CurrentStreak,
		TotalPoints: progress.TotalPoints,
	}

	reviewed, err := r.reviewStore.WithTx(tx).CountReviewed(ctx, userID)
	if err != nil {
		return sig, fmt.Errorf("failed to count reviewed words: %w", err)
	}
	sig.WordsReviewed = reviewed

	if justMastered {
		txCatalog := r.catalogStore.WithTx(tx)
		if sig.SectionsMastered, err = txCatalog.CountSectionsMastered(ctx, userID); err != nil {
			return sig, fmt.Errorf("failed to count mastered sections: %w", err)
		}
		if sig.UnitsMastered, err = txCatalog.CountUnitsMastered(ctx, userID); err != nil {
			return sig, fmt.Errorf("failed to count mastered units: %w", err)
		}
		if sig.UnitsUnlocked, err = r.unitsUnlocked(ctx, tx, userID); err != nil {
			return sig, err
		}
	}

	return sig, nil
}

func (r *Runner) sessionSignals(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	progress *domain.UserProgress,
	session *domain.PracticeSession,
) (achievement.Signals, error) {
	sig := achievement.Signals{
		Streak:         progress.CurrentStreak,
		TotalPoints:    progress.TotalPoints,
		SessionAt:      session.CreatedAt,
		SessionWords:   session.WordsStudied,
		SessionSeconds: session.DurationSeconds,
		SessionPerfect: session.IsPerfect(),
	}

	var err error
	txReviews := r.reviewStore.WithTx(tx)
	if sig.WordsReviewed, err = txReviews.CountReviewed(ctx, userID); err != nil {
		return sig, fmt.Errorf("failed to count reviewed words: %w", err)
	}

	txSessions := r.sessionStore.WithTx(tx)
	if sig.Sessions, err = txSessions.CountByUser(ctx, userID); err != nil {
		return sig, fmt.Errorf("failed to count sessions: %w", err)
	}
	if sig.PerfectSessions, err = txSessions.CountPerfect(ctx, userID); err != nil {
		return sig, fmt.Errorf("failed to count perfect sessions: %w", err)
	}

	txCatalog := r.catalogStore.WithTx(tx)
	if sig.SectionsMastered, err = txCatalog.CountSectionsMastered(ctx, userID); err != nil {
		return sig, fmt.Errorf("failed to count mastered sections: %w", err)
	}
	if sig.UnitsMastered, err = txCatalog.CountUnitsMastered(ctx, userID); err != nil {
		return sig, fmt.Errorf("failed to count mastered units: %w", err)
	}
	if sig.UnitsUnlocked, err = r.unitsUnlocked(ctx, tx, userID); err != nil {
		return sig, err
	}

	user, err := r.userStore.GetByID(ctx, userID)
	if err != nil {
		return sig, fmt.Errorf("failed to load user: %w", err)
	}
	sig.SessionBirthday = isAnniversary(user.CreatedAt, session.CreatedAt)

	return sig, nil
}

// unitsUnlocked counts the units the learner has explicitly unlocked,
// defaults excluded.
func (r *Runner) unitsUnlocked(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (int, error) {
	txEntities := r.entityStore.WithTx(tx)

	entities, err := txEntities.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list entities: %w", err)
	}
	unlocked, err := txEntities.ListUnlocked(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list unlocks: %w", err)
	}

	count := 0
	for _, entity := range entities {
		if entity.Kind != domain.EntityKindUnit || entity.IsDefault() {
			continue
		}
		if _, ok := unlocked[entity.ID]; ok {
			count++
		}
	}
	return count, nil
}

// collectEntities merges entity ids unlocked by the direct award with
// those unlocked by achievement reward grants, preserving order and
// dropping duplicates.
func collectEntities(direct []string, achievements []*achievement.Unlocked) []string {
	seen := make(map[string]bool, len(direct))
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(direct)
	for _, a := range achievements {
		add(a.UnlockedEntities)
	}
	return out
}

// isAnniversary reports whether now falls on the month-and-day
// anniversary of created, in a later year.
func isAnniversary(created, now time.Time) bool {
	c, n := created.UTC(), now.UTC()
	return n.Year() > c.Year() && n.Month() == c.Month() && n.Day() == c.Day()
}
