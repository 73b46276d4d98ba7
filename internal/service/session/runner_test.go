package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/mocks"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/scheduler"
	"github.com/lexora-app/mastery-api/internal/service/session"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
)

// runnerFixture bundles the facade with its backing mock stores. The
// sql.DB only serves transaction begin/commit; every store call runs
// against the in-memory mocks.
type runnerFixture struct {
	runner *session.Runner
	sqlDB  sqlmock.Sqlmock
	clock  *clock.Fake

	userStore        *mocks.MockUserStore
	progressStore    *mocks.MockProgressStore
	reviewStore      *mocks.MockReviewStateStore
	achievementStore *mocks.MockAchievementStore
	entityStore      *mocks.MockEntityStore
	sessionStore     *mocks.MockSessionStore
	catalogStore     *mocks.MockCatalogStore

	user *domain.User
}

func newRunnerFixture(t *testing.T, now time.Time) *runnerFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFake(now)

	user := &domain.User{
		ID:        uuid.New(),
		Email:     "learner@example.com",
		CreatedAt: now.AddDate(-2, 0, 0),
	}

	f := &runnerFixture{
		sqlDB:            mock,
		clock:            clk,
		userStore:        mocks.NewMockUserStore(user),
		progressStore:    mocks.NewMockProgressStore(),
		reviewStore:      mocks.NewMockReviewStateStore(),
		achievementStore: mocks.NewMockAchievementStore(),
		entityStore:      mocks.NewMockEntityStore(),
		sessionStore:     mocks.NewMockSessionStore(),
		catalogStore:     mocks.NewMockCatalogStore(),
		user:             user,
	}
	f.catalogStore.Sections["u1_greetings"] = []string{"bonjour", "merci"}

	gate := unlock.NewGate(f.entityStore, clk, logger)
	ledger := reward.NewLedger(f.progressStore, f.entityStore, gate, clk, logger)
	gate.SetLedger(ledger)
	engine := achievement.NewEngine(f.achievementStore, ledger, clk, logger)
	sched := scheduler.New(f.reviewStore, f.catalogStore, clk, logger)

	f.runner = session.NewRunner(
		db, sched, ledger, gate, engine,
		f.userStore, f.reviewStore, f.sessionStore, f.entityStore, f.catalogStore,
		clk, logger,
	)
	return f
}

// expectTx queues one begin/commit pair on the mock database.
func (f *runnerFixture) expectTx() {
	f.sqlDB.ExpectBegin()
	f.sqlDB.ExpectCommit()
}

// seedMastered stores n mastered words for the user.
func (f *runnerFixture) seedMastered(t *testing.T, userID uuid.UUID, n int) {
	t.Helper()
	reviewedAt := f.clock.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		f.reviewStore.Seed(&domain.WordReviewState{
			UserID:         userID,
			WordID:         "mastered_" + string(rune('a'+i)),
			BoxNumber:      5,
			LastReviewedAt: &reviewedAt,
			ReviewCount:    4,
			CorrectCount:   4,
		})
	}
}

func TestReviewOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first correct answer pays its bonus", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.expectTx()

		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Box)
		assert.True(t, result.FirstCorrect)
		assert.False(t, result.JustMastered)
		assert.Equal(t, reward.FirstCorrectPoints, result.PointsAwarded)
		assert.Equal(t, 0, result.GemsAwarded)

		progress, err := f.progressStore.Get(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, reward.FirstCorrectPoints, progress.TotalPoints)
	})

	t.Run("a miss pays nothing", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.expectTx()

		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", false, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Box)
		assert.Equal(t, 0, result.PointsAwarded)
	})

	t.Run("mastering a card pays the mastery bonus and milestone gems", func(t *testing.T) {
		f := newRunnerFixture(t, now)

		// 9 words already mastered; the next mastery is the 10th.
		f.seedMastered(t, f.user.ID, 9)
		reviewedAt := now.Add(-8 * 24 * time.Hour)
		f.reviewStore.Seed(&domain.WordReviewState{
			UserID:         f.user.ID,
			WordID:         "bonjour",
			BoxNumber:      4,
			LastReviewedAt: &reviewedAt,
			ReviewCount:    3,
			CorrectCount:   3,
		})

		f.expectTx()
		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "")
		require.NoError(t, err)
		assert.Equal(t, 5, result.Box)
		assert.True(t, result.JustMastered)
		assert.Equal(t, reward.MasteredCardPoints, result.PointsAwarded)
		assert.Equal(t, 1, result.GemsAwarded, "10 mastered cards earn the first gem")
	})

	t.Run("clearing the section due queue pays the queue bonus", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.catalogStore.Sections["tiny"] = []string{"bonjour"}

		f.expectTx()
		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "tiny")
		require.NoError(t, err)
		assert.True(t, result.QueueCleared)
		assert.Equal(t, reward.FirstCorrectPoints+reward.QueueClearedPoints, result.PointsAwarded)
	})

	t.Run("no queue bonus while cards remain due", func(t *testing.T) {
		f := newRunnerFixture(t, now)

		f.expectTx()
		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "u1_greetings")
		require.NoError(t, err)
		assert.False(t, result.QueueCleared, "merci is still due")
	})

	t.Run("reviewing a card that was not due cannot clear the queue", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.catalogStore.Sections["tiny"] = []string{"bonjour"}

		f.expectTx()
		_, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "tiny")
		require.NoError(t, err)

		// Immediately reviewing again: the card sits in box 3, not due, so
		// emptying an already empty queue pays nothing a second time.
		f.expectTx()
		result, err := f.runner.ReviewOutcome(ctx, f.user.ID, "bonjour", true, "tiny")
		require.NoError(t, err)
		assert.False(t, result.QueueCleared)
		assert.Equal(t, 0, result.PointsAwarded)
	})
}

func TestCompleteSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		accuracy   float64
		wantPoints int
	}{
		{name: "high accuracy", accuracy: 0.95, wantPoints: 20},
		{name: "medium accuracy", accuracy: 0.85, wantPoints: 15},
		{name: "low accuracy", accuracy: 0.65, wantPoints: 10},
		{name: "poor accuracy", accuracy: 0.4, wantPoints: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRunnerFixture(t, now)
			f.expectTx()

			result, err := f.runner.CompleteSession(ctx, f.user.ID, domain.SessionKindPractice, 12, tc.accuracy, 180)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPoints, result.PointsAwarded)
			require.Len(t, f.sessionStore.Sessions, 1)
			assert.Equal(t, tc.accuracy, f.sessionStore.Sessions[0].Accuracy)
		})
	}

	t.Run("invalid accuracy is rejected before any write", func(t *testing.T) {
		f := newRunnerFixture(t, now)

		_, err := f.runner.CompleteSession(ctx, f.user.ID, domain.SessionKindPractice, 12, 1.5, 180)
		require.ErrorIs(t, err, domain.ErrInvalidAccuracy)
		assert.Empty(t, f.sessionStore.Sessions)
	})

	t.Run("unknown session kind is rejected", func(t *testing.T) {
		f := newRunnerFixture(t, now)

		_, err := f.runner.CompleteSession(ctx, f.user.ID, domain.SessionKind("karaoke"), 12, 1, 180)
		require.ErrorIs(t, err, domain.ErrInvalidSessionKind)
	})
}

func TestSectionBrowsed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("browsing a section pays the browse bonus", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.expectTx()

		result, err := f.runner.SectionBrowsed(ctx, f.user.ID, "u1_greetings")
		require.NoError(t, err)
		assert.Equal(t, reward.SectionBrowsePoints, result.PointsAwarded)
	})

	t.Run("unknown section pays nothing", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.sqlDB.ExpectBegin()
		f.sqlDB.ExpectRollback()

		_, err := f.runner.SectionBrowsed(ctx, f.user.ID, "u9_ghosts")
		require.Error(t, err)

		_, err = f.progressStore.Get(ctx, f.user.ID)
		require.Error(t, err, "no progress record should have been created")
	})
}

func TestDailyLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := newRunnerFixture(t, now)

	f.expectTx()
	result, err := f.runner.DailyLogin(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCounted)
	assert.Equal(t, reward.DailyLoginPoints, result.PointsAwarded)
	assert.Equal(t, 1, result.Progress.CurrentStreak)

	f.expectTx()
	result, err = f.runner.DailyLogin(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCounted)
	assert.Equal(t, 0, result.PointsAwarded)
}

func TestUnlockEntity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("spends gems and unlocks the entity", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.entityStore.Entities["mode_hangman"] = &domain.GatedEntity{
			ID: "mode_hangman", Kind: domain.EntityKindGameMode,
			CostType: domain.CostTypeGems, RequiredGems: 10,
		}
		f.progressStore.Seed(&domain.UserProgress{UserID: f.user.ID, TotalGems: 12})

		f.expectTx()
		result, err := f.runner.UnlockEntity(ctx, f.user.ID, "mode_hangman")
		require.NoError(t, err)
		assert.False(t, result.AlreadyUnlocked)
		assert.Equal(t, 10, result.GemsSpent)
		assert.Equal(t, 2, result.GemsRemaining)
	})

	t.Run("insufficient gems rolls the transaction back", func(t *testing.T) {
		f := newRunnerFixture(t, now)
		f.entityStore.Entities["mode_hangman"] = &domain.GatedEntity{
			ID: "mode_hangman", Kind: domain.EntityKindGameMode,
			CostType: domain.CostTypeGems, RequiredGems: 10,
		}
		f.progressStore.Seed(&domain.UserProgress{UserID: f.user.ID, TotalGems: 3})

		f.sqlDB.ExpectBegin()
		f.sqlDB.ExpectRollback()
		_, err := f.runner.UnlockEntity(ctx, f.user.ID, "mode_hangman")
		require.ErrorIs(t, err, reward.ErrInsufficientGems)
	})
}

func TestResetProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := newRunnerFixture(t, now)
	f.progressStore.Seed(&domain.UserProgress{
		UserID: f.user.ID, TotalPoints: 900, TotalGems: 4, CurrentStreak: 6,
	})

	f.expectTx()
	progress, err := f.runner.ResetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalPoints)
	assert.Equal(t, 0, progress.TotalGems)
	assert.Equal(t, 0, progress.CurrentStreak)
}
