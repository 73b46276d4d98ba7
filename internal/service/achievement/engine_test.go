package achievement_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/mocks"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
	"github.com/lexora-app/mastery-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog() []*domain.AchievementDefinition {
	return []*domain.AchievementDefinition{
		{ID: "words_10", Category: domain.CategoryLearning, Tier: domain.TierBronze, TargetValue: 10, PointsReward: 5, Position: 1},
		{ID: "practice_5", Category: domain.CategoryPractice, Tier: domain.TierBronze, TargetValue: 5, PointsReward: 5, Position: 1},
		{ID: "perfect_10", Category: domain.CategoryPractice, Tier: domain.TierGold, TargetValue: 10, PointsReward: 25, Position: 2},
		{ID: "perfect_single_20", Category: domain.CategoryPractice, Tier: domain.TierGold, TargetValue: 1, PointsReward: 30, Position: 3},
		{ID: "streak_7", Category: domain.CategoryStreak, Tier: domain.TierSilver, TargetValue: 7, PointsReward: 15, Position: 1},
		{ID: "stars_500", Category: domain.CategoryPoints, Tier: domain.TierSilver, TargetValue: 500, PointsReward: 25, Position: 1},
		{ID: "words_500", Category: domain.CategoryLearning, Tier: domain.TierDiamond, TargetValue: 500, PointsReward: 100, GemsReward: 5, Position: 2},
		{ID: "unlock_unit_1", Category: domain.CategoryExploration, Tier: domain.TierBronze, TargetValue: 1, PointsReward: 10, Position: 1},
		{ID: "early_bird", Category: domain.CategorySpecial, Tier: domain.TierSilver, TargetValue: 1, PointsReward: 15, Position: 1},
		{ID: "night_owl", Category: domain.CategorySpecial, Tier: domain.TierSilver, TargetValue: 1, PointsReward: 15, Position: 2},
		{ID: "speed_run", Category: domain.CategorySpecial, Tier: domain.TierGold, TargetValue: 1, PointsReward: 30, Position: 3},
		{ID: "birthday", Category: domain.CategorySpecial, Tier: domain.TierGold, TargetValue: 1, PointsReward: 20, Position: 4},
	}
}

func newTestEngine(t *testing.T, now time.Time) (*achievement.Engine, *mocks.MockAchievementStore, *mocks.MockProgressStore) {
	t.Helper()

	achievementStore := mocks.NewMockAchievementStore(testCatalog()...)
	progressStore := mocks.NewMockProgressStore()
	entityStore := mocks.NewMockEntityStore()
	clk := clock.NewFake(now)
	logger := testLogger()

	gate := unlock.NewGate(entityStore, clk, logger)
	ledger := reward.NewLedger(progressStore, entityStore, gate, clk, logger)
	gate.SetLedger(ledger)

	engine := achievement.NewEngine(achievementStore, ledger, clk, logger)
	return engine, achievementStore, progressStore
}

func TestUpdateProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("records progress below the target", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		unlocked, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 4)
		require.NoError(t, err)
		assert.Nil(t, unlocked)

		progress, err := achievementStore.GetProgress(ctx, userID, "words_10")
		require.NoError(t, err)
		assert.Equal(t, 4, progress.CurrentProgress)
		assert.False(t, progress.IsUnlocked())
	})

	t.Run("progress never regresses", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		_, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 6)
		require.NoError(t, err)
		_, err = engine.UpdateProgress(ctx, nil, userID, "words_10", 3)
		require.NoError(t, err)

		progress, err := achievementStore.GetProgress(ctx, userID, "words_10")
		require.NoError(t, err)
		assert.Equal(t, 6, progress.CurrentProgress)
	})

	t.Run("progress is clamped to the target", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		_, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 250)
		require.NoError(t, err)

		progress, err := achievementStore.GetProgress(ctx, userID, "words_10")
		require.NoError(t, err)
		assert.Equal(t, 10, progress.CurrentProgress)
	})

	t.Run("reaching the target grants the reward exactly once", func(t *testing.T) {
		engine, _, progressStore := newTestEngine(t, now)

		unlocked, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 10)
		require.NoError(t, err)
		require.NotNil(t, unlocked)
		assert.Equal(t, "words_10", unlocked.Definition.ID)
		assert.Equal(t, 5, unlocked.PointsAwarded)

		// A later pass over the same value unlocks nothing and pays nothing.
		unlocked, err = engine.UpdateProgress(ctx, nil, userID, "words_10", 12)
		require.NoError(t, err)
		assert.Nil(t, unlocked)

		stored, err := progressStore.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.TotalPoints)
	})

	t.Run("gem rewards flow through the ledger", func(t *testing.T) {
		engine, _, progressStore := newTestEngine(t, now)

		unlocked, err := engine.UpdateProgress(ctx, nil, userID, "words_500", 500)
		require.NoError(t, err)
		require.NotNil(t, unlocked)
		assert.Equal(t, 100, unlocked.PointsAwarded)
		assert.Equal(t, 5, unlocked.GemsAwarded)

		stored, err := progressStore.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 100, stored.TotalPoints)
		assert.Equal(t, 5, stored.TotalGems)
	})

	t.Run("unknown achievement", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		_, err := engine.UpdateProgress(ctx, nil, userID, "words_9000", 1)
		require.ErrorIs(t, err, store.ErrAchievementNotFound)
	})
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("points signal unlocks a crossed threshold in the same pass", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		// 480 points: close, not there.
		unlocked, err := engine.Evaluate(ctx, nil, userID,
			achievement.Signals{TotalPoints: 480}, domain.CategoryPoints)
		require.NoError(t, err)
		assert.Empty(t, unlocked)

		// 510 points: stars_500 unlocks during this evaluation.
		unlocked, err = engine.Evaluate(ctx, nil, userID,
			achievement.Signals{TotalPoints: 510}, domain.CategoryPoints)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		assert.Equal(t, "stars_500", unlocked[0].Definition.ID)
	})

	t.Run("zero signals create no progress rows", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		unlocked, err := engine.Evaluate(ctx, nil, userID, achievement.Signals{})
		require.NoError(t, err)
		assert.Empty(t, unlocked)
		assert.Empty(t, achievementStore.Progress)
	})

	t.Run("category filter evaluates only matching definitions", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		sig := achievement.Signals{WordsReviewed: 8, Streak: 5}
		_, err := engine.Evaluate(ctx, nil, userID, sig, domain.CategoryLearning)
		require.NoError(t, err)

		_, err = achievementStore.GetProgress(ctx, userID, "words_10")
		require.NoError(t, err)

		_, err = achievementStore.GetProgress(ctx, userID, "streak_7")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("invalid category is rejected", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		_, err := engine.Evaluate(ctx, nil, userID, achievement.Signals{},
			domain.AchievementCategory("cooking"))
		require.ErrorIs(t, err, domain.ErrInvalidAchievementCategory)
	})
}

func TestEvaluateSpecial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	sessionAt := func(hour int) time.Time {
		return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
	}

	testCases := []struct {
		name     string
		sig      achievement.Signals
		expected []string
	}{
		{
			name:     "early bird window",
			sig:      achievement.Signals{SessionAt: sessionAt(6)},
			expected: []string{"early_bird"},
		},
		{
			name:     "five am is inside the window",
			sig:      achievement.Signals{SessionAt: sessionAt(5)},
			expected: []string{"early_bird"},
		},
		{
			name:     "eight am is outside the window",
			sig:      achievement.Signals{SessionAt: sessionAt(8)},
			expected: nil,
		},
		{
			name:     "night owl before midnight",
			sig:      achievement.Signals{SessionAt: sessionAt(23)},
			expected: []string{"night_owl"},
		},
		{
			name:     "night owl after midnight",
			sig:      achievement.Signals{SessionAt: sessionAt(1)},
			expected: []string{"night_owl"},
		},
		{
			name:     "two am is outside the night window",
			sig:      achievement.Signals{SessionAt: sessionAt(2)},
			expected: nil,
		},
		{
			name: "speed run needs a fast perfect session",
			sig: achievement.Signals{
				SessionAt: sessionAt(12), SessionPerfect: true,
				SessionWords: 10, SessionSeconds: 45,
			},
			expected: []string{"speed_run"},
		},
		{
			name: "slow perfect session is no speed run",
			sig: achievement.Signals{
				SessionAt: sessionAt(12), SessionPerfect: true,
				SessionWords: 10, SessionSeconds: 90,
			},
			expected: nil,
		},
		{
			name: "fast imperfect session is no speed run",
			sig: achievement.Signals{
				SessionAt: sessionAt(12), SessionPerfect: false,
				SessionWords: 10, SessionSeconds: 45,
			},
			expected: nil,
		},
		{
			name:     "anniversary session",
			sig:      achievement.Signals{SessionAt: sessionAt(12), SessionBirthday: true},
			expected: []string{"birthday"},
		},
		{
			name:     "no session means no special achievements",
			sig:      achievement.Signals{SessionPerfect: true, SessionWords: 30},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _, _ := newTestEngine(t, sessionAt(12))

			unlocked, err := engine.Evaluate(ctx, nil, userID, tc.sig, domain.CategorySpecial)
			require.NoError(t, err)

			var ids []string
			for _, u := range unlocked {
				ids = append(ids, u.Definition.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestEvaluatePractice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("perfect single session achievement needs twenty words", func(t *testing.T) {
		engine, achievementStore, _ := newTestEngine(t, now)

		sig := achievement.Signals{Sessions: 1, SessionPerfect: true, SessionWords: 19, SessionAt: now}
		unlocked, err := engine.Evaluate(ctx, nil, userID, sig, domain.CategoryPractice)
		require.NoError(t, err)
		assert.Empty(t, unlocked)

		sig.SessionWords = 20
		unlocked, err = engine.Evaluate(ctx, nil, userID, sig, domain.CategoryPractice)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		assert.Equal(t, "perfect_single_20", unlocked[0].Definition.ID)

		progress, err := achievementStore.GetProgress(ctx, userID, "practice_5")
		require.NoError(t, err)
		assert.Equal(t, 1, progress.CurrentProgress)
	})

	t.Run("perfect session count drives the perfectionist achievement", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		sig := achievement.Signals{Sessions: 30, PerfectSessions: 10, SessionAt: now}
		unlocked, err := engine.Evaluate(ctx, nil, userID, sig, domain.CategoryPractice)
		require.NoError(t, err)

		ids := make(map[string]bool)
		for _, u := range unlocked {
			ids[u.Definition.ID] = true
		}
		assert.True(t, ids["practice_5"])
		assert.True(t, ids["perfect_10"])
	})
}

func TestClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("claims a ready achievement", func(t *testing.T) {
		engine, achievementStore, progressStore := newTestEngine(t, now)

		// Put the record at the target without granting.
		progress, err := domain.NewAchievementProgress(userID, "words_10", now)
		require.NoError(t, err)
		progress.CurrentProgress = 10
		require.NoError(t, achievementStore.CreateProgress(ctx, progress))

		result, err := engine.Claim(ctx, nil, userID, "words_10")
		require.NoError(t, err)
		assert.Equal(t, "words_10", result.Definition.ID)
		assert.Equal(t, 5, result.PointsAwarded)
		assert.True(t, result.UnlockedAt.Equal(now))

		stored, err := progressStore.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.TotalPoints)
	})

	t.Run("claim without any progress", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		_, err := engine.Claim(ctx, nil, userID, "words_10")
		require.ErrorIs(t, err, achievement.ErrNotReadyToClaim)
	})

	t.Run("claim below the target", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		_, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 7)
		require.NoError(t, err)

		_, err = engine.Claim(ctx, nil, userID, "words_10")
		require.ErrorIs(t, err, achievement.ErrNotReadyToClaim)
	})

	t.Run("double claim", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, now)

		_, err := engine.UpdateProgress(ctx, nil, userID, "words_10", 10)
		require.NoError(t, err)

		_, err = engine.Claim(ctx, nil, userID, "words_10")
		require.ErrorIs(t, err, achievement.ErrAlreadyClaimed)
	})
}
