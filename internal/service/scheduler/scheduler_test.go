package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/mastery-api/internal/mocks"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/service/scheduler"
	"github.com/lexora-app/mastery-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(t *testing.T, now time.Time) (*scheduler.Scheduler, *mocks.MockReviewStateStore, *mocks.MockCatalogStore, *clock.Fake) {
	t.Helper()

	reviewStore := mocks.NewMockReviewStateStore()
	catalogStore := mocks.NewMockCatalogStore()
	catalogStore.Sections["u1_greetings"] = []string{"bonjour", "merci", "salut"}
	clk := clock.NewFake(now)

	sched := scheduler.New(reviewStore, catalogStore, clk, testLogger())
	return sched, reviewStore, catalogStore, clk
}

func TestRecordOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("first review creates state lazily", func(t *testing.T) {
		sched, reviewStore, _, _ := newTestScheduler(t, now)

		outcome, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
		assert.Equal(t, 2, outcome.State.BoxNumber)
		assert.True(t, outcome.FirstCorrect)
		assert.False(t, outcome.JustMastered)

		state, err := reviewStore.Get(ctx, userID, "bonjour")
		require.NoError(t, err)
		assert.Equal(t, 2, state.BoxNumber)
		assert.Equal(t, 1, state.ReviewCount)
		assert.Equal(t, 1, state.CorrectCount)
		require.NotNil(t, state.LastReviewedAt)
	})

	t.Run("successful reviews climb one box at a time", func(t *testing.T) {
		sched, _, _, clk := newTestScheduler(t, now)

		boxes := []int{2, 3, 4, 5}
		for _, want := range boxes {
			outcome, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
			require.NoError(t, err)
			assert.Equal(t, want, outcome.State.BoxNumber)
			clk.Advance(8 * 24 * time.Hour)
		}
	})

	t.Run("reaching the top box reports JustMastered once", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		for i := 0; i < 3; i++ {
			_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
			require.NoError(t, err)
		}

		outcome, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
		assert.True(t, outcome.JustMastered)

		// Reviewing a mastered card again does not re-report mastery.
		outcome, err = sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
		assert.Equal(t, 5, outcome.State.BoxNumber)
		assert.False(t, outcome.JustMastered)
	})

	t.Run("a miss resets to box 1", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		for i := 0; i < 3; i++ {
			_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
			require.NoError(t, err)
		}

		outcome, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", false)
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.State.BoxNumber)
		assert.False(t, outcome.FirstCorrect)
	})

	t.Run("first correct fires only on the first correct answer", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		outcome, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", false)
		require.NoError(t, err)
		assert.False(t, outcome.FirstCorrect)

		outcome, err = sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
		assert.True(t, outcome.FirstCorrect)

		outcome, err = sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
		assert.False(t, outcome.FirstCorrect)
	})
}

func TestDueCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("unreviewed words are always due in catalog order", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		cards, err := sched.DueCards(ctx, userID, "u1_greetings")
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, "bonjour", cards[0].WordID)
		assert.Equal(t, "merci", cards[1].WordID)
		assert.Equal(t, "salut", cards[2].WordID)
		for _, card := range cards {
			assert.True(t, card.New)
			assert.Equal(t, 1, card.Box)
		}
	})

	t.Run("freshly reviewed cards leave the queue until their interval elapses", func(t *testing.T) {
		sched, _, _, clk := newTestScheduler(t, now)

		_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)

		cards, err := sched.DueCards(ctx, userID, "u1_greetings")
		require.NoError(t, err)
		assert.Len(t, cards, 2)

		// Box 2 interval is one day.
		clk.Advance(24 * time.Hour)
		cards, err = sched.DueCards(ctx, userID, "u1_greetings")
		require.NoError(t, err)
		assert.Len(t, cards, 3)
	})

	t.Run("mastered cards are never due", func(t *testing.T) {
		sched, _, _, clk := newTestScheduler(t, now)

		for i := 0; i < 4; i++ {
			_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
			require.NoError(t, err)
		}

		clk.Advance(365 * 24 * time.Hour)
		cards, err := sched.DueCards(ctx, userID, "u1_greetings")
		require.NoError(t, err)
		assert.Len(t, cards, 2)
		for _, card := range cards {
			assert.NotEqual(t, "bonjour", card.WordID)
		}
	})

	t.Run("a failed card becomes immediately due again", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		// Climb to box 4, then miss.
		for i := 0; i < 3; i++ {
			_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
			require.NoError(t, err)
		}
		_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", false)
		require.NoError(t, err)

		count, err := sched.DueCount(ctx, userID, "u1_greetings")
		require.NoError(t, err)
		assert.Equal(t, 3, count, "box 1 cards are always due")
	})

	t.Run("unknown section", func(t *testing.T) {
		sched, _, _, _ := newTestScheduler(t, now)

		_, err := sched.DueCards(ctx, userID, "u9_ghosts")
		require.ErrorIs(t, err, store.ErrSectionNotFound)
	})
}

func TestStatistics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	sched, _, _, _ := newTestScheduler(t, now)

	// bonjour mastered, merci in box 2, salut untouched.
	for i := 0; i < 4; i++ {
		_, err := sched.RecordOutcome(ctx, nil, userID, "bonjour", true)
		require.NoError(t, err)
	}
	_, err := sched.RecordOutcome(ctx, nil, userID, "merci", true)
	require.NoError(t, err)

	stats, err := sched.Statistics(ctx, userID, "u1_greetings")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 1, stats.Mastered)
	assert.Equal(t, 1, stats.Due, "only the untouched card is due")
	assert.Equal(t, 1, stats.PerBox[1])
	assert.Equal(t, 1, stats.PerBox[2])
	assert.Equal(t, 1, stats.PerBox[5])
}
