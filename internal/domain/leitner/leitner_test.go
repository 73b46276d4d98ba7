package leitner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
)

func TestInterval(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		box        int
		wantDays   int
		wantFinite bool
	}{
		{box: 1, wantDays: 0, wantFinite: true},
		{box: 2, wantDays: 1, wantFinite: true},
		{box: 3, wantDays: 3, wantFinite: true},
		{box: 4, wantDays: 7, wantFinite: true},
		{box: 5, wantDays: 0, wantFinite: false},
	}

	for _, tc := range testCases {
		days, finite := Interval(tc.box)
		if days != tc.wantDays || finite != tc.wantFinite {
			t.Errorf("Interval(%d) = (%d, %v), want (%d, %v)",
				tc.box, days, finite, tc.wantDays, tc.wantFinite)
		}
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		box      int
		knewIt   bool
		expected int
	}{
		{name: "success moves up one box", box: 1, knewIt: true, expected: 2},
		{name: "success from box 2", box: 2, knewIt: true, expected: 3},
		{name: "success from box 3", box: 3, knewIt: true, expected: 4},
		{name: "success from box 4 masters the card", box: 4, knewIt: true, expected: 5},
		{name: "success at top box stays at top", box: 5, knewIt: true, expected: 5},
		{name: "failure from box 1 stays at box 1", box: 1, knewIt: false, expected: 1},
		{name: "failure from box 4 resets to box 1", box: 4, knewIt: false, expected: 1},
		{name: "failure from top box resets to box 1", box: 5, knewIt: false, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Advance(tc.box, tc.knewIt)
			if got != tc.expected {
				t.Errorf("Advance(%d, %v) = %d, want %d", tc.box, tc.knewIt, got, tc.expected)
			}
		})
	}
}

func TestNextDueAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("new card is due at creation", func(t *testing.T) {
		state, err := domain.NewWordReviewState(userID, "bonjour", now)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		due, finite := NextDueAt(state)
		if !finite {
			t.Fatal("Expected finite due time for new card")
		}
		if !due.Equal(now) {
			t.Errorf("Expected due at %v, got %v", now, due)
		}
	})

	t.Run("reviewed card is due after the box interval", func(t *testing.T) {
		testCases := []struct {
			box      int
			wantDays int
		}{
			{box: 1, wantDays: 0},
			{box: 2, wantDays: 1},
			{box: 3, wantDays: 3},
			{box: 4, wantDays: 7},
		}

		for _, tc := range testCases {
			reviewedAt := now
			state := &domain.WordReviewState{
				UserID:         userID,
				WordID:         "bonjour",
				BoxNumber:      tc.box,
				LastReviewedAt: &reviewedAt,
			}

			due, finite := NextDueAt(state)
			if !finite {
				t.Fatalf("box %d: expected finite due time", tc.box)
			}

			expected := now.Add(time.Duration(tc.wantDays) * 24 * time.Hour)
			if !due.Equal(expected) {
				t.Errorf("box %d: expected due at %v, got %v", tc.box, expected, due)
			}
		}
	})

	t.Run("mastered card has no due time", func(t *testing.T) {
		reviewedAt := now
		state := &domain.WordReviewState{
			UserID:         userID,
			WordID:         "bonjour",
			BoxNumber:      5,
			LastReviewedAt: &reviewedAt,
		}

		if _, finite := NextDueAt(state); finite {
			t.Error("Expected no due time for mastered card")
		}
	})
}

func TestIsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	reviewedAt := now
	state := &domain.WordReviewState{
		UserID:         userID,
		WordID:         "merci",
		BoxNumber:      2,
		LastReviewedAt: &reviewedAt,
	}

	if IsDue(state, now) {
		t.Error("Box 2 card reviewed just now should not be due")
	}
	if IsDue(state, now.Add(23*time.Hour)) {
		t.Error("Box 2 card should not be due before its interval elapses")
	}
	if !IsDue(state, now.Add(24*time.Hour)) {
		t.Error("Box 2 card should be due exactly at its interval")
	}

	// A failed box 4 card resets to box 1 and becomes immediately due.
	state.BoxNumber = Advance(4, false)
	if state.BoxNumber != 1 {
		t.Fatalf("Expected reset to box 1, got %d", state.BoxNumber)
	}
	if !IsDue(state, now) {
		t.Error("Box 1 card should always be due")
	}
}

func TestNewStatistics(t *testing.T) {
	t.Parallel()

	stats := NewStatistics()
	for box := MinBox; box <= MaxBox; box++ {
		if _, ok := stats.PerBox[box]; !ok {
			t.Errorf("Expected PerBox to contain box %d", box)
		}
	}
}
