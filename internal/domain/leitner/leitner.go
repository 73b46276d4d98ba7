// Package leitner implements the five-box Leitner scheduling model used
// for flashcard review. Boxes map to fixed review intervals; a known card
// advances one box, a missed card drops all the way back to box 1.
package leitner

import (
	"time"

	"github.com/lexora-app/mastery-api/internal/domain"
)

// Box bounds.
const (
	MinBox = 1
	MaxBox = 5
)

// intervalDays is the fixed box-to-interval table, in days. Box 1 cards
// are always due; box 5 cards are mastered and never scheduled again.
// The table is part of the observable contract and must not drift.
var intervalDays = map[int]int{
	1: 0,
	2: 1,
	3: 3,
	4: 7,
}

// Interval returns the review interval in days for a box and whether the
// box has a finite interval at all (box 5 does not).
func Interval(box int) (days int, finite bool) {
	days, finite = intervalDays[box]
	return days, finite
}

// Advance returns the box a card moves to after a review outcome.
//
// A known card moves up exactly one box, capped at MaxBox. A missed card
// resets to box 1 unconditionally: a single lapse fully resets confidence
// and the card has to re-prove itself through every box.
func Advance(box int, knewIt bool) int {
	if !knewIt {
		return MinBox
	}

	if box < MaxBox {
		return box + 1
	}
	return MaxBox
}

// NextDueAt computes when the card should next be reviewed. The second
// return value is false for mastered cards, which have no next review.
// The due time is derived, never stored.
func NextDueAt(state *domain.WordReviewState) (time.Time, bool) {
	if state.LastReviewedAt == nil {
		// New cards are due immediately.
		return state.CreatedAt, true
	}

	days, finite := Interval(state.BoxNumber)
	if !finite {
		return time.Time{}, false
	}

	return state.LastReviewedAt.Add(time.Duration(days) * 24 * time.Hour), true
}

// IsDue reports whether the card should be shown at time now. Cards
// without review state (new cards) are handled by the caller and are
// always due.
func IsDue(state *domain.WordReviewState, now time.Time) bool {
	due, finite := NextDueAt(state)
	if !finite {
		return false
	}
	return !now.Before(due)
}

// Statistics summarizes the review state of a collection of words.
type Statistics struct {
	Total    int         `json:"total"`
	New      int         `json:"new"`
	Due      int         `json:"due"`
	Mastered int         `json:"mastered"`
	PerBox   map[int]int `json:"per_box"`
}

// NewStatistics returns an empty Statistics with all box counters present,
// so callers and JSON consumers always see the full box range.
func NewStatistics() Statistics {
	return Statistics{
		PerBox: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}
