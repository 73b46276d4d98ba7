package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for UserProgress.
var (
	ErrEmptyProgressUserID = errors.New("progress user ID cannot be empty")
	ErrNegativeCurrency    = errors.New("currency totals cannot be negative")
	ErrNegativeStreak      = errors.New("streak cannot be negative")
)

// UserProgress is the single progress record per learner: cumulative
// currencies and the study streak. Points only ever grow outside an
// explicit reset; gems additionally shrink when spent on gem-gated
// unlocks. All mutation goes through the reward ledger.
type UserProgress struct {
	UserID                uuid.UUID  `json:"user_id"`
	TotalPoints           int        `json:"total_points"`
	TotalGems             int        `json:"total_gems"`
	CurrentStreak         int        `json:"current_streak"`
	LastStudyDate         *time.Time `json:"last_study_date"` // date-granular, nil until first study
	LastMasteredMilestone int        `json:"last_mastered_milestone"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NewUserProgress creates an empty progress record for a learner.
func NewUserProgress(userID uuid.UUID, now time.Time) (*UserProgress, error) {
	progress := &UserProgress{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the UserProgress has valid data.
// Returns an error if any field fails validation.
func (p *UserProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.TotalPoints < 0 || p.TotalGems < 0 {
		return ErrNegativeCurrency
	}

	if p.CurrentStreak < 0 {
		return ErrNegativeStreak
	}

	return nil
}

// StudiedOn reports whether the learner already studied on the calendar
// day containing t. Dates are compared in UTC.
func (p *UserProgress) StudiedOn(t time.Time) bool {
	if p.LastStudyDate == nil {
		return false
	}
	y1, m1, d1 := p.LastStudyDate.UTC().Date()
	y2, m2, d2 := t.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
