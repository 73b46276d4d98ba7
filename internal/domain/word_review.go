package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for WordReviewState.
var (
	ErrEmptyReviewUserID = errors.New("word review state user ID cannot be empty")
	ErrEmptyWordID       = errors.New("word ID cannot be empty")
	ErrInvalidBoxNumber  = errors.New("box number must be between 1 and 5")
	ErrNegativeCount     = errors.New("review counts cannot be negative")
)

// WordReviewState tracks a learner's Leitner-box state for a single word.
// One row exists per distinct word the learner has ever reviewed; it is
// created lazily on the first review attempt and never deleted.
type WordReviewState struct {
	UserID         uuid.UUID  `json:"user_id"`
	WordID         string     `json:"word_id"`
	BoxNumber      int        `json:"box_number"`       // Leitner box, 1-5
	LastReviewedAt *time.Time `json:"last_reviewed_at"` // nil means the card is new
	ReviewCount    int        `json:"review_count"`
	CorrectCount   int        `json:"correct_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewWordReviewState creates review state for a word the learner has not
// seen before: box 1, no review history, due immediately.
func NewWordReviewState(userID uuid.UUID, wordID string, now time.Time) (*WordReviewState, error) {
	state := &WordReviewState{
		UserID:    userID,
		WordID:    wordID,
		BoxNumber: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the WordReviewState has valid data.
// Returns an error if any field fails validation.
func (s *WordReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyReviewUserID
	}

	if s.WordID == "" {
		return ErrEmptyWordID
	}

	if s.BoxNumber < 1 || s.BoxNumber > 5 {
		return ErrInvalidBoxNumber
	}

	if s.ReviewCount < 0 || s.CorrectCount < 0 {
		return ErrNegativeCount
	}

	return nil
}

// IsNew reports whether the card has never been reviewed.
func (s *WordReviewState) IsNew() bool {
	return s.LastReviewedAt == nil
}

// IsMastered reports whether the card has reached the top box.
func (s *WordReviewState) IsMastered() bool {
	return s.BoxNumber == 5
}
