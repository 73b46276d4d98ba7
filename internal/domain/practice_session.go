package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionKind identifies the activity that produced a practice session.
type SessionKind string

// Possible session kinds.
const (
	SessionKindPractice  SessionKind = "practice"
	SessionKindFlashcard SessionKind = "flashcard"
	SessionKindListening SessionKind = "listening"
	SessionKindSpelling  SessionKind = "spelling"
	SessionKindMatching  SessionKind = "matching"
	SessionKindHangman   SessionKind = "hangman"
	SessionKindTest      SessionKind = "test"
)

// Common validation errors for PracticeSession.
var (
	ErrEmptySessionUserID = errors.New("practice session user ID cannot be empty")
	ErrNegativeWordCount  = errors.New("words studied cannot be negative")
	ErrNegativeDuration   = errors.New("session duration cannot be negative")
)

// PracticeSession is the persisted result of one completed practice or
// game session. Cumulative achievement signals (sessions completed,
// perfect sessions) are derived by counting these rows.
type PracticeSession struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Kind            SessionKind `json:"kind"`
	WordsStudied    int         `json:"words_studied"`
	Accuracy        float64     `json:"accuracy"` // 0.0 - 1.0
	DurationSeconds int         `json:"duration_seconds"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewPracticeSession creates a session record from a session result.
// Returns an error if validation fails.
func NewPracticeSession(
	userID uuid.UUID,
	kind SessionKind,
	wordsStudied int,
	accuracy float64,
	durationSeconds int,
	now time.Time,
) (*PracticeSession, error) {
	session := &PracticeSession{
		ID:              uuid.New(),
		UserID:          userID,
		Kind:            kind,
		WordsStudied:    wordsStudied,
		Accuracy:        accuracy,
		DurationSeconds: durationSeconds,
		CreatedAt:       now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the PracticeSession has valid data.
func (s *PracticeSession) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	switch s.Kind {
	case SessionKindPractice, SessionKindFlashcard, SessionKindListening,
		SessionKindSpelling, SessionKindMatching, SessionKindHangman, SessionKindTest:
	default:
		return ErrInvalidSessionKind
	}

	if s.WordsStudied < 0 {
		return ErrNegativeWordCount
	}

	if s.Accuracy < 0 || s.Accuracy > 1 {
		return ErrInvalidAccuracy
	}

	if s.DurationSeconds < 0 {
		return ErrNegativeDuration
	}

	return nil
}

// IsPerfect reports whether every answer in the session was correct.
func (s *PracticeSession) IsPerfect() bool {
	return s.Accuracy >= 1.0
}
