package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewWordReviewState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	state, err := NewWordReviewState(uuid.New(), "bonjour", now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if state.BoxNumber != 1 {
		t.Errorf("Expected new state in box 1, got %d", state.BoxNumber)
	}
	if !state.IsNew() {
		t.Error("Expected new state to report IsNew")
	}
	if state.IsMastered() {
		t.Error("Expected new state not to be mastered")
	}

	_, err = NewWordReviewState(uuid.Nil, "bonjour", now)
	if err != ErrEmptyReviewUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyReviewUserID, err)
	}

	_, err = NewWordReviewState(uuid.New(), "", now)
	if err != ErrEmptyWordID {
		t.Errorf("Expected error %v, got %v", ErrEmptyWordID, err)
	}
}

func TestWordReviewStateValidate(t *testing.T) {
	valid := WordReviewState{
		UserID:    uuid.New(),
		WordID:    "bonjour",
		BoxNumber: 3,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.BoxNumber = 0
	if err := invalid.Validate(); err != ErrInvalidBoxNumber {
		t.Errorf("Expected error %v, got %v", ErrInvalidBoxNumber, err)
	}

	invalid = valid
	invalid.BoxNumber = 6
	if err := invalid.Validate(); err != ErrInvalidBoxNumber {
		t.Errorf("Expected error %v, got %v", ErrInvalidBoxNumber, err)
	}

	invalid = valid
	invalid.ReviewCount = -1
	if err := invalid.Validate(); err != ErrNegativeCount {
		t.Errorf("Expected error %v, got %v", ErrNegativeCount, err)
	}
}

func TestWordReviewStateIsMastered(t *testing.T) {
	state := WordReviewState{UserID: uuid.New(), WordID: "merci", BoxNumber: 4}
	if state.IsMastered() {
		t.Error("Box 4 card should not be mastered")
	}

	state.BoxNumber = 5
	if !state.IsMastered() {
		t.Error("Box 5 card should be mastered")
	}
}
