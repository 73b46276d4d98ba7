package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAchievementDefinitionValidate(t *testing.T) {
	valid := AchievementDefinition{
		ID:          "words_10",
		Category:    CategoryLearning,
		TargetValue: 10,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.ID = ""
	if err := invalid.Validate(); err != ErrEmptyAchievementID {
		t.Errorf("Expected error %v, got %v", ErrEmptyAchievementID, err)
	}

	invalid = valid
	invalid.Category = AchievementCategory("cooking")
	if err := invalid.Validate(); err != ErrInvalidAchievementCategory {
		t.Errorf("Expected error %v, got %v", ErrInvalidAchievementCategory, err)
	}

	invalid = valid
	invalid.TargetValue = 0
	if err := invalid.Validate(); err != ErrInvalidTargetValue {
		t.Errorf("Expected error %v, got %v", ErrInvalidTargetValue, err)
	}

	invalid = valid
	invalid.PointsReward = -1
	if err := invalid.Validate(); err != ErrNegativeReward {
		t.Errorf("Expected error %v, got %v", ErrNegativeReward, err)
	}
}

func TestValidAchievementCategory(t *testing.T) {
	for _, c := range []AchievementCategory{
		CategoryLearning, CategoryPractice, CategoryStreak,
		CategoryPoints, CategoryExploration, CategorySpecial,
	} {
		if !ValidAchievementCategory(c) {
			t.Errorf("Expected %s to be valid", c)
		}
	}

	if ValidAchievementCategory(AchievementCategory("cooking")) {
		t.Error("Expected unknown category to be invalid")
	}
}

func TestAchievementProgressStates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	progress, err := NewAchievementProgress(uuid.New(), "words_10", now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Locked: no progress yet.
	if progress.IsUnlocked() || progress.IsReadyToClaim(10) || progress.IsInProgress() {
		t.Error("Fresh progress should be locked with no partial progress")
	}

	// In progress, below target.
	progress.CurrentProgress = 5
	if !progress.IsInProgress() {
		t.Error("Expected IsInProgress with partial progress")
	}
	if progress.IsReadyToClaim(10) {
		t.Error("Should not be ready to claim below target")
	}

	// Ready to claim: target reached, not yet unlocked.
	progress.CurrentProgress = 10
	if !progress.IsReadyToClaim(10) {
		t.Error("Expected ready to claim at target")
	}
	if progress.IsUnlocked() {
		t.Error("Should not be unlocked before the grant")
	}

	// Unlocked: reward granted.
	progress.UnlockedAt = &now
	if !progress.IsUnlocked() {
		t.Error("Expected unlocked after the grant")
	}
	if progress.IsReadyToClaim(10) {
		t.Error("Unlocked progress is no longer ready to claim")
	}
}
