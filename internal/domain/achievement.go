package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AchievementCategory groups achievements by the signal that advances them.
// The set is closed: evaluation dispatches with an exhaustive switch, so
// adding a category is a compile-time-visible change.
type AchievementCategory string

// Possible achievement categories.
const (
	CategoryLearning    AchievementCategory = "learning"
	CategoryPractice    AchievementCategory = "practice"
	CategoryStreak      AchievementCategory = "streak"
	CategoryPoints      AchievementCategory = "points"
	CategoryExploration AchievementCategory = "exploration"
	CategorySpecial     AchievementCategory = "special"
)

// ValidAchievementCategory reports whether c is one of the known categories.
func ValidAchievementCategory(c AchievementCategory) bool {
	switch c {
	case CategoryLearning, CategoryPractice, CategoryStreak,
		CategoryPoints, CategoryExploration, CategorySpecial:
		return true
	default:
		return false
	}
}

// AchievementTier is a cosmetic grouping (bronze through diamond).
// It never affects evaluation logic.
type AchievementTier string

// Possible achievement tiers.
const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
	TierDiamond  AchievementTier = "diamond"
)

// Common validation errors for achievements.
var (
	ErrEmptyAchievementID     = errors.New("achievement ID cannot be empty")
	ErrInvalidTargetValue     = errors.New("achievement target value must be positive")
	ErrNegativeReward         = errors.New("achievement rewards cannot be negative")
	ErrEmptyAchievementUserID = errors.New("achievement progress user ID cannot be empty")
	ErrNegativeProgress       = errors.New("achievement progress cannot be negative")
)

// AchievementDefinition is one entry of the fixed achievement catalog,
// seeded once. Targets and rewards are part of the observable contract.
type AchievementDefinition struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Category     AchievementCategory `json:"category"`
	Tier         AchievementTier     `json:"tier"`
	TargetValue  int                 `json:"target_value"`
	PointsReward int                 `json:"points_reward"`
	GemsReward   int                 `json:"gems_reward"`
	Position     int                 `json:"position"` // display order within category
}

// Validate checks if the AchievementDefinition has valid data.
func (d *AchievementDefinition) Validate() error {
	if d.ID == "" {
		return ErrEmptyAchievementID
	}

	if !ValidAchievementCategory(d.Category) {
		return ErrInvalidAchievementCategory
	}

	if d.TargetValue <= 0 {
		return ErrInvalidTargetValue
	}

	if d.PointsReward < 0 || d.GemsReward < 0 {
		return ErrNegativeReward
	}

	return nil
}

// AchievementProgress tracks one learner's progress against one catalog
// entry. The record moves through three states:
//
//	locked          CurrentProgress < target, UnlockedAt nil
//	ready to claim  CurrentProgress >= target, UnlockedAt nil
//	unlocked        UnlockedAt set, reward granted exactly once
//
// CurrentProgress is monotonically non-decreasing: progress checks always
// receive the current absolute count, never a delta.
type AchievementProgress struct {
	UserID          uuid.UUID  `json:"user_id"`
	AchievementID   string     `json:"achievement_id"`
	CurrentProgress int        `json:"current_progress"` // clamped to the target value
	UnlockedAt      *time.Time `json:"unlocked_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewAchievementProgress creates a zero-progress record for a learner and
// catalog entry.
func NewAchievementProgress(userID uuid.UUID, achievementID string, now time.Time) (*AchievementProgress, error) {
	progress := &AchievementProgress{
		UserID:        userID,
		AchievementID: achievementID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the AchievementProgress has valid data.
func (p *AchievementProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyAchievementUserID
	}

	if p.AchievementID == "" {
		return ErrEmptyAchievementID
	}

	if p.CurrentProgress < 0 {
		return ErrNegativeProgress
	}

	return nil
}

// IsUnlocked reports whether the reward has been granted.
func (p *AchievementProgress) IsUnlocked() bool {
	return p.UnlockedAt != nil
}

// IsReadyToClaim reports whether the target has been reached but the
// reward has not been granted yet.
func (p *AchievementProgress) IsReadyToClaim(target int) bool {
	return !p.IsUnlocked() && p.CurrentProgress >= target
}

// IsInProgress reports whether the record has some progress but is not
// unlocked. Used by the statistics query.
func (p *AchievementProgress) IsInProgress() bool {
	return !p.IsUnlocked() && p.CurrentProgress > 0
}
