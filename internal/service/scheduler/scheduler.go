// Package scheduler implements the Leitner review scheduler: which cards
// of a section are due, recording review outcomes with lazy state
// creation, and per-section statistics.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/domain/leitner"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/store"
)

// Card is one entry of a due-card listing.
type Card struct {
	WordID string     `json:"word_id"`
	Box    int        `json:"box"`
	New    bool       `json:"new"`
	DueAt  *time.Time `json:"due_at,omitempty"`
}

// Outcome is the result of recording a single review.
type Outcome struct {
	State *domain.WordReviewState

	// JustMastered is true when this review moved the card into the top
	// box for the first time since it last left it.
	JustMastered bool

	// FirstCorrect is true when this is the first correct answer the
	// card has ever received.
	FirstCorrect bool
}

// Scheduler is the Leitner scheduling service.
type Scheduler struct {
	reviewStore  store.ReviewStateStore
	catalogStore store.CatalogStore
	clock        clock.Clock
	logger       *slog.Logger
}

// New creates a scheduler.
func New(
	reviewStore store.ReviewStateStore,
	catalogStore store.CatalogStore,
	clk clock.Clock,
	logger *slog.Logger,
) *Scheduler {
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if catalogStore == nil {
		panic("catalogStore cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		reviewStore:  reviewStore,
		catalogStore: catalogStore,
		clock:        clk,
		logger:       logger.With(slog.String("component", "scheduler")),
	}
}

// WithTx returns a Scheduler whose stores are bound to the given
// transaction.
func (s *Scheduler) WithTx(tx *sql.Tx) *Scheduler {
	return &Scheduler{
		reviewStore:  s.reviewStore.WithTx(tx),
		catalogStore: s.catalogStore.WithTx(tx),
		clock:        s.clock,
		logger:       s.logger,
	}
}

// DueCards returns the cards of a section that are due for review, in
// catalog order. Words the learner has never reviewed are always due.
func (s *Scheduler) DueCards(ctx context.Context, userID uuid.UUID, sectionID string) ([]*Card, error) {
	wordIDs, err := s.catalogStore.WordsInSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	states, err := s.reviewStore.GetBatch(ctx, userID, wordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	now := s.clock.Now()
	due := make([]*Card, 0, len(wordIDs))
	for _, wordID := range wordIDs {
		state, ok := states[wordID]
		if !ok {
			due = append(due, &Card{WordID: wordID, Box: leitner.MinBox, New: true})
			continue
		}
		if !leitner.IsDue(state, now) {
			continue
		}

		card := &Card{WordID: wordID, Box: state.BoxNumber, New: state.IsNew()}
		if at, finite := leitner.NextDueAt(state); finite {
			card.DueAt = &at
		}
		due = append(due, card)
	}

	return due, nil
}

// DueCount returns how many cards of a section are currently due.
func (s *Scheduler) DueCount(ctx context.Context, userID uuid.UUID, sectionID string) (int, error) {
	due, err := s.DueCards(ctx, userID, sectionID)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}

// RecordOutcome applies a review outcome to a word's box state. State is
// created lazily at box 1 on the first review, so unknown word ids are
// never an error. The caller owns the transaction.
func (s *Scheduler) RecordOutcome(ctx context.Context, tx *sql.Tx, userID uuid.UUID, wordID string, knewIt bool) (*Outcome, error) {
	txStore := s.reviewStore.WithTx(tx)
	now := s.clock.Now()

	state, err := txStore.GetForUpdate(ctx, userID, wordID)
	created := false
	if err != nil {
		if !errors.Is(err, store.ErrReviewStateNotFound) {
			return nil, fmt.Errorf("failed to lock review state: %w", err)
		}
		state, err = domain.NewWordReviewState(userID, wordID, now)
		if err != nil {
			return nil, err
		}
		if err := txStore.Create(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to create review state: %w", err)
		}
		created = true
	}

	wasMastered := state.IsMastered()

	state.BoxNumber = leitner.Advance(state.BoxNumber, knewIt)
	state.ReviewCount++
	if knewIt {
		state.CorrectCount++
	}
	reviewedAt := now
	state.LastReviewedAt = &reviewedAt
	state.UpdatedAt = now

	if err := txStore.Update(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to update review state: %w", err)
	}

	outcome := &Outcome{
		State:        state,
		JustMastered: !wasMastered && state.IsMastered(),
		FirstCorrect: knewIt && state.CorrectCount == 1,
	}

	s.logger.Debug("recorded review outcome",
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID),
		slog.Bool("knew_it", knewIt),
		slog.Bool("created", created),
		slog.Int("box", state.BoxNumber))

	return outcome, nil
}

// Statistics summarizes a section's review state for the learner.
func (s *Scheduler) Statistics(ctx context.Context, userID uuid.UUID, sectionID string) (leitner.Statistics, error) {
	stats := leitner.NewStatistics()

	wordIDs, err := s.catalogStore.WordsInSection(ctx, sectionID)
	if err != nil {
		return stats, err
	}

	states, err := s.reviewStore.GetBatch(ctx, userID, wordIDs)
	if err != nil {
		return stats, fmt.Errorf("failed to load review state: %w", err)
	}

	now := s.clock.Now()
	stats.Total = len(wordIDs)
	for _, wordID := range wordIDs {
		state, ok := states[wordID]
		if !ok {
			stats.New++
			stats.Due++
			stats.PerBox[leitner.MinBox]++
			continue
		}

		stats.PerBox[state.BoxNumber]++
		if state.IsNew() {
			stats.New++
		}
		if state.IsMastered() {
			stats.Mastered++
		}
		if leitner.IsDue(state, now) {
			stats.Due++
		}
	}

	return stats, nil
}
