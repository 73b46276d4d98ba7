package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

type reviewKey struct {
	userID uuid.UUID
	wordID string
}

// MockReviewStateStore implements store.ReviewStateStore for testing.
type MockReviewStateStore struct {
	States map[reviewKey]*domain.WordReviewState
}

// NewMockReviewStateStore creates a mock review state store.
func NewMockReviewStateStore() *MockReviewStateStore {
	return &MockReviewStateStore{
		States: make(map[reviewKey]*domain.WordReviewState),
	}
}

var _ store.ReviewStateStore = (*MockReviewStateStore)(nil)

// Seed stores review state directly, bypassing Create.
func (m *MockReviewStateStore) Seed(state *domain.WordReviewState) {
	copied := *state
	m.States[reviewKey{state.UserID, state.WordID}] = &copied
}

// Create implements store.ReviewStateStore.
func (m *MockReviewStateStore) Create(ctx context.Context, state *domain.WordReviewState) error {
	key := reviewKey{state.UserID, state.WordID}
	if _, exists := m.States[key]; exists {
		return store.ErrDuplicate
	}
	copied := *state
	m.States[key] = &copied
	return nil
}

// Get implements store.ReviewStateStore.
func (m *MockReviewStateStore) Get(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error) {
	state, ok := m.States[reviewKey{userID, wordID}]
	if !ok {
		return nil, store.ErrReviewStateNotFound
	}
	copied := *state
	return &copied, nil
}

// GetForUpdate implements store.ReviewStateStore.
func (m *MockReviewStateStore) GetForUpdate(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error) {
	return m.Get(ctx, userID, wordID)
}

// GetBatch implements store.ReviewStateStore.
func (m *MockReviewStateStore) GetBatch(ctx context.Context, userID uuid.UUID, wordIDs []string) (map[string]*domain.WordReviewState, error) {
	states := make(map[string]*domain.WordReviewState)
	for _, wordID := range wordIDs {
		if state, ok := m.States[reviewKey{userID, wordID}]; ok {
			copied := *state
			states[wordID] = &copied
		}
	}
	return states, nil
}

// Update implements store.ReviewStateStore.
func (m *MockReviewStateStore) Update(ctx context.Context, state *domain.WordReviewState) error {
	key := reviewKey{state.UserID, state.WordID}
	if _, ok := m.States[key]; !ok {
		return store.ErrReviewStateNotFound
	}
	copied := *state
	m.States[key] = &copied
	return nil
}

// CountReviewed implements store.ReviewStateStore.
func (m *MockReviewStateStore) CountReviewed(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for key, state := range m.States {
		if key.userID == userID && state.LastReviewedAt != nil {
			count++
		}
	}
	return count, nil
}

// CountMastered implements store.ReviewStateStore.
func (m *MockReviewStateStore) CountMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for key, state := range m.States {
		if key.userID == userID && state.IsMastered() {
			count++
		}
	}
	return count, nil
}

// WithTx implements store.ReviewStateStore.
func (m *MockReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return m
}
