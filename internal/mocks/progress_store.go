package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// MockProgressStore implements store.ProgressStore for testing.
type MockProgressStore struct {
	Records map[uuid.UUID]*domain.UserProgress

	// Error injection
	GetErr    error
	UpdateErr error
}

// NewMockProgressStore creates a mock progress store.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		Records: make(map[uuid.UUID]*domain.UserProgress),
	}
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

// Seed stores a progress record directly, bypassing Create.
func (m *MockProgressStore) Seed(progress *domain.UserProgress) {
	copied := *progress
	m.Records[progress.UserID] = &copied
}

// Create implements store.ProgressStore.
func (m *MockProgressStore) Create(ctx context.Context, progress *domain.UserProgress) error {
	if _, exists := m.Records[progress.UserID]; exists {
		return store.ErrDuplicate
	}
	copied := *progress
	m.Records[progress.UserID] = &copied
	return nil
}

// Get implements store.ProgressStore.
func (m *MockProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	progress, ok := m.Records[userID]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	copied := *progress
	return &copied, nil
}

// GetForUpdate implements store.ProgressStore.
func (m *MockProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	return m.Get(ctx, userID)
}

// Update implements store.ProgressStore.
func (m *MockProgressStore) Update(ctx context.Context, progress *domain.UserProgress) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Records[progress.UserID]; !ok {
		return store.ErrProgressNotFound
	}
	copied := *progress
	m.Records[progress.UserID] = &copied
	return nil
}

// WithTx implements store.ProgressStore.
func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}
