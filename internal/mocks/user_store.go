package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	Users map[uuid.UUID]*domain.User

	CreateErr error
}

// NewMockUserStore creates a mock user store.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{
		Users: make(map[uuid.UUID]*domain.User),
	}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements store.UserStore. The mock does not hash passwords.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// WithTx implements store.UserStore.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
