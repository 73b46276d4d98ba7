package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// MockSessionStore implements store.SessionStore for testing.
type MockSessionStore struct {
	Sessions []*domain.PracticeSession
}

// NewMockSessionStore creates a mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

var _ store.SessionStore = (*MockSessionStore)(nil)

// Create implements store.SessionStore.
func (m *MockSessionStore) Create(ctx context.Context, session *domain.PracticeSession) error {
	copied := *session
	m.Sessions = append(m.Sessions, &copied)
	return nil
}

// CountByUser implements store.SessionStore.
func (m *MockSessionStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, s := range m.Sessions {
		if s.UserID == userID {
			count++
		}
	}
	return count, nil
}

// CountPerfect implements store.SessionStore.
func (m *MockSessionStore) CountPerfect(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, s := range m.Sessions {
		if s.UserID == userID && s.IsPerfect() {
			count++
		}
	}
	return count, nil
}

// WithTx implements store.SessionStore.
func (m *MockSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return m
}

// MockCatalogStore implements store.CatalogStore for testing. Sections
// maps section ids to word ids in catalog order; the mastered counts are
// set directly by tests.
type MockCatalogStore struct {
	Sections map[string][]string

	SectionsMastered int
	UnitsMastered    int
}

// NewMockCatalogStore creates a mock catalog store.
func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{
		Sections: make(map[string][]string),
	}
}

var _ store.CatalogStore = (*MockCatalogStore)(nil)

// WordsInSection implements store.CatalogStore.
func (m *MockCatalogStore) WordsInSection(ctx context.Context, sectionID string) ([]string, error) {
	words, ok := m.Sections[sectionID]
	if !ok {
		return nil, store.ErrSectionNotFound
	}
	return words, nil
}

// CountSectionsMastered implements store.CatalogStore.
func (m *MockCatalogStore) CountSectionsMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.SectionsMastered, nil
}

// CountUnitsMastered implements store.CatalogStore.
func (m *MockCatalogStore) CountUnitsMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.UnitsMastered, nil
}

// WithTx implements store.CatalogStore.
func (m *MockCatalogStore) WithTx(tx *sql.Tx) store.CatalogStore {
	return m
}
