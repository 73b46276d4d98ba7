package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

type progressKey struct {
	userID        uuid.UUID
	achievementID string
}

// MockAchievementStore implements store.AchievementStore for testing.
// Definitions act as the seeded catalog.
type MockAchievementStore struct {
	Definitions map[string]*domain.AchievementDefinition
	Progress    map[progressKey]*domain.AchievementProgress
}

// NewMockAchievementStore creates a mock achievement store seeded with
// the given definitions.
func NewMockAchievementStore(defs ...*domain.AchievementDefinition) *MockAchievementStore {
	m := &MockAchievementStore{
		Definitions: make(map[string]*domain.AchievementDefinition),
		Progress:    make(map[progressKey]*domain.AchievementProgress),
	}
	for _, def := range defs {
		m.Definitions[def.ID] = def
	}
	return m
}

var _ store.AchievementStore = (*MockAchievementStore)(nil)

// GetDefinition implements store.AchievementStore.
func (m *MockAchievementStore) GetDefinition(ctx context.Context, id string) (*domain.AchievementDefinition, error) {
	def, ok := m.Definitions[id]
	if !ok {
		return nil, store.ErrAchievementNotFound
	}
	copied := *def
	return &copied, nil
}

// ListDefinitions implements store.AchievementStore.
func (m *MockAchievementStore) ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error) {
	defs := make([]*domain.AchievementDefinition, 0, len(m.Definitions))
	for _, def := range m.Definitions {
		copied := *def
		defs = append(defs, &copied)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}
		return defs[i].Position < defs[j].Position
	})
	return defs, nil
}

// ListDefinitionsByCategory implements store.AchievementStore.
func (m *MockAchievementStore) ListDefinitionsByCategory(ctx context.Context, category domain.AchievementCategory) ([]*domain.AchievementDefinition, error) {
	var defs []*domain.AchievementDefinition
	for _, def := range m.Definitions {
		if def.Category != category {
			continue
		}
		copied := *def
		defs = append(defs, &copied)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Position < defs[j].Position
	})
	return defs, nil
}

// GetProgress implements store.AchievementStore.
func (m *MockAchievementStore) GetProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error) {
	progress, ok := m.Progress[progressKey{userID, achievementID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *progress
	return &copied, nil
}

// GetProgressForUpdate implements store.AchievementStore.
func (m *MockAchievementStore) GetProgressForUpdate(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error) {
	return m.GetProgress(ctx, userID, achievementID)
}

// ListProgress implements store.AchievementStore.
func (m *MockAchievementStore) ListProgress(ctx context.Context, userID uuid.UUID) (map[string]*domain.AchievementProgress, error) {
	progress := make(map[string]*domain.AchievementProgress)
	for key, p := range m.Progress {
		if key.userID == userID {
			copied := *p
			progress[key.achievementID] = &copied
		}
	}
	return progress, nil
}

// CreateProgress implements store.AchievementStore.
func (m *MockAchievementStore) CreateProgress(ctx context.Context, progress *domain.AchievementProgress) error {
	key := progressKey{progress.UserID, progress.AchievementID}
	if _, exists := m.Progress[key]; exists {
		return store.ErrDuplicate
	}
	copied := *progress
	m.Progress[key] = &copied
	return nil
}

// UpdateProgress implements store.AchievementStore.
func (m *MockAchievementStore) UpdateProgress(ctx context.Context, progress *domain.AchievementProgress) error {
	key := progressKey{progress.UserID, progress.AchievementID}
	if _, ok := m.Progress[key]; !ok {
		return store.ErrNotFound
	}
	copied := *progress
	m.Progress[key] = &copied
	return nil
}

// WithTx implements store.AchievementStore.
func (m *MockAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return m
}
