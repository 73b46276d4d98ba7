package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

type unlockKey struct {
	userID   uuid.UUID
	entityID string
}

// MockEntityStore implements store.EntityStore for testing. Entities act
// as the seeded catalog; Unlocks as the per-learner unlock rows.
type MockEntityStore struct {
	Entities map[string]*domain.GatedEntity
	Unlocks  map[unlockKey]time.Time
}

// NewMockEntityStore creates a mock entity store.
func NewMockEntityStore(entities ...*domain.GatedEntity) *MockEntityStore {
	m := &MockEntityStore{
		Entities: make(map[string]*domain.GatedEntity),
		Unlocks:  make(map[unlockKey]time.Time),
	}
	for _, e := range entities {
		m.Entities[e.ID] = e
	}
	return m
}

var _ store.EntityStore = (*MockEntityStore)(nil)

// Get implements store.EntityStore.
func (m *MockEntityStore) Get(ctx context.Context, id string) (*domain.GatedEntity, error) {
	entity, ok := m.Entities[id]
	if !ok {
		return nil, store.ErrEntityNotFound
	}
	copied := *entity
	return &copied, nil
}

// List implements store.EntityStore.
func (m *MockEntityStore) List(ctx context.Context) ([]*domain.GatedEntity, error) {
	entities := make([]*domain.GatedEntity, 0, len(m.Entities))
	for _, e := range m.Entities {
		copied := *e
		entities = append(entities, &copied)
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Kind != entities[j].Kind {
			return entities[i].Kind < entities[j].Kind
		}
		return entities[i].Position < entities[j].Position
	})
	return entities, nil
}

// ListByCostType implements store.EntityStore, in ascending threshold order.
func (m *MockEntityStore) ListByCostType(ctx context.Context, costType domain.CostType) ([]*domain.GatedEntity, error) {
	var entities []*domain.GatedEntity
	for _, e := range m.Entities {
		if e.CostType != costType {
			continue
		}
		copied := *e
		entities = append(entities, &copied)
	}
	sort.Slice(entities, func(i, j int) bool {
		if costType == domain.CostTypeGems {
			if entities[i].RequiredGems != entities[j].RequiredGems {
				return entities[i].RequiredGems < entities[j].RequiredGems
			}
		} else if entities[i].RequiredPoints != entities[j].RequiredPoints {
			return entities[i].RequiredPoints < entities[j].RequiredPoints
		}
		return entities[i].Position < entities[j].Position
	})
	return entities, nil
}

// IsUnlocked implements store.EntityStore.
func (m *MockEntityStore) IsUnlocked(ctx context.Context, userID uuid.UUID, entityID string) (bool, error) {
	if entity, ok := m.Entities[entityID]; ok && entity.IsDefault() {
		return true, nil
	}
	_, ok := m.Unlocks[unlockKey{userID, entityID}]
	return ok, nil
}

// ListUnlocked implements store.EntityStore.
func (m *MockEntityStore) ListUnlocked(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	unlocked := make(map[string]time.Time)
	for key, at := range m.Unlocks {
		if key.userID == userID {
			unlocked[key.entityID] = at
		}
	}
	return unlocked, nil
}

// Unlock implements store.EntityStore.
func (m *MockEntityStore) Unlock(ctx context.Context, userID uuid.UUID, entityID string, at time.Time) error {
	key := unlockKey{userID, entityID}
	if _, ok := m.Unlocks[key]; ok {
		return nil
	}
	m.Unlocks[key] = at
	return nil
}

// CountUnlockedUnits implements store.EntityStore.
func (m *MockEntityStore) CountUnlockedUnits(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, e := range m.Entities {
		if e.Kind != domain.EntityKindUnit {
			continue
		}
		unlocked, _ := m.IsUnlocked(ctx, userID, e.ID)
		if unlocked {
			count++
		}
	}
	return count, nil
}

// RelockAll implements store.EntityStore.
func (m *MockEntityStore) RelockAll(ctx context.Context, userID uuid.UUID) error {
	for key := range m.Unlocks {
		if key.userID == userID {
			delete(m.Unlocks, key)
		}
	}
	return nil
}

// WithTx implements store.EntityStore.
func (m *MockEntityStore) WithTx(tx *sql.Tx) store.EntityStore {
	return m
}
