package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// PostgresEntityStore implements the store.EntityStore interface using a
// PostgreSQL database as the storage backend. Entity definitions live in
// the seeded gated_entities table; per-learner unlocks live in
// entity_unlocks.
type PostgresEntityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEntityStore creates a new PostgreSQL implementation of the
// EntityStore interface. If logger is nil, a default logger will be used.
func NewPostgresEntityStore(db store.DBTX, logger *slog.Logger) *PostgresEntityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEntityStore{
		db:     db,
		logger: logger.With(slog.String("component", "entity_store")),
	}
}

// Ensure PostgresEntityStore implements store.EntityStore interface
var _ store.EntityStore = (*PostgresEntityStore)(nil)

const entityColumns = `
	id, kind, title, cost_type, required_points, required_gems, position
`

// Get implements store.EntityStore.Get.
func (s *PostgresEntityStore) Get(ctx context.Context, id string) (*domain.GatedEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM gated_entities WHERE id = $1`

	var entity domain.GatedEntity
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&entity.ID,
		&entity.Kind,
		&entity.Title,
		&entity.CostType,
		&entity.RequiredPoints,
		&entity.RequiredGems,
		&entity.Position,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrEntityNotFound
		}
		return nil, MapError(err)
	}

	return &entity, nil
}

// List implements store.EntityStore.List.
func (s *PostgresEntityStore) List(ctx context.Context) ([]*domain.GatedEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM gated_entities ORDER BY kind, position`
	return s.listEntities(ctx, query)
}

// ListByCostType implements store.EntityStore.ListByCostType. Rows come
// back in ascending threshold order so the unlock gate can stop scanning
// at the first entity the learner cannot afford.
func (s *PostgresEntityStore) ListByCostType(ctx context.Context, costType domain.CostType) ([]*domain.GatedEntity, error) {
	var query string
	switch costType {
	case domain.CostTypeGems:
		query = `SELECT ` + entityColumns + ` FROM gated_entities WHERE cost_type = $1 ORDER BY required_gems, position`
	default:
		query = `SELECT ` + entityColumns + ` FROM gated_entities WHERE cost_type = $1 ORDER BY required_points, position`
	}
	return s.listEntities(ctx, query, costType)
}

func (s *PostgresEntityStore) listEntities(ctx context.Context, query string, args ...any) ([]*domain.GatedEntity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var entities []*domain.GatedEntity
	for rows.Next() {
		var entity domain.GatedEntity
		err := rows.Scan(
			&entity.ID,
			&entity.Kind,
			&entity.Title,
			&entity.CostType,
			&entity.RequiredPoints,
			&entity.RequiredGems,
			&entity.Position,
		)
		if err != nil {
			return nil, MapError(err)
		}
		entities = append(entities, &entity)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entities, nil
}

// IsUnlocked implements store.EntityStore.IsUnlocked.
func (s *PostgresEntityStore) IsUnlocked(ctx context.Context, userID uuid.UUID, entityID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM gated_entities
			WHERE id = $2 AND required_points = 0 AND required_gems = 0
		) OR EXISTS (
			SELECT 1 FROM entity_unlocks
			WHERE user_id = $1 AND entity_id = $2
		)
	`

	var unlocked bool
	if err := s.db.QueryRowContext(ctx, query, userID, entityID).Scan(&unlocked); err != nil {
		return false, MapError(err)
	}
	return unlocked, nil
}

// ListUnlocked implements store.EntityStore.ListUnlocked.
func (s *PostgresEntityStore) ListUnlocked(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	query := `SELECT entity_id, unlocked_at FROM entity_unlocks WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var entityID string
		var unlockedAt time.Time
		if err := rows.Scan(&entityID, &unlockedAt); err != nil {
			return nil, MapError(err)
		}
		unlocked[entityID] = unlockedAt.UTC()
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return unlocked, nil
}

// Unlock implements store.EntityStore.Unlock. The conflict clause makes
// repeat unlocks a no-op, so re-evaluation after every award stays safe.
func (s *PostgresEntityStore) Unlock(ctx context.Context, userID uuid.UUID, entityID string, at time.Time) error {
	query := `
		INSERT INTO entity_unlocks (user_id, entity_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, entity_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, userID, entityID, at); err != nil {
		return MapError(err)
	}
	return nil
}

// CountUnlockedUnits implements store.EntityStore.CountUnlockedUnits.
// Default units count too since they never need an unlock row.
func (s *PostgresEntityStore) CountUnlockedUnits(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM gated_entities e
		WHERE e.kind = 'unit'
		  AND (
			(e.required_points = 0 AND e.required_gems = 0)
			OR EXISTS (
				SELECT 1 FROM entity_unlocks u
				WHERE u.user_id = $1 AND u.entity_id = e.id
			)
		  )
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// RelockAll implements store.EntityStore.RelockAll.
func (s *PostgresEntityStore) RelockAll(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM entity_unlocks WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return MapError(err)
	}
	return nil
}

// WithTx implements store.EntityStore.WithTx.
func (s *PostgresEntityStore) WithTx(tx *sql.Tx) store.EntityStore {
	return &PostgresEntityStore{
		db:     tx,
		logger: s.logger,
	}
}
