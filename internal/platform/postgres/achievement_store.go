package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// PostgresAchievementStore implements the store.AchievementStore interface
// using a PostgreSQL database as the storage backend. Catalog entries live
// in the seeded achievements table; per-learner progress lives in
// achievement_progress.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation of
// the AchievementStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

const achievementColumns = `
	id, title, description, category, tier,
	target_value, points_reward, gems_reward, position
`

const progressRowColumns = `
	user_id, achievement_id, current_progress, unlocked_at, created_at, updated_at
`

// GetDefinition implements store.AchievementStore.GetDefinition.
func (s *PostgresAchievementStore) GetDefinition(ctx context.Context, id string) (*domain.AchievementDefinition, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements WHERE id = $1`

	var def domain.AchievementDefinition
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&def.ID,
		&def.Title,
		&def.Description,
		&def.Category,
		&def.Tier,
		&def.TargetValue,
		&def.PointsReward,
		&def.GemsReward,
		&def.Position,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAchievementNotFound
		}
		return nil, MapError(err)
	}

	return &def, nil
}

// ListDefinitions implements store.AchievementStore.ListDefinitions.
func (s *PostgresAchievementStore) ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements ORDER BY category, position`
	return s.listDefinitions(ctx, query)
}

// ListDefinitionsByCategory implements store.AchievementStore.ListDefinitionsByCategory.
func (s *PostgresAchievementStore) ListDefinitionsByCategory(ctx context.Context, category domain.AchievementCategory) ([]*domain.AchievementDefinition, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements WHERE category = $1 ORDER BY position`
	return s.listDefinitions(ctx, query, category)
}

func (s *PostgresAchievementStore) listDefinitions(ctx context.Context, query string, args ...any) ([]*domain.AchievementDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var defs []*domain.AchievementDefinition
	for rows.Next() {
		var def domain.AchievementDefinition
		err := rows.Scan(
			&def.ID,
			&def.Title,
			&def.Description,
			&def.Category,
			&def.Tier,
			&def.TargetValue,
			&def.PointsReward,
			&def.GemsReward,
			&def.Position,
		)
		if err != nil {
			return nil, MapError(err)
		}
		defs = append(defs, &def)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return defs, nil
}

// GetProgress implements store.AchievementStore.GetProgress.
func (s *PostgresAchievementStore) GetProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error) {
	query := `SELECT ` + progressRowColumns + ` FROM achievement_progress WHERE user_id = $1 AND achievement_id = $2`
	return s.scanProgressRow(s.db.QueryRowContext(ctx, query, userID, achievementID))
}

// GetProgressForUpdate implements store.AchievementStore.GetProgressForUpdate.
func (s *PostgresAchievementStore) GetProgressForUpdate(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.AchievementProgress, error) {
	query := `SELECT ` + progressRowColumns + ` FROM achievement_progress WHERE user_id = $1 AND achievement_id = $2 FOR UPDATE`
	return s.scanProgressRow(s.db.QueryRowContext(ctx, query, userID, achievementID))
}

// ListProgress implements store.AchievementStore.ListProgress.
func (s *PostgresAchievementStore) ListProgress(ctx context.Context, userID uuid.UUID) (map[string]*domain.AchievementProgress, error) {
	query := `SELECT ` + progressRowColumns + ` FROM achievement_progress WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	progress := make(map[string]*domain.AchievementProgress)
	for rows.Next() {
		var p domain.AchievementProgress
		var unlockedAt sql.NullTime
		var createdAt, updatedAt time.Time

		err := rows.Scan(
			&p.UserID,
			&p.AchievementID,
			&p.CurrentProgress,
			&unlockedAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}

		if unlockedAt.Valid {
			t := unlockedAt.Time.UTC()
			p.UnlockedAt = &t
		}
		p.CreatedAt = createdAt.UTC()
		p.UpdatedAt = updatedAt.UTC()

		progress[p.AchievementID] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return progress, nil
}

// CreateProgress implements store.AchievementStore.CreateProgress.
func (s *PostgresAchievementStore) CreateProgress(ctx context.Context, progress *domain.AchievementProgress) error {
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO achievement_progress (` + progressRowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.AchievementID,
		progress.CurrentProgress,
		progress.UnlockedAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// UpdateProgress implements store.AchievementStore.UpdateProgress.
func (s *PostgresAchievementStore) UpdateProgress(ctx context.Context, progress *domain.AchievementProgress) error {
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE achievement_progress
		SET current_progress = $3, unlocked_at = $4, updated_at = $5
		WHERE user_id = $1 AND achievement_id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.AchievementID,
		progress.CurrentProgress,
		progress.UnlockedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	return nil
}

// WithTx implements store.AchievementStore.WithTx.
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresAchievementStore) scanProgressRow(row *sql.Row) (*domain.AchievementProgress, error) {
	var p domain.AchievementProgress
	var unlockedAt sql.NullTime
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&p.UserID,
		&p.AchievementID,
		&p.CurrentProgress,
		&unlockedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, MapError(err)
	}

	if unlockedAt.Valid {
		t := unlockedAt.Time.UTC()
		p.UnlockedAt = &t
	}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()

	return &p, nil
}
