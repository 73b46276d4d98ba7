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

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

const progressColumns = `
	user_id, total_points, total_gems, current_streak,
	last_study_date, last_mastered_milestone, created_at, updated_at
`

// Create implements store.ProgressStore.Create.
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.UserProgress) error {
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.TotalPoints,
		progress.TotalGems,
		progress.CurrentStreak,
		progress.LastStudyDate,
		progress.LastMasteredMilestone,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// Get implements store.ProgressStore.Get.
func (s *PostgresProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1`
	return s.scanProgress(s.db.QueryRowContext(ctx, query, userID))
}

// GetForUpdate implements store.ProgressStore.GetForUpdate. The row lock
// serializes concurrent reward mutations against the same learner.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 FOR UPDATE`
	return s.scanProgress(s.db.QueryRowContext(ctx, query, userID))
}

// Update implements store.ProgressStore.Update.
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.UserProgress) error {
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE user_progress
		SET total_points = $2, total_gems = $3, current_streak = $4,
		    last_study_date = $5, last_mastered_milestone = $6, updated_at = $7
		WHERE user_id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.TotalPoints,
		progress.TotalGems,
		progress.CurrentStreak,
		progress.LastStudyDate,
		progress.LastMasteredMilestone,
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
		return store.ErrProgressNotFound
	}

	return nil
}

// WithTx implements store.ProgressStore.WithTx.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresProgressStore) scanProgress(row *sql.Row) (*domain.UserProgress, error) {
	var progress domain.UserProgress
	var lastStudy sql.NullTime
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&progress.UserID,
		&progress.TotalPoints,
		&progress.TotalGems,
		&progress.CurrentStreak,
		&lastStudy,
		&progress.LastMasteredMilestone,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrProgressNotFound
		}
		return nil, MapError(err)
	}

	if lastStudy.Valid {
		t := lastStudy.Time.UTC()
		progress.LastStudyDate = &t
	}
	progress.CreatedAt = createdAt.UTC()
	progress.UpdatedAt = updatedAt.UTC()

	return &progress, nil
}
