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

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a new PostgreSQL implementation of
// the ReviewStateStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

const reviewColumns = `
	user_id, word_id, box_number, last_reviewed_at,
	review_count, correct_count, created_at, updated_at
`

// Create implements store.ReviewStateStore.Create.
func (s *PostgresReviewStateStore) Create(ctx context.Context, state *domain.WordReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO word_review_states (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.UserID,
		state.WordID,
		state.BoxNumber,
		state.LastReviewedAt,
		state.ReviewCount,
		state.CorrectCount,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// Get implements store.ReviewStateStore.Get.
func (s *PostgresReviewStateStore) Get(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error) {
	query := `SELECT ` + reviewColumns + ` FROM word_review_states WHERE user_id = $1 AND word_id = $2`
	return s.scanState(s.db.QueryRowContext(ctx, query, userID, wordID))
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate.
func (s *PostgresReviewStateStore) GetForUpdate(ctx context.Context, userID uuid.UUID, wordID string) (*domain.WordReviewState, error) {
	query := `SELECT ` + reviewColumns + ` FROM word_review_states WHERE user_id = $1 AND word_id = $2 FOR UPDATE`
	return s.scanState(s.db.QueryRowContext(ctx, query, userID, wordID))
}

// GetBatch implements store.ReviewStateStore.GetBatch.
func (s *PostgresReviewStateStore) GetBatch(ctx context.Context, userID uuid.UUID, wordIDs []string) (map[string]*domain.WordReviewState, error) {
	states := make(map[string]*domain.WordReviewState, len(wordIDs))
	if len(wordIDs) == 0 {
		return states, nil
	}

	query := `SELECT ` + reviewColumns + ` FROM word_review_states WHERE user_id = $1 AND word_id = ANY($2)`

	rows, err := s.db.QueryContext(ctx, query, userID, wordIDs)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	for rows.Next() {
		state, err := scanStateFromRows(rows)
		if err != nil {
			return nil, MapError(err)
		}
		states[state.WordID] = state
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return states, nil
}

// Update implements store.ReviewStateStore.Update.
func (s *PostgresReviewStateStore) Update(ctx context.Context, state *domain.WordReviewState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE word_review_states
		SET box_number = $3, last_reviewed_at = $4, review_count = $5,
		    correct_count = $6, updated_at = $7
		WHERE user_id = $1 AND word_id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		state.UserID,
		state.WordID,
		state.BoxNumber,
		state.LastReviewedAt,
		state.ReviewCount,
		state.CorrectCount,
		state.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrReviewStateNotFound
	}

	return nil
}

// CountReviewed implements store.ReviewStateStore.CountReviewed.
func (s *PostgresReviewStateStore) CountReviewed(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM word_review_states WHERE user_id = $1 AND last_reviewed_at IS NOT NULL`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountMastered implements store.ReviewStateStore.CountMastered.
func (s *PostgresReviewStateStore) CountMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM word_review_states WHERE user_id = $1 AND box_number = 5`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.ReviewStateStore.WithTx.
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresReviewStateStore) scanState(row *sql.Row) (*domain.WordReviewState, error) {
	var state domain.WordReviewState
	var lastReviewed sql.NullTime
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&state.UserID,
		&state.WordID,
		&state.BoxNumber,
		&lastReviewed,
		&state.ReviewCount,
		&state.CorrectCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrReviewStateNotFound
		}
		return nil, MapError(err)
	}

	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		state.LastReviewedAt = &t
	}
	state.CreatedAt = createdAt.UTC()
	state.UpdatedAt = updatedAt.UTC()

	return &state, nil
}

func scanStateFromRows(rows *sql.Rows) (*domain.WordReviewState, error) {
	var state domain.WordReviewState
	var lastReviewed sql.NullTime
	var createdAt, updatedAt time.Time

	err := rows.Scan(
		&state.UserID,
		&state.WordID,
		&state.BoxNumber,
		&lastReviewed,
		&state.ReviewCount,
		&state.CorrectCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		state.LastReviewedAt = &t
	}
	state.CreatedAt = createdAt.UTC()
	state.UpdatedAt = updatedAt.UTC()

	return &state, nil
}
