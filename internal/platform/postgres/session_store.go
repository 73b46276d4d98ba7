package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface using
// a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.PracticeSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO practice_sessions
			(id, user_id, kind, words_studied, accuracy, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Kind,
		session.WordsStudied,
		session.Accuracy,
		session.DurationSeconds,
		session.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// CountByUser implements store.SessionStore.CountByUser.
func (s *PostgresSessionStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM practice_sessions WHERE user_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountPerfect implements store.SessionStore.CountPerfect.
func (s *PostgresSessionStore) CountPerfect(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM practice_sessions WHERE user_id = $1 AND accuracy >= 1.0`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.SessionStore.WithTx.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
