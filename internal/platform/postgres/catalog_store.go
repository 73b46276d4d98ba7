package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexora-app/mastery-api/internal/store"
)

// PostgresCatalogStore implements the store.CatalogStore interface over
// the seeded catalog tables. The scheduler only ever reads from it.
type PostgresCatalogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a new PostgreSQL implementation of the
// CatalogStore interface. If logger is nil, a default logger will be used.
func NewPostgresCatalogStore(db store.DBTX, logger *slog.Logger) *PostgresCatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCatalogStore{
		db:     db,
		logger: logger.With(slog.String("component", "catalog_store")),
	}
}

// Ensure PostgresCatalogStore implements store.CatalogStore interface
var _ store.CatalogStore = (*PostgresCatalogStore)(nil)

// WordsInSection implements store.CatalogStore.WordsInSection. The
// position column preserves the section's presentation order, which the
// scheduler keeps when filtering for due cards.
func (s *PostgresCatalogStore) WordsInSection(ctx context.Context, sectionID string) ([]string, error) {
	exists, err := s.sectionExists(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrSectionNotFound
	}

	query := `SELECT word_id FROM catalog_words WHERE section_id = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var wordIDs []string
	for rows.Next() {
		var wordID string
		if err := rows.Scan(&wordID); err != nil {
			return nil, MapError(err)
		}
		wordIDs = append(wordIDs, wordID)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return wordIDs, nil
}

// CountSectionsMastered implements store.CatalogStore.CountSectionsMastered.
// A section counts once every one of its words sits in the top box.
func (s *PostgresCatalogStore) CountSectionsMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM catalog_sections cs
		WHERE NOT EXISTS (
			SELECT 1 FROM catalog_words w
			LEFT JOIN word_review_states r
			  ON r.user_id = $1 AND r.word_id = w.word_id
			WHERE w.section_id = cs.id
			  AND (r.word_id IS NULL OR r.box_number < 5)
		)
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountUnitsMastered implements store.CatalogStore.CountUnitsMastered.
func (s *PostgresCatalogStore) CountUnitsMastered(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT cs.unit_id) FROM catalog_sections cs
		WHERE cs.unit_id NOT IN (
			SELECT cs2.unit_id FROM catalog_sections cs2
			JOIN catalog_words w ON w.section_id = cs2.id
			LEFT JOIN word_review_states r
			  ON r.user_id = $1 AND r.word_id = w.word_id
			WHERE r.word_id IS NULL OR r.box_number < 5
		)
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.CatalogStore.WithTx.
func (s *PostgresCatalogStore) WithTx(tx *sql.Tx) store.CatalogStore {
	return &PostgresCatalogStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresCatalogStore) sectionExists(ctx context.Context, sectionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM catalog_sections WHERE id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, sectionID).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}
