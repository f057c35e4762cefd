package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
)

const recitationColumns = `id, user_id, text_id, status, proficiency, review_count, notes,
	first_started_at, last_reviewed_at, next_review_at, created_at, updated_at`

// PostgresRecitationStore implements the store.RecitationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRecitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRecitationStore creates a new PostgreSQL implementation of the RecitationStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRecitationStore(db store.DBTX, logger *slog.Logger) *PostgresRecitationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRecitationStore{
		db:     db,
		logger: logger.With(slog.String("component", "recitation_store")),
	}
}

// Ensure PostgresRecitationStore implements store.RecitationStore interface
var _ store.RecitationStore = (*PostgresRecitationStore)(nil)

// WithTx implements store.RecitationStore.WithTx
func (s *PostgresRecitationStore) WithTx(tx *sql.Tx) store.RecitationStore {
	return &PostgresRecitationStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.RecitationStore.Create
func (s *PostgresRecitationStore) Create(ctx context.Context, rec *domain.RecitationRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO recitation_records (` + recitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.TextID,
		rec.Status,
		rec.Proficiency,
		rec.ReviewCount,
		rec.Notes,
		rec.FirstStartedAt,
		rec.LastReviewedAt,
		rec.NextReviewAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrRecitationExists) {
			log.Debug("recitation already exists",
				slog.String("user_id", rec.UserID.String()),
				slog.String("text_id", rec.TextID.String()))
		} else {
			log.Error("failed to insert recitation",
				slog.String("recitation_id", rec.ID.String()),
				slog.String("error", err.Error()))
		}
		return mapped
	}

	log.Debug("recitation created",
		slog.String("recitation_id", rec.ID.String()),
		slog.String("user_id", rec.UserID.String()))
	return nil
}

// GetByID implements store.RecitationStore.GetByID
func (s *PostgresRecitationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error) {
	query := `SELECT ` + recitationColumns + ` FROM recitation_records WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForUpdate implements store.RecitationStore.GetForUpdate
func (s *PostgresRecitationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecitationRecord, error) {
	query := `SELECT ` + recitationColumns + ` FROM recitation_records WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresRecitationStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.RecitationRecord, error) {
	rec, err := scanRecitation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get recitation",
				slog.String("recitation_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, notFoundAs(err, store.ErrRecitationNotFound)
	}
	return rec, nil
}

// Update implements store.RecitationStore.Update
func (s *PostgresRecitationStore) Update(ctx context.Context, rec *domain.RecitationRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE recitation_records
		SET status = $2, proficiency = $3, review_count = $4, notes = $5,
			last_reviewed_at = $6, next_review_at = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Status,
		rec.Proficiency,
		rec.ReviewCount,
		rec.Notes,
		rec.LastReviewedAt,
		rec.NextReviewAt,
		rec.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update recitation",
			slog.String("recitation_id", rec.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrRecitationNotFound)
}

// ListByUser implements store.RecitationStore.ListByUser
func (s *PostgresRecitationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.RecitationRecord, error) {
	query := `
		SELECT ` + recitationColumns + `
		FROM recitation_records
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list recitations",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	recs := []*domain.RecitationRecord{}
	for rows.Next() {
		rec, err := scanRecitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recitation row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recitation rows: %w", err)
	}
	return recs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecitation(row rowScanner) (*domain.RecitationRecord, error) {
	var (
		rec          domain.RecitationRecord
		lastReviewed sql.NullTime
		nextReview   sql.NullTime
	)
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.TextID,
		&rec.Status,
		&rec.Proficiency,
		&rec.ReviewCount,
		&rec.Notes,
		&rec.FirstStartedAt,
		&lastReviewed,
		&nextReview,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.LastReviewedAt = nullTimePtr(lastReviewed)
	rec.NextReviewAt = nullTimePtr(nextReview)
	return &rec, nil
}
