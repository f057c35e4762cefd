package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
)

const reviewColumns = `id, recitation_id, round, status, scheduled_at, actual_completed_at,
	quality_rating, notes, reminder_sent, reminder_sent_at, created_at, updated_at`

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the ReviewStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.ReviewRecord) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_records (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		review.ID,
		review.RecitationID,
		review.Round,
		review.Status,
		review.ScheduledAt,
		review.ActualCompletedAt,
		ratingArg(review.QualityRating),
		review.Notes,
		review.ReminderSent,
		review.ReminderSentAt,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert review",
			slog.String("review_id", review.ID.String()),
			slog.String("recitation_id", review.RecitationID.String()),
			slog.Int("round", review.Round),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ReviewStore.GetByID
func (s *PostgresReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_records WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForUpdate implements store.ReviewStore.GetForUpdate
func (s *PostgresReviewStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_records WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

// GetPendingForUpdate implements store.ReviewStore.GetPendingForUpdate
func (s *PostgresReviewStore) GetPendingForUpdate(
	ctx context.Context,
	recitationID uuid.UUID,
) (*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM review_records
		WHERE recitation_id = $1 AND status = 'pending'
		FOR UPDATE
	`
	return s.getOne(ctx, query, recitationID)
}

func (s *PostgresReviewStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.ReviewRecord, error) {
	review, err := scanReview(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get review",
				slog.String("id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, notFoundAs(err, store.ErrReviewNotFound)
	}
	return review, nil
}

// Update implements store.ReviewStore.Update
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.ReviewRecord) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_records
		SET status = $2, actual_completed_at = $3, quality_rating = $4, notes = $5,
			reminder_sent = $6, reminder_sent_at = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		review.ID,
		review.Status,
		review.ActualCompletedAt,
		ratingArg(review.QualityRating),
		review.Notes,
		review.ReminderSent,
		review.ReminderSentAt,
		review.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update review",
			slog.String("review_id", review.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// ListByRecitation implements store.ReviewStore.ListByRecitation
func (s *PostgresReviewStore) ListByRecitation(
	ctx context.Context,
	recitationID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM review_records
		WHERE recitation_id = $1
		ORDER BY round
	`
	return s.list(ctx, query, recitationID)
}

// RecentRatings implements store.ReviewStore.RecentRatings
func (s *PostgresReviewStore) RecentRatings(
	ctx context.Context,
	recitationID uuid.UUID,
	limit int,
) ([]domain.QualityRating, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Rounds are completed in order, so the highest rounds are the latest.
	query := `
		SELECT quality_rating FROM (
			SELECT round, quality_rating
			FROM review_records
			WHERE recitation_id = $1 AND status = 'completed'
			ORDER BY round DESC
			LIMIT $2
		) recent
		ORDER BY round
	`
	rows, err := s.db.QueryContext(ctx, query, recitationID, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query recent ratings",
			slog.String("recitation_id", recitationID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ratings []domain.QualityRating
	for rows.Next() {
		var rating int16
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, domain.QualityRating(rating))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating rows: %w", err)
	}
	return ratings, nil
}

// ListDueByUser implements store.ReviewStore.ListDueByUser
func (s *PostgresReviewStore) ListDueByUser(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT ` + prefixed("rv", reviewColumns) + `
		FROM review_records rv
		JOIN recitation_records rc ON rc.id = rv.recitation_id
		WHERE rc.user_id = $1 AND rv.status = 'pending' AND rv.scheduled_at <= $2
		ORDER BY rv.scheduled_at, rv.id
	`
	return s.list(ctx, query, userID, asOf)
}

// ListReminderCandidates implements store.ReviewStore.ListReminderCandidates
func (s *PostgresReviewStore) ListReminderCandidates(
	ctx context.Context,
	from, to time.Time,
	after store.ReviewCursor,
	limit int,
) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM review_records
		WHERE status = 'pending' AND reminder_sent = FALSE
			AND scheduled_at >= $1 AND scheduled_at <= $2
			AND (scheduled_at, id) > ($3, $4)
		ORDER BY scheduled_at, id
		LIMIT $5
	`
	return s.list(ctx, query, from, to, after.ScheduledAt, after.ID, limit)
}

// ListExpiryCandidates implements store.ReviewStore.ListExpiryCandidates
func (s *PostgresReviewStore) ListExpiryCandidates(
	ctx context.Context,
	before time.Time,
	after store.ReviewCursor,
	limit int,
) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM review_records
		WHERE status = 'pending' AND scheduled_at < $1
			AND (scheduled_at, id) > ($2, $3)
		ORDER BY scheduled_at, id
		LIMIT $4
	`
	return s.list(ctx, query, before, after.ScheduledAt, after.ID, limit)
}

func (s *PostgresReviewStore) list(ctx context.Context, query string, args ...any) ([]*domain.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query reviews",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reviews := []*domain.ReviewRecord{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}

func scanReview(row rowScanner) (*domain.ReviewRecord, error) {
	var (
		review      domain.ReviewRecord
		completedAt sql.NullTime
		rating      sql.NullInt16
		remindedAt  sql.NullTime
	)
	err := row.Scan(
		&review.ID,
		&review.RecitationID,
		&review.Round,
		&review.Status,
		&review.ScheduledAt,
		&completedAt,
		&rating,
		&review.Notes,
		&review.ReminderSent,
		&remindedAt,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	review.ActualCompletedAt = nullTimePtr(completedAt)
	review.ReminderSentAt = nullTimePtr(remindedAt)
	if rating.Valid {
		q := domain.QualityRating(rating.Int16)
		review.QualityRating = &q
	}
	return &review, nil
}

func ratingArg(q *domain.QualityRating) any {
	if q == nil {
		return nil
	}
	return int16(*q)
}
