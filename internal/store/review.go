package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
)

// ReviewCursor is a keyset position in (scheduled_at, id) order. The zero
// value starts before every review.
type ReviewCursor struct {
	ScheduledAt time.Time
	ID          uuid.UUID
}

// CursorAfter returns the position just past review.
func CursorAfter(review *domain.ReviewRecord) ReviewCursor {
	return ReviewCursor{ScheduledAt: review.ScheduledAt, ID: review.ID}
}

// Before reports whether review sorts after c.
func (c ReviewCursor) Before(review *domain.ReviewRecord) bool {
	if !review.ScheduledAt.Equal(c.ScheduledAt) {
		return review.ScheduledAt.After(c.ScheduledAt)
	}
	return review.ID.String() > c.ID.String()
}

// ReviewStore defines the interface for review persistence.
type ReviewStore interface {
	// Create saves a new review.
	// Returns ErrReviewExists if the round already exists for the recitation or
	// the recitation already has a pending review.
	Create(ctx context.Context, review *domain.ReviewRecord) error

	// GetByID retrieves a review by its unique ID.
	// Returns ErrReviewNotFound if the review does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error)

	// GetForUpdate retrieves a review and locks it until the surrounding
	// transaction ends. It MUST be called on a store bound to a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewRecord, error)

	// GetPendingForUpdate locks and returns the pending review of a recitation.
	// Returns ErrReviewNotFound if there is none.
	GetPendingForUpdate(ctx context.Context, recitationID uuid.UUID) (*domain.ReviewRecord, error)

	// Update persists every mutable field of the review.
	// Returns ErrReviewNotFound if the review does not exist.
	Update(ctx context.Context, review *domain.ReviewRecord) error

	// ListByRecitation returns all reviews of a recitation ordered by round.
	ListByRecitation(ctx context.Context, recitationID uuid.UUID) ([]*domain.ReviewRecord, error)

	// RecentRatings returns the ratings of the last limit completed reviews of
	// a recitation, oldest first.
	RecentRatings(ctx context.Context, recitationID uuid.UUID, limit int) ([]domain.QualityRating, error)

	// ListDueByUser returns the user's pending reviews scheduled at or before
	// asOf, earliest first.
	ListDueByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*domain.ReviewRecord, error)

	// ListReminderCandidates returns up to limit pending, not yet reminded
	// reviews scheduled within [from, to] that sort after the cursor,
	// earliest first.
	ListReminderCandidates(
		ctx context.Context, from, to time.Time, after ReviewCursor, limit int,
	) ([]*domain.ReviewRecord, error)

	// ListExpiryCandidates returns up to limit pending reviews scheduled
	// strictly before before that sort after the cursor, earliest first.
	ListExpiryCandidates(
		ctx context.Context, before time.Time, after ReviewCursor, limit int,
	) ([]*domain.ReviewRecord, error)

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
