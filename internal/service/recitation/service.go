package recitation

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
)

// CompletedReview is the result of CompleteReview.
type CompletedReview struct {
	Recitation *domain.RecitationRecord `json:"recitation"`
	Completed  *domain.ReviewRecord     `json:"completed_review"`
	// Next is nil when the review mastered the recitation.
	Next *domain.ReviewRecord `json:"next_review,omitempty"`
}

// Service manages recitations and their reviews.
type Service interface {
	// StartRecitation creates a learning recitation of textID for userID and
	// schedules its round-1 review.
	//
	// Returns:
	//   - ErrTextNotFound if the text does not exist
	//   - ErrRecitationExists if the user already has a recitation for the text
	StartRecitation(ctx context.Context, userID, textID uuid.UUID, notes string) (*domain.RecitationRecord, error)

	// CompleteReview records the requester's rating for a pending review,
	// reschedules the recitation and creates the next review unless the
	// recitation became mastered.
	//
	// Errors are checked in this order:
	//   - ErrInvalidRating for ratings outside 1–5, before any storage access
	//   - ErrReviewNotFound if the review does not exist
	//   - ErrNotOwned if the requester does not own the recitation
	//   - ErrReviewNotPending if the review is no longer pending
	CompleteReview(
		ctx context.Context,
		requesterID, reviewID uuid.UUID,
		rating domain.QualityRating,
		notes string,
	) (*CompletedReview, error)

	// AbandonRecitation stops scheduling a recitation and skips its pending
	// review. Mastered or abandoned recitations return ErrRecitationClosed.
	AbandonRecitation(ctx context.Context, requesterID, recitationID uuid.UUID) (*domain.RecitationRecord, error)

	// ListRecitations returns the user's recitations, most recently updated first.
	ListRecitations(ctx context.Context, userID uuid.UUID) ([]*domain.RecitationRecord, error)

	// ListReviews returns every review of a recitation ordered by round.
	ListReviews(ctx context.Context, requesterID, recitationID uuid.UUID) ([]*domain.ReviewRecord, error)

	// DueReviews returns the user's pending reviews scheduled at or before now.
	DueReviews(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRecord, error)
}
