package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/service/recitation"
)

// StartRecitationRequest is the body of POST /api/recitations.
type StartRecitationRequest struct {
	TextID string `json:"text_id" validate:"required,uuid"`
	Notes  string `json:"notes"   validate:"max=2000"`
}

// StartRecitationResponse is returned when a recitation was started.
type StartRecitationResponse struct {
	ID uuid.UUID `json:"id"`
}

// CompleteReviewRequest is the body of POST /api/reviews/{id}/complete.
// The 1–5 range of QualityRating is enforced by the service.
type CompleteReviewRequest struct {
	QualityRating *int   `json:"quality_rating" validate:"required"`
	Notes         string `json:"notes"          validate:"max=2000"`
}

// RecitationResponse is the API view of a recitation.
type RecitationResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	TextID         uuid.UUID  `json:"text_id"`
	Status         string     `json:"status"`
	Proficiency    int        `json:"proficiency"`
	ReviewCount    int        `json:"review_count"`
	Notes          string     `json:"notes,omitempty"`
	FirstStartedAt time.Time  `json:"first_started_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ReviewResponse is the API view of a review.
type ReviewResponse struct {
	ID                uuid.UUID  `json:"id"`
	RecitationID      uuid.UUID  `json:"recitation_id"`
	Round             int        `json:"round"`
	Status            string     `json:"status"`
	ScheduledAt       time.Time  `json:"scheduled_at"`
	ActualCompletedAt *time.Time `json:"actual_completed_at,omitempty"`
	QualityRating     *int       `json:"quality_rating,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ReminderSent      bool       `json:"reminder_sent"`
	ReminderSentAt    *time.Time `json:"reminder_sent_at,omitempty"`
}

// CompleteReviewResponse is returned by POST /api/reviews/{id}/complete.
type CompleteReviewResponse struct {
	Recitation      RecitationResponse `json:"recitation"`
	CompletedReview ReviewResponse     `json:"completed_review"`
	NextReview      *ReviewResponse    `json:"next_review,omitempty"`
}

func recitationToResponse(rec *domain.RecitationRecord) RecitationResponse {
	return RecitationResponse{
		ID:             rec.ID,
		UserID:         rec.UserID,
		TextID:         rec.TextID,
		Status:         string(rec.Status),
		Proficiency:    rec.Proficiency,
		ReviewCount:    rec.ReviewCount,
		Notes:          rec.Notes,
		FirstStartedAt: rec.FirstStartedAt,
		LastReviewedAt: rec.LastReviewedAt,
		NextReviewAt:   rec.NextReviewAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func reviewToResponse(review *domain.ReviewRecord) ReviewResponse {
	resp := ReviewResponse{
		ID:                review.ID,
		RecitationID:      review.RecitationID,
		Round:             review.Round,
		Status:            string(review.Status),
		ScheduledAt:       review.ScheduledAt,
		ActualCompletedAt: review.ActualCompletedAt,
		Notes:             review.Notes,
		ReminderSent:      review.ReminderSent,
		ReminderSentAt:    review.ReminderSentAt,
	}
	if review.QualityRating != nil {
		q := int(*review.QualityRating)
		resp.QualityRating = &q
	}
	return resp
}

func recitationsToResponse(recs []*domain.RecitationRecord) []RecitationResponse {
	out := make([]RecitationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recitationToResponse(rec))
	}
	return out
}

func reviewsToResponse(reviews []*domain.ReviewRecord) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, reviewToResponse(review))
	}
	return out
}

func completedToResponse(result *recitation.CompletedReview) CompleteReviewResponse {
	resp := CompleteReviewResponse{
		Recitation:      recitationToResponse(result.Recitation),
		CompletedReview: reviewToResponse(result.Completed),
	}
	if result.Next != nil {
		next := reviewToResponse(result.Next)
		resp.NextReview = &next
	}
	return resp
}
