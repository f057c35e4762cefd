package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the state of a single scheduled review.
type ReviewStatus string

// Possible review status values
const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusCompleted ReviewStatus = "completed"
	ReviewStatusSkipped   ReviewStatus = "skipped"
	ReviewStatusExpired   ReviewStatus = "expired"
)

// Valid reports whether s is a known status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending,
		ReviewStatusCompleted,
		ReviewStatusSkipped,
		ReviewStatusExpired:
		return true
	default:
		return false
	}
}

// Terminal reports whether s can no longer change.
func (s ReviewStatus) Terminal() bool {
	return s != ReviewStatusPending
}

// Review validation and transition errors
var (
	ErrReviewIDEmpty           = fmt.Errorf("%w: review ID cannot be empty", ErrValidation)
	ErrReviewRecitationIDEmpty = fmt.Errorf("%w: review recitation ID cannot be empty", ErrValidation)
	ErrInvalidRound            = fmt.Errorf("%w: round must be at least 1", ErrValidation)
	ErrInvalidReviewStatus     = fmt.Errorf("%w: invalid review status", ErrValidation)
	ErrRatingStatusMismatch    = fmt.Errorf(
		"%w: quality rating must be present exactly when the review is completed",
		ErrValidation,
	)

	// ErrReviewNotPending is returned when a terminal review is asked to
	// transition again.
	ErrReviewNotPending = fmt.Errorf("%w: review is not pending", ErrConflict)

	// ErrReminderAlreadySent is returned when a reminder flag is set twice.
	ErrReminderAlreadySent = fmt.Errorf("%w: reminder already sent", ErrConflict)
)

// ReviewRecord is one scheduled review within a recitation. It refers back
// to its recitation by ID only.
type ReviewRecord struct {
	ID                uuid.UUID      `json:"id"`
	RecitationID      uuid.UUID      `json:"recitation_id"`
	Round             int            `json:"round"`
	Status            ReviewStatus   `json:"status"`
	ScheduledAt       time.Time      `json:"scheduled_at"`
	ActualCompletedAt *time.Time     `json:"actual_completed_at,omitempty"`
	QualityRating     *QualityRating `json:"quality_rating,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	ReminderSent      bool           `json:"reminder_sent"`
	ReminderSentAt    *time.Time     `json:"reminder_sent_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewReviewRecord creates a pending review for the given round.
func NewReviewRecord(recitationID uuid.UUID, round int, scheduledAt, now time.Time) (*ReviewRecord, error) {
	r := &ReviewRecord{
		ID:           uuid.New(),
		RecitationID: recitationID,
		Round:        round,
		Status:       ReviewStatusPending,
		ScheduledAt:  scheduledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks field ranges and the rating/status invariant.
func (r *ReviewRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReviewIDEmpty
	}
	if r.RecitationID == uuid.Nil {
		return ErrReviewRecitationIDEmpty
	}
	if r.Round < 1 {
		return ErrInvalidRound
	}
	if !r.Status.Valid() {
		return ErrInvalidReviewStatus
	}
	if (r.Status == ReviewStatusCompleted) != (r.QualityRating != nil) {
		return ErrRatingStatusMismatch
	}
	if r.QualityRating != nil && !r.QualityRating.Valid() {
		return ErrInvalidQualityRating
	}
	return nil
}

// Complete records the learner's rating. Only pending reviews can be
// completed.
func (r *ReviewRecord) Complete(rating QualityRating, notes string, now time.Time) error {
	if !rating.Valid() {
		return ErrInvalidQualityRating
	}
	if r.Status.Terminal() {
		return ErrReviewNotPending
	}
	completedAt := now
	r.Status = ReviewStatusCompleted
	r.ActualCompletedAt = &completedAt
	r.QualityRating = &rating
	r.Notes = notes
	r.UpdatedAt = now
	return nil
}

// Expire marks a missed review as expired.
func (r *ReviewRecord) Expire(now time.Time) error {
	if r.Status.Terminal() {
		return ErrReviewNotPending
	}
	r.Status = ReviewStatusExpired
	r.UpdatedAt = now
	return nil
}

// Skip marks a pending review as skipped, e.g. when its recitation is
// abandoned.
func (r *ReviewRecord) Skip(now time.Time) error {
	if r.Status.Terminal() {
		return ErrReviewNotPending
	}
	r.Status = ReviewStatusSkipped
	r.UpdatedAt = now
	return nil
}

// MarkReminded flags the review as reminded at now.
func (r *ReviewRecord) MarkReminded(now time.Time) error {
	if r.Status.Terminal() {
		return ErrReviewNotPending
	}
	if r.ReminderSent {
		return ErrReminderAlreadySent
	}
	sentAt := now
	r.ReminderSent = true
	r.ReminderSentAt = &sentAt
	r.UpdatedAt = now
	return nil
}

// InReminderWindow reports whether now lies within
// [ScheduledAt-lead, ScheduledAt+grace]. Status and the reminder flag are
// not considered.
func (r *ReviewRecord) InReminderWindow(now time.Time, lead, grace time.Duration) bool {
	return !now.Before(r.ScheduledAt.Add(-lead)) && !now.After(r.ScheduledAt.Add(grace))
}

// ReminderDue reports whether a reminder should be sent for the review now.
func (r *ReviewRecord) ReminderDue(now time.Time, lead, grace time.Duration) bool {
	return r.Status == ReviewStatusPending && !r.ReminderSent && r.InReminderWindow(now, lead, grace)
}

// ExpiredAt reports whether a pending review has passed ScheduledAt+grace.
func (r *ReviewRecord) ExpiredAt(now time.Time, grace time.Duration) bool {
	return r.Status == ReviewStatusPending && now.After(r.ScheduledAt.Add(grace))
}

// Clone returns a deep copy.
func (r *ReviewRecord) Clone() *ReviewRecord {
	c := *r
	c.ActualCompletedAt = copyTime(r.ActualCompletedAt)
	c.ReminderSentAt = copyTime(r.ReminderSentAt)
	if r.QualityRating != nil {
		q := *r.QualityRating
		c.QualityRating = &q
	}
	return &c
}
