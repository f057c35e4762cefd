package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecitationStatus is the lifecycle state of a recitation.
type RecitationStatus string

// Possible recitation status values
const (
	RecitationStatusLearning   RecitationStatus = "learning"
	RecitationStatusNeedReview RecitationStatus = "need_review"
	RecitationStatusMastered   RecitationStatus = "mastered"
	RecitationStatusAbandoned  RecitationStatus = "abandoned"
)

// Valid reports whether s is a known status.
func (s RecitationStatus) Valid() bool {
	switch s {
	case RecitationStatusLearning,
		RecitationStatusNeedReview,
		RecitationStatusMastered,
		RecitationStatusAbandoned:
		return true
	default:
		return false
	}
}

// Scheduled reports whether a recitation in this status has a next review.
func (s RecitationStatus) Scheduled() bool {
	return s == RecitationStatusLearning || s == RecitationStatusNeedReview
}

// Recitation validation errors
var (
	ErrRecitationIDEmpty       = fmt.Errorf("%w: recitation ID cannot be empty", ErrValidation)
	ErrRecitationUserIDEmpty   = fmt.Errorf("%w: recitation user ID cannot be empty", ErrValidation)
	ErrRecitationTextIDEmpty   = fmt.Errorf("%w: recitation text ID cannot be empty", ErrValidation)
	ErrInvalidRecitationStatus = fmt.Errorf("%w: invalid recitation status", ErrValidation)
	ErrInvalidProficiency      = fmt.Errorf("%w: proficiency must be between 0 and 100", ErrValidation)
	ErrInvalidReviewCount      = fmt.Errorf("%w: review count cannot be negative", ErrValidation)
	ErrNextReviewMismatch      = fmt.Errorf(
		"%w: next review must be set exactly when the recitation is still scheduled",
		ErrValidation,
	)

	// ErrRecitationClosed is returned when a mastered or abandoned
	// recitation is asked to change state.
	ErrRecitationClosed = fmt.Errorf("%w: recitation is already closed", ErrConflict)
)

// RecitationRecord is a learner's memorization effort for one text. There is
// exactly one per (user, text) pair.
type RecitationRecord struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	TextID         uuid.UUID        `json:"text_id"`
	Status         RecitationStatus `json:"status"`
	Proficiency    int              `json:"proficiency"`
	ReviewCount    int              `json:"review_count"`
	Notes          string           `json:"notes,omitempty"`
	FirstStartedAt time.Time        `json:"first_started_at"`
	LastReviewedAt *time.Time       `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time       `json:"next_review_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewRecitationRecord creates a recitation in the learning state whose first
// review falls at firstReviewAt.
func NewRecitationRecord(
	userID, textID uuid.UUID,
	notes string,
	firstReviewAt, now time.Time,
) (*RecitationRecord, error) {
	next := firstReviewAt
	r := &RecitationRecord{
		ID:             uuid.New(),
		UserID:         userID,
		TextID:         textID,
		Status:         RecitationStatusLearning,
		Proficiency:    0,
		ReviewCount:    0,
		Notes:          notes,
		FirstStartedAt: now,
		NextReviewAt:   &next,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks field ranges and the next-review invariant.
func (r *RecitationRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRecitationIDEmpty
	}
	if r.UserID == uuid.Nil {
		return ErrRecitationUserIDEmpty
	}
	if r.TextID == uuid.Nil {
		return ErrRecitationTextIDEmpty
	}
	if !r.Status.Valid() {
		return ErrInvalidRecitationStatus
	}
	if r.Proficiency < 0 || r.Proficiency > 100 {
		return ErrInvalidProficiency
	}
	if r.ReviewCount < 0 {
		return ErrInvalidReviewCount
	}
	if r.Status.Scheduled() != (r.NextReviewAt != nil) {
		return ErrNextReviewMismatch
	}
	return nil
}

// IsOwnedBy reports whether userID owns the recitation.
func (r *RecitationRecord) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

// Clone returns a deep copy. Optional timestamps are copied so the clone can
// be changed without touching the original.
func (r *RecitationRecord) Clone() *RecitationRecord {
	c := *r
	c.LastReviewedAt = copyTime(r.LastReviewedAt)
	c.NextReviewAt = copyTime(r.NextReviewAt)
	return &c
}

// Abandon moves the recitation to the abandoned state. Mastered and
// abandoned recitations cannot be abandoned.
func (r *RecitationRecord) Abandon(now time.Time) error {
	if !r.Status.Scheduled() {
		return ErrRecitationClosed
	}
	r.Status = RecitationStatusAbandoned
	r.NextReviewAt = nil
	r.UpdatedAt = now
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
