package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/recite-api/internal/domain"
)

// Common errors
var (
	ErrNilRecitation        = errors.New("recitation cannot be nil")
	ErrInvalidQualityRating = domain.ErrInvalidQualityRating
	ErrRecitationClosed     = domain.ErrRecitationClosed
	ErrInvalidRound         = domain.ErrInvalidRound
)

// Outcome is the result of scheduling after a completed review.
type Outcome struct {
	// Recitation is the updated copy of the recitation.
	Recitation *domain.RecitationRecord
	// IntervalDays is the adjusted interval used for NextReviewAt.
	IntervalDays int
	// NextRound is the round of the review to create, or 0 when mastered.
	NextRound int
}

// Mastered reports whether the review drove the recitation to mastery.
func (o *Outcome) Mastered() bool {
	return o.Recitation.Status == domain.RecitationStatusMastered
}

// Service defines the interface for scheduling algorithm operations
type Service interface {
	// FirstReviewAt returns when the first review of a recitation started at now falls.
	FirstReviewAt(now time.Time) time.Time

	// RecentRatingsWindow is how many past ratings CalculateNextReview looks at,
	// including the current one.
	RecentRatingsWindow() int

	// CalculateNextReview computes the new recitation state after completing
	// the review of completedRound with rating. previous holds earlier
	// completed ratings in completion order.
	CalculateNextReview(
		rec *domain.RecitationRecord,
		completedRound int,
		rating domain.QualityRating,
		previous []domain.QualityRating,
		now time.Time,
	) (*Outcome, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if len(params.Intervals) == 0 {
		return nil, fmt.Errorf("%w: interval table cannot be empty", ErrInvalidParams)
	}
	for q := domain.QualityForgot; q <= domain.QualityPerfect; q++ {
		if _, ok := params.QualityMultipliers[q]; !ok {
			return nil, fmt.Errorf("%w: missing multiplier for rating %d", ErrInvalidParams, q)
		}
	}
	return &defaultService{
		params: params,
	}, nil
}

func (s *defaultService) FirstReviewAt(now time.Time) time.Time {
	return now.Add(s.params.FirstReviewDelay)
}

func (s *defaultService) RecentRatingsWindow() int {
	return s.params.RecentRatingsWindow
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	rec *domain.RecitationRecord,
	completedRound int,
	rating domain.QualityRating,
	previous []domain.QualityRating,
	now time.Time,
) (*Outcome, error) {
	if rec == nil {
		return nil, ErrNilRecitation
	}
	if !rating.Valid() {
		return nil, ErrInvalidQualityRating
	}
	if completedRound < 1 {
		return nil, ErrInvalidRound
	}
	if !rec.Status.Scheduled() {
		return nil, ErrRecitationClosed
	}

	next, days, err := calculateNextRecitation(rec, completedRound, rating, previous, now, s.params)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Recitation:   next,
		IntervalDays: days,
	}
	if !outcome.Mastered() {
		outcome.NextRound = completedRound + 1
	}
	return outcome, nil
}
