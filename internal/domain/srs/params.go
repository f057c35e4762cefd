package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/recite-api/internal/domain"
)

// ErrInvalidParams is returned when a parameter override is out of range.
var ErrInvalidParams = errors.New("invalid scheduling parameters")

// Params defines all configurable parameters for the scheduling algorithm
type Params struct {
	// Base intervals in days, indexed by review round (1-based)
	Intervals []int

	// Multiplier applied to the base interval for each quality rating
	QualityMultipliers map[domain.QualityRating]float64

	// Delay between starting a recitation and its first review
	FirstReviewDelay time.Duration

	// Proficiency estimation
	ProficiencyPerReview int
	ProficiencyBaseCap   int
	ProficiencyBonus     int
	RecentRatingsWindow  int

	// Status thresholds
	MasteryProficiency    int
	MasteryReviewCount    int
	NeedReviewProficiency int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	Intervals          []int
	QualityMultipliers map[int]float64
	FirstReviewDays    int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Intervals: []int{1, 2, 4, 7, 15, 30, 60},

		QualityMultipliers: map[domain.QualityRating]float64{
			domain.QualityForgot:    0.3,
			domain.QualityVague:     0.5,
			domain.QualityEffortful: 1.0,
			domain.QualityFluent:    1.2,
			domain.QualityPerfect:   1.5,
		},

		FirstReviewDelay: 24 * time.Hour,

		ProficiencyPerReview: 10,
		ProficiencyBaseCap:   50,
		ProficiencyBonus:     50,
		RecentRatingsWindow:  3,

		MasteryProficiency:    80,
		MasteryReviewCount:    3,
		NeedReviewProficiency: 50,
	}
}

// NewParams creates a new Params instance with custom configuration. Intervals
// must be positive and multipliers positive and non-decreasing in the rating.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.Intervals) > 0 {
		for i, days := range config.Intervals {
			if days < 1 {
				return nil, fmt.Errorf("%w: interval for round %d must be at least 1 day", ErrInvalidParams, i+1)
			}
		}
		params.Intervals = append([]int(nil), config.Intervals...)
	}

	for rating, multiplier := range config.QualityMultipliers {
		q := domain.QualityRating(rating)
		if !q.Valid() {
			return nil, fmt.Errorf("%w: no quality rating %d", ErrInvalidParams, rating)
		}
		if multiplier <= 0 {
			return nil, fmt.Errorf("%w: multiplier for rating %d must be positive", ErrInvalidParams, rating)
		}
		params.QualityMultipliers[q] = multiplier
	}

	for q := domain.QualityForgot + 1; q <= domain.QualityPerfect; q++ {
		if params.QualityMultipliers[q] < params.QualityMultipliers[q-1] {
			return nil, fmt.Errorf(
				"%w: multiplier for rating %d is lower than for rating %d",
				ErrInvalidParams, q, q-1,
			)
		}
	}

	if config.FirstReviewDays > 0 {
		params.FirstReviewDelay = time.Duration(config.FirstReviewDays) * 24 * time.Hour
	}

	return params, nil
}
