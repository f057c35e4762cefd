package srs

import (
	"math"
	"time"

	"github.com/phrazzld/recite-api/internal/domain"
)

// baseInterval returns the base interval in days for a review round.
//
// Rounds are 1-based. Rounds at or below zero use the first entry, and rounds
// past the end of the table use the last entry, so growth is capped rather
// than extrapolated.
func baseInterval(round int, params *Params) int {
	if len(params.Intervals) == 0 {
		return 1
	}
	if round <= 0 {
		return params.Intervals[0]
	}
	if round > len(params.Intervals) {
		return params.Intervals[len(params.Intervals)-1]
	}
	return params.Intervals[round-1]
}

// adjustInterval applies the quality multiplier to a base interval.
//
// Parameters:
//   - base: The base interval in days from the interval table
//   - rating: The learner's 1–5 quality rating
//   - params: Configuration parameters for the algorithm
//
// Returns:
//   - max(1, floor(base * multiplier)) days
//   - ErrInvalidQualityRating when rating is outside 1–5; the rating is never clamped
func adjustInterval(base int, rating domain.QualityRating, params *Params) (int, error) {
	if !rating.Valid() {
		return 0, ErrInvalidQualityRating
	}
	days := int(math.Floor(float64(base) * params.QualityMultipliers[rating]))
	if days < 1 {
		days = 1
	}
	return days, nil
}

// nextInterval returns the adjusted interval for the review that follows
// completedRound. The round just completed indexes the table.
func nextInterval(completedRound int, rating domain.QualityRating, params *Params) (int, error) {
	return adjustInterval(baseInterval(completedRound, params), rating, params)
}

// proficiency derives the 0–100 mastery score.
//
// base = min(reviewCount * perReview, baseCap). Without ratings the score is
// base. Otherwise the average of the most recent ratings (at most
// RecentRatingsWindow, oldest trimmed first) adds floor(avg/5 * bonus). The
// result never exceeds 100.
func proficiency(reviewCount int, recent []domain.QualityRating, params *Params) int {
	if reviewCount < 0 {
		reviewCount = 0
	}
	base := reviewCount * params.ProficiencyPerReview
	if base > params.ProficiencyBaseCap {
		base = params.ProficiencyBaseCap
	}

	recent = lastN(recent, params.RecentRatingsWindow)
	if len(recent) == 0 {
		return base
	}

	sum := 0
	for _, r := range recent {
		sum += int(r)
	}
	avg := float64(sum) / float64(len(recent))
	bonus := int(math.Floor(avg / float64(domain.QualityPerfect) * float64(params.ProficiencyBonus)))

	score := base + bonus
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// statusFor picks the recitation status for a proficiency score after
// reviewCount reviews.
func statusFor(score, reviewCount int, params *Params) domain.RecitationStatus {
	switch {
	case score >= params.MasteryProficiency && reviewCount >= params.MasteryReviewCount:
		return domain.RecitationStatusMastered
	case score >= params.NeedReviewProficiency:
		return domain.RecitationStatusNeedReview
	default:
		return domain.RecitationStatusLearning
	}
}

func lastN(ratings []domain.QualityRating, n int) []domain.QualityRating {
	if n <= 0 {
		return nil
	}
	if len(ratings) > n {
		return ratings[len(ratings)-n:]
	}
	return ratings
}

// calculateNextRecitation builds the state of a recitation after a review of
// completedRound with the given rating.
//
// The input recitation is never modified. The returned copy has its review
// count incremented, last/updated timestamps set to now, proficiency and
// status recomputed, and NextReviewAt set unless the recitation is mastered.
// previous holds the ratings of earlier completed reviews in completion
// order; the current rating is appended before scoring.
func calculateNextRecitation(
	rec *domain.RecitationRecord,
	completedRound int,
	rating domain.QualityRating,
	previous []domain.QualityRating,
	now time.Time,
	params *Params,
) (*domain.RecitationRecord, int, error) {
	days, err := nextInterval(completedRound, rating, params)
	if err != nil {
		return nil, 0, err
	}

	recent := make([]domain.QualityRating, 0, len(previous)+1)
	recent = append(recent, previous...)
	recent = append(recent, rating)

	next := rec.Clone()
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.ReviewCount++
	next.UpdatedAt = now
	next.Proficiency = proficiency(next.ReviewCount, recent, params)
	next.Status = statusFor(next.Proficiency, next.ReviewCount, params)

	if next.Status == domain.RecitationStatusMastered {
		next.NextReviewAt = nil
	} else {
		at := now.AddDate(0, 0, days)
		next.NextReviewAt = &at
	}

	return next, days, nil
}
