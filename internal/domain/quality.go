package domain

import "fmt"

// QualityRating is a learner's 1–5 self-assessment of how well a text was
// recalled during a review.
type QualityRating int

// Quality rating scale.
const (
	QualityForgot    QualityRating = 1 // forgot completely
	QualityVague     QualityRating = 2 // vague recall
	QualityEffortful QualityRating = 3 // recalled with effort
	QualityFluent    QualityRating = 4 // fluent
	QualityPerfect   QualityRating = 5 // perfect
)

// ErrInvalidQualityRating is returned for ratings outside 1–5.
var ErrInvalidQualityRating = fmt.Errorf("%w: quality rating must be between 1 and 5", ErrValidation)

// Valid reports whether q is on the 1–5 scale.
func (q QualityRating) Valid() bool {
	return q >= QualityForgot && q <= QualityPerfect
}
