package recitation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/recite-api/internal/domain"
)

// Service errors. Each wraps one of the domain categories so the API layer
// can classify it with errors.Is.
var (
	// ErrRecitationExists is returned when the user already recites the text.
	ErrRecitationExists = fmt.Errorf("%w: a recitation for this text already exists", domain.ErrConflict)

	// ErrTextNotFound is returned when the text to start does not exist.
	ErrTextNotFound = fmt.Errorf("%w: text", domain.ErrNotFound)

	// ErrUserNotFound is returned when the authenticated user has no user record.
	ErrUserNotFound = fmt.Errorf("%w: user", domain.ErrNotFound)

	// ErrRecitationNotFound is returned for an unknown recitation.
	ErrRecitationNotFound = fmt.Errorf("%w: recitation", domain.ErrNotFound)

	// ErrReviewNotFound is returned for an unknown review.
	ErrReviewNotFound = fmt.Errorf("%w: review", domain.ErrNotFound)

	// ErrNotOwned is returned when the requester does not own the recitation.
	ErrNotOwned = fmt.Errorf("%w: recitation is owned by another user", domain.ErrForbidden)

	// ErrReviewNotPending is returned when a review was already completed,
	// skipped or expired.
	ErrReviewNotPending = domain.ErrReviewNotPending

	// ErrRecitationClosed is returned when a mastered or abandoned
	// recitation is asked to change.
	ErrRecitationClosed = domain.ErrRecitationClosed

	// ErrInvalidRating is returned for quality ratings outside 1–5.
	ErrInvalidRating error = domain.NewValidationError(
		"quality_rating", "must be between 1 and 5", domain.ErrInvalidQualityRating)
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recitation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("recitation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

var expected = []error{
	ErrRecitationExists,
	ErrTextNotFound,
	ErrUserNotFound,
	ErrRecitationNotFound,
	ErrReviewNotFound,
	ErrNotOwned,
	ErrReviewNotPending,
	ErrRecitationClosed,
	ErrInvalidRating,
}

// isExpected reports whether err is one of the service errors above.
func isExpected(err error) bool {
	for _, target := range expected {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
