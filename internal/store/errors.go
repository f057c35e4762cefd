package store

import (
	"errors"
	"fmt"
)

// Base sentinels. Implementations wrap these, or the entity-specific
// variants below, so callers can match with errors.Is at either level.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity wraps a domain validation failure detected before a write.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed wraps begin and commit failures. Errors returned by
	// the transaction body pass through unchanged.
	ErrTransactionFailed = errors.New("transaction failed")
)

var (
	ErrRecitationNotFound = fmt.Errorf("%w: recitation", ErrNotFound)
	ErrReviewNotFound     = fmt.Errorf("%w: review", ErrNotFound)
	ErrTextNotFound       = fmt.Errorf("%w: text", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
)

var (
	// ErrRecitationExists: the user already has a recitation for the text.
	ErrRecitationExists = fmt.Errorf("%w: recitation for user and text", ErrDuplicate)

	// ErrReviewExists covers both a repeated round number and a second
	// pending review on one recitation.
	ErrReviewExists = fmt.Errorf("%w: review", ErrDuplicate)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
