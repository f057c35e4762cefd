package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the nbf claim lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken means the request reached an authenticated route
	// without a user in its context.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType rejects tokens issued for something other than API access.
	ErrWrongTokenType = errors.New("wrong token type")
)

// IsTokenError reports whether err means the caller presented an unusable
// token. Such failures map to 401; anything else is an internal fault.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTokenNotYetValid) ||
		errors.Is(err, ErrWrongTokenType) ||
		errors.Is(err, ErrMissingToken)
}
