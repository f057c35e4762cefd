package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recite-api/internal/api/shared"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/service/auth"
	"github.com/phrazzld/recite-api/internal/service/recitation"
)

// MapErrorToStatusCode maps an error to its HTTP status by error category.
// Unexpected service failures are always 500, whatever they wrap.
func MapErrorToStatusCode(err error) int {
	var serviceErr *recitation.ServiceError
	if errors.As(err, &serviceErr) {
		return http.StatusInternalServerError
	}

	switch {
	case auth.IsTokenError(err):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		isRequestFormatError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}
	var serviceErr *recitation.ServiceError
	if errors.As(err, &serviceErr) {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case auth.IsTokenError(err):
		return "Invalid token"

	case errors.Is(err, recitation.ErrNotOwned):
		return "You do not own this recitation"

	case errors.Is(err, recitation.ErrTextNotFound):
		return "Text not found"
	case errors.Is(err, recitation.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, recitation.ErrRecitationNotFound):
		return "Recitation not found"
	case errors.Is(err, recitation.ErrReviewNotFound):
		return "Review not found"

	case errors.Is(err, recitation.ErrRecitationExists):
		return "Recitation already exists for this text"
	case errors.Is(err, recitation.ErrReviewNotPending):
		return "Review is no longer pending"
	case errors.Is(err, recitation.ErrRecitationClosed):
		return "Recitation is already closed"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return SanitizeValidationError(err)
	}
	if isRequestFormatError(err) {
		return "Invalid request format"
	}
	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) && fieldErr.Field != "" {
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field, fieldErr.Message)
	}
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError turns validator errors into "Invalid <field>:
// <reason>" for the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}
	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid", "uuid4":
		return "invalid UUID format"
	case "min":
		return "too small"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// isRequestFormatError reports malformed request bodies.
func isRequestFormatError(err error) bool {
	if errors.Is(err, shared.ErrEmptyBody) {
		return true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var validationErrs validator.ValidationErrors
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &validationErrs)
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. fallback replaces the generic message of 500 responses
// when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a body that failed
// decoding or validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := GetSafeErrorMessage(err)
	if message == "An unexpected error occurred" {
		message = "Invalid request format"
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}
