package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/recite-api/internal/api/shared"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/service/auth"
	"github.com/phrazzld/recite-api/internal/service/recitation"
	"github.com/phrazzld/recite-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	var syntaxErr error = &json.SyntaxError{}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"wrapped expired token", fmt.Errorf("auth: %w", auth.ErrExpiredToken), http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"not owned", recitation.ErrNotOwned, http.StatusForbidden},
		{"text not found", recitation.ErrTextNotFound, http.StatusNotFound},
		{"user not found", recitation.ErrUserNotFound, http.StatusNotFound},
		{"review not found", recitation.ErrReviewNotFound, http.StatusNotFound},
		{"duplicate recitation", recitation.ErrRecitationExists, http.StatusConflict},
		{"review not pending", recitation.ErrReviewNotPending, http.StatusConflict},
		{"recitation closed", recitation.ErrRecitationClosed, http.StatusConflict},
		{"invalid rating", recitation.ErrInvalidRating, http.StatusBadRequest},
		{"invalid path id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"json syntax", syntaxErr, http.StatusBadRequest},
		{
			"service error wrapping a validation failure",
			recitation.NewServiceError("complete_review", "failed to save review",
				fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidProficiency)),
			http.StatusInternalServerError,
		},
		{"raw store error", store.ErrReviewNotFound, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"expired", auth.ErrExpiredToken, "Token expired"},
		{"not owned", recitation.ErrNotOwned, "You do not own this recitation"},
		{"text", recitation.ErrTextNotFound, "Text not found"},
		{"user", recitation.ErrUserNotFound, "User not found"},
		{"recitation", recitation.ErrRecitationNotFound, "Recitation not found"},
		{"review", recitation.ErrReviewNotFound, "Review not found"},
		{"exists", recitation.ErrRecitationExists, "Recitation already exists for this text"},
		{"not pending", recitation.ErrReviewNotPending, "Review is no longer pending"},
		{"closed", recitation.ErrRecitationClosed, "Recitation is already closed"},
		{"rating", recitation.ErrInvalidRating, "Invalid quality_rating: must be between 1 and 5"},
		{"empty body", shared.ErrEmptyBody, "Request body is required"},
		{"bare validation", domain.ErrValidation, "Validation error"},
		{
			"service error hides details",
			recitation.NewServiceError("start_recitation", "failed", errors.New("password=hunter22")),
			"An unexpected error occurred",
		},
		{"unknown", errors.New("pq: relation does not exist"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(&StartRecitationRequest{})
	require.Error(t, err)
	assert.Equal(t, "Invalid text_id: required field", SanitizeValidationError(err))

	err = shared.ValidateRequest(&StartRecitationRequest{TextID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, "Invalid text_id: invalid UUID format", SanitizeValidationError(err))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
