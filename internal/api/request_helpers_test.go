package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/api/shared"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, err := getPathUUID(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String()), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = getPathUUID(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "xyz"), "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = getPathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	pathID := uuid.New()

	tests := []struct {
		name       string
		userID     uuid.UUID
		pathValue  string
		wantOK     bool
		wantStatus int
	}{
		{"both valid", userID, pathID.String(), true, http.StatusOK},
		{"missing user", uuid.Nil, pathID.String(), false, http.StatusUnauthorized},
		{"bad path id", userID, "12", false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), tt.userID))
			}
			req = withURLParam(req, "id", tt.pathValue)
			rec := httptest.NewRecorder()

			gotUser, gotPath, ok := handleUserIDAndPathUUID(rec, req, "id", discardLogger())
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, pathID, gotPath)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Zero(t, rec.Body.Len())
				return
			}
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestParseAndValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantOK  bool
		message string
	}{
		{"valid", `{"text_id":"` + uuid.NewString() + `"}`, true, ""},
		{"empty", ``, false, "Request body is required"},
		{"malformed", `{"text_id":`, false, "Invalid request format"},
		{"unknown field", `{"text_id":"` + uuid.NewString() + `","pages":3}`, false, "Invalid request format"},
		{"missing text", `{"notes":"x"}`, false, "Invalid text_id: required field"},
		{"long notes", `{"text_id":"` + uuid.NewString() + `","notes":"` + strings.Repeat("a", 2001) + `"}`,
			false, "Invalid notes: too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var body StartRecitationRequest
			ok := parseAndValidateRequest(rec, req, &body)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.message)
			}
		})
	}
}
