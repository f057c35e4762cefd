package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/domain/srs"
	"github.com/phrazzld/recite-api/internal/mocks"
	"github.com/phrazzld/recite-api/internal/service/auth"
	"github.com/phrazzld/recite-api/internal/service/recitation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "recite-test-secret-that-is-long-enough"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MemoryStore, auth.JWTService) {
	t.Helper()
	ms := mocks.NewMemoryStore()

	srsService, err := srs.NewDefaultService()
	require.NoError(t, err)
	svc, err := recitation.NewService(ms, ms.Texts(), srsService, nil, discardLogger())
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	return newRouter(svc, jwtService, discardLogger()), ms, jwtService
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestAPIRequiresToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/api/recitations", "/api/reviews/due"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/due", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartAndListThroughRouter(t *testing.T) {
	router, ms, jwtService := newTestRouter(t)
	text := ms.AddText("The Tyger", "Blake")
	userID := uuid.New()

	token, err := jwtService.GenerateToken(t.Context(), userID)
	require.NoError(t, err)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/api/recitations", `{"text_id":"`+text.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(http.MethodGet, "/api/recitations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		ID     uuid.UUID `json:"id"`
		UserID uuid.UUID `json:"user_id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, userID, listed[0].UserID)
	assert.Equal(t, "learning", listed[0].Status)

	rec = send(http.MethodPost, "/api/recitations", `{"text_id":"`+text.ID.String()+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
