package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/api/shared"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/service/recitation"
)

// RecitationHandler serves the recitation and review endpoints.
type RecitationHandler struct {
	service recitation.Service
	logger  *slog.Logger
}

// NewRecitationHandler creates a RecitationHandler.
func NewRecitationHandler(service recitation.Service, logger *slog.Logger) *RecitationHandler {
	if service == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("recitation service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecitationHandler{
		service: service,
		logger:  logger.With(slog.String("component", "recitation_handler")),
	}
}

// Register mounts the handler's routes on r. Callers are expected to have
// applied the authentication middleware.
func (h *RecitationHandler) Register(r chi.Router) {
	r.Post("/recitations", h.StartRecitation)
	r.Get("/recitations", h.ListRecitations)
	r.Get("/recitations/{id}/reviews", h.ListReviews)
	r.Post("/recitations/{id}/abandon", h.AbandonRecitation)
	r.Post("/reviews/{id}/complete", h.CompleteReview)
	r.Get("/reviews/due", h.DueReviews)
}

// StartRecitation handles POST /api/recitations.
func (h *RecitationHandler) StartRecitation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req StartRecitationRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}
	textID, err := uuid.Parse(req.TextID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("text_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	rec, err := h.service.StartRecitation(r.Context(), userID, textID, req.Notes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start recitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, StartRecitationResponse{ID: rec.ID})
}

// ListRecitations handles GET /api/recitations.
func (h *RecitationHandler) ListRecitations(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	recs, err := h.service.ListRecitations(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list recitations")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recitationsToResponse(recs))
}

// ListReviews handles GET /api/recitations/{id}/reviews.
func (h *RecitationHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, recitationID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), userID, recitationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviewsToResponse(reviews))
}

// AbandonRecitation handles POST /api/recitations/{id}/abandon.
func (h *RecitationHandler) AbandonRecitation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, recitationID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	rec, err := h.service.AbandonRecitation(r.Context(), userID, recitationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to abandon recitation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recitationToResponse(rec))
}

// CompleteReview handles POST /api/reviews/{id}/complete.
func (h *RecitationHandler) CompleteReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, reviewID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CompleteReviewRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	result, err := h.service.CompleteReview(
		r.Context(), userID, reviewID, domain.QualityRating(*req.QualityRating), req.Notes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete review")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, completedToResponse(result))
}

// DueReviews handles GET /api/reviews/due.
func (h *RecitationHandler) DueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	reviews, err := h.service.DueReviews(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviewsToResponse(reviews))
}
