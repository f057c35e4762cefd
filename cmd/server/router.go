package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/recite-api/internal/api"
	apiMiddleware "github.com/phrazzld/recite-api/internal/api/middleware"
	"github.com/phrazzld/recite-api/internal/service/auth"
	"github.com/phrazzld/recite-api/internal/service/recitation"
)

// newRouter mounts the recitation API behind bearer authentication, plus
// an unauthenticated health check.
func newRouter(svc recitation.Service, jwtService auth.JWTService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)
	recitationHandler := api.NewRecitationHandler(svc, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		recitationHandler.Register(r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
