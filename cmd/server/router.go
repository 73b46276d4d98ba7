package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lexora-app/mastery-api/internal/api"
	apiMiddleware "github.com/lexora-app/mastery-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	reviewHandler := api.NewReviewHandler(app.scheduler, app.runner)
	sessionHandler := api.NewSessionHandler(app.runner)
	progressHandler := api.NewProgressHandler(app.ledger, app.runner)
	achievementHandler := api.NewAchievementHandler(app.engine, app.runner)
	entityHandler := api.NewEntityHandler(app.gate, app.runner)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Review scheduling
			r.Get("/sections/{sectionID}/cards/due", reviewHandler.DueCards)
			r.Get("/sections/{sectionID}/stats", reviewHandler.SectionStats)
			r.Post("/cards/{wordID}/review", reviewHandler.Review)

			// Practice sessions
			r.Post("/sessions", sessionHandler.Complete)
			r.Post("/sessions/browse", sessionHandler.Browse)

			// Progress and rewards
			r.Get("/progress", progressHandler.Get)
			r.Post("/progress/daily-login", progressHandler.DailyLogin)
			r.Post("/progress/reset", progressHandler.Reset)

			// Achievements
			r.Get("/achievements", achievementHandler.List)
			r.Get("/achievements/stats", achievementHandler.Stats)
			r.Post("/achievements/{achievementID}/claim", achievementHandler.Claim)

			// Gated entities
			r.Get("/entities", entityHandler.List)
			r.Get("/entities/{entityID}", entityHandler.Get)
			r.Post("/entities/{entityID}/unlock", entityHandler.Unlock)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
