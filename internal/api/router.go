package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Account creation and login (no auth required)
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/reset-password", s.handleResetPassword)

			// Device endpoints: a user owns at most one shade, so the
			// routes address "the device" rather than a collection.
			r.Route("/device", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Post("/", s.handleClaimDevice)
				r.Post("/mode", s.handleSetMode)
				r.Post("/command", s.handleIssueCommand)
				r.Get("/commands", s.handleListCommands)
			})

			// Schedule endpoints
			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", s.handleGetSchedule)
				r.Post("/", s.handleSaveSchedule)
				r.Patch("/", s.handleSetScheduleState)
			})

			// Weather proxy
			r.Get("/weather", s.handleGetWeather)

			// Settings and profile
			r.Get("/settings", s.handleGetSettings)
			r.Post("/settings", s.handleSaveSettings)
			r.Get("/profile", s.handleGetProfile)
			r.Post("/profile", s.handleSaveProfile)

			// WebSocket event stream (token validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
