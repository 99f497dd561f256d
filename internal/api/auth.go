package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shadesync/shadesync-core/internal/settings"
)

// signupRequest is the body for POST /auth/signup.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// resetPasswordRequest is the body for POST /auth/reset-password.
type resetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleSignup creates an account and seeds its settings profile.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	user, err := s.auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// The settings profile mirrors the display name so the profile page
	// has something to show before the first save.
	if s.settings != nil && req.Name != "" {
		if _, err := s.settings.SaveProfile(r.Context(), user.ID, settings.Section{"name": req.Name}); err != nil {
			s.logger.Warn("seeding settings profile failed", "user_id", user.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": user,
	})
}

// handleLogin verifies credentials and returns a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": session.AccessToken,
		"expires_at":   session.ExpiresAt.UTC().Format(time.RFC3339),
		"user":         session.User,
	})
}

// handleResetPassword replaces the caller's password after verifying the
// current one, and stamps the reset time in their settings.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeBadRequest(w, "current_password and new_password are required")
		return
	}

	userID := userIDFrom(r)
	if err := s.auth.ResetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := map[string]any{"status": "ok"}
	if s.settings != nil {
		stamp, err := s.settings.MarkPasswordReset(r.Context(), userID)
		if err != nil {
			s.logger.Warn("stamping password reset failed", "user_id", userID, "error", err)
		} else {
			resp["last_password_reset_at"] = stamp.Format(time.RFC3339)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
