package api

import (
	"encoding/json"
	"net/http"

	"github.com/shadesync/shadesync-core/internal/settings"
)

// handleGetSettings returns the caller's settings, falling back to the
// built-in defaults for users who have never saved anything.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, current)
}

// handleSaveSettings merges the supplied sections key-by-key over the
// caller's current settings. The profile section is not writable here.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	saved, err := s.settings.Save(r.Context(), userIDFrom(r), &patch)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// handleGetProfile returns just the profile section.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.settings.GetProfile(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
	})
}

// handleSaveProfile merges partial keys into the profile section and, when
// a name is supplied, keeps the account display name in step with it.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var partial settings.Section
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	userID := userIDFrom(r)
	profile, err := s.settings.SaveProfile(r.Context(), userID, partial)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if name, ok := partial["name"].(string); ok && name != "" && s.users != nil {
		if err := s.users.UpdateDisplayName(r.Context(), userID, name); err != nil {
			s.logger.Warn("display name sync failed", "user_id", userID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
	})
}
