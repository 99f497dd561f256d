package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shadesync/shadesync-core/internal/device"
)

// claimRequest is the body for POST /device.
type claimRequest struct {
	SerialNumber string `json:"serial_number"`
}

// setModeRequest is the body for POST /device/mode.
type setModeRequest struct {
	Mode string `json:"mode"`
	// Until is an optional absolute expiry for a manual hold, RFC3339.
	Until string `json:"until,omitempty"`
}

// issueCommandRequest is the body for POST /device/command.
type issueCommandRequest struct {
	Action string `json:"action"`
	Source string `json:"source,omitempty"`
}

// handleGetDevice returns the caller's claimed device with its resolved
// operating mode.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	effective, err := s.resolver.Resolve(r.Context(), d)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device":         d,
		"effective_mode": effective,
	})
}

// handleClaimDevice binds a provisioned shade to the caller by serial
// number. Re-claiming your own device returns it unchanged.
func (s *Server) handleClaimDevice(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := s.registry.Claim(r.Context(), req.SerialNumber, userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device": d,
	})
}

// handleSetMode applies an explicit mode change to the caller's device.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var until *time.Time
	if req.Until != "" {
		t, err := time.Parse(time.RFC3339, req.Until)
		if err != nil {
			writeBadRequest(w, "until must be an RFC3339 timestamp")
			return
		}
		until = &t
	}

	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.resolver.SetMode(r.Context(), d.ID, device.Mode(req.Mode), until); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// Re-read so the response reflects what actually landed (auto drops
	// any supplied expiry).
	d, err = s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	effective, err := s.resolver.Resolve(r.Context(), d)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelModeChanged, map[string]any{
			"device_id":      d.ID,
			"effective_mode": effective,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device":         d,
		"effective_mode": effective,
	})
}

// handleIssueCommand runs a shade command through admission and appends
// it to the command log.
func (s *Server) handleIssueCommand(w http.ResponseWriter, r *http.Request) {
	var req issueCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	userID := userIDFrom(r)
	d, err := s.registry.GetByOwner(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	cmd, err := s.commands.Issue(r.Context(), d, req.Action, req.Source, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelCommandIssued, cmd)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"command": cmd,
	})
}

// handleListCommands returns the device's recent command log, newest first.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	commands, err := s.commands.Recent(r.Context(), d.ID, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"commands": commands,
		"count":    len(commands),
	})
}
