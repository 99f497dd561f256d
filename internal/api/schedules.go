package api

import (
	"encoding/json"
	"net/http"

	"github.com/shadesync/shadesync-core/internal/schedule"
)

// saveScheduleRequest is the body for POST /schedule. ByDay keys are the
// short day codes (M, T, W, Th, F, Sa, Su); unknown keys are dropped.
type saveScheduleRequest struct {
	ByDay    map[string][]schedule.EntryInput `json:"by_day"`
	Timezone string                           `json:"timezone,omitempty"`
}

// setScheduleStateRequest is the body for PATCH /schedule.
type setScheduleStateRequest struct {
	Scope string `json:"scope"`
}

// handleGetSchedule returns the caller's full weekly program grouped by
// day code, with today's skip state.
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	weekly, err := s.schedules.Get(r.Context(), d.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weekly)
}

// handleSaveSchedule replaces the caller's entire weekly program in one
// transaction and returns how many entries were written.
func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	var req saveScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	count, err := s.schedules.Save(r.Context(), d.ID, req.ByDay, req.Timezone)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelScheduleUpdated, map[string]any{
			"device_id": d.ID,
			"entries":   count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": d.ID,
		"entries":   count,
	})
}

// handleSetScheduleState changes the schedule's activation: skip today,
// disable entirely, or re-enable.
func (s *Server) handleSetScheduleState(w http.ResponseWriter, r *http.Request) {
	var req setScheduleStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := s.registry.GetByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.schedules.SetState(r.Context(), d.ID, req.Scope); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	weekly, err := s.schedules.Get(r.Context(), d.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelScheduleUpdated, map[string]any{
			"device_id":  d.ID,
			"enabled":    weekly.Enabled,
			"skip_today": weekly.SkipToday,
		})
	}

	writeJSON(w, http.StatusOK, weekly)
}
