package api

import (
	"net/http"
	"strconv"

	"github.com/shadesync/shadesync-core/internal/weather"
)

// handleGetWeather proxies current conditions for a location given either
// as ?zip= or as ?lat=&lon=. Responses come from the in-memory cache when
// a fresh entry exists.
func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "weather service not configured")
		return
	}

	query := weather.Query{Zip: r.URL.Query().Get("zip")}

	if query.Zip == "" {
		latStr := r.URL.Query().Get("lat")
		lonStr := r.URL.Query().Get("lon")
		if latStr == "" || lonStr == "" {
			writeBadRequest(w, "zip or lat and lon query parameters are required")
			return
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			writeBadRequest(w, "lat must be a number")
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			writeBadRequest(w, "lon must be a number")
			return
		}
		query.Coords = &weather.Coordinates{Latitude: lat, Longitude: lon}
	}

	conditions, err := s.weather.Current(r.Context(), query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conditions)
}
