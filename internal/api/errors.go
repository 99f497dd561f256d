package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shadesync/shadesync-core/internal/auth"
	"github.com/shadesync/shadesync-core/internal/command"
	"github.com/shadesync/shadesync-core/internal/device"
	"github.com/shadesync/shadesync-core/internal/schedule"
	"github.com/shadesync/shadesync-core/internal/weather"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeConflict     = "conflict"
	ErrCodeUpstream     = "upstream_error"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps sentinel errors from the domain packages onto
// HTTP status codes. Anything unmapped is a 500 with a generic message
// so internal details never leak to clients.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUserDisabled),
		errors.Is(err, auth.ErrTokenInvalid):
		writeUnauthorized(w, err.Error())

	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, device.ErrInvalidSerial),
		errors.Is(err, device.ErrInvalidMode),
		errors.Is(err, command.ErrInvalidAction),
		errors.Is(err, schedule.ErrInvalidAction),
		errors.Is(err, schedule.ErrInvalidStartTime),
		errors.Is(err, schedule.ErrInvalidScope),
		errors.Is(err, weather.ErrInvalidLocation):
		writeBadRequest(w, err.Error())

	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, schedule.ErrScheduleNotFound):
		writeNotFound(w, err.Error())

	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, device.ErrAlreadyClaimed),
		errors.Is(err, command.ErrManualHold),
		errors.Is(err, command.ErrScheduleInactive):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())

	case errors.Is(err, weather.ErrUpstream),
		errors.Is(err, weather.ErrNotConfigured):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())

	default:
		s.logger.Error("unhandled error in HTTP handler",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}
