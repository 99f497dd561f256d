package weather

import "errors"

var (
	// ErrNotConfigured is returned when no upstream API key is set.
	ErrNotConfigured = errors.New("weather: api key not configured")

	// ErrInvalidLocation is returned when a query has neither a postal
	// code nor valid coordinates.
	ErrInvalidLocation = errors.New("weather: invalid location query")

	// ErrUpstream is returned when the upstream provider fails or responds
	// with an unexpected payload.
	ErrUpstream = errors.New("weather: upstream request failed")
)
