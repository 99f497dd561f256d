package weather

import (
	"context"
	"time"

	"github.com/shadesync/shadesync-core/internal/infrastructure/config"
	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

// Fetcher retrieves current conditions from an upstream provider.
type Fetcher interface {
	Fetch(ctx context.Context, query Query) (*Conditions, error)
}

// Recorder mirrors weather observations to the telemetry store.
// Implementations must be non-blocking and best-effort.
type Recorder interface {
	WriteWeatherObservation(locationKey, condition string, temp float64, isDay bool)
}

// Service serves normalised weather conditions with TTL caching.
type Service struct {
	fetcher  Fetcher
	cache    *cache
	recorder Recorder
	log      *logging.Logger
}

// NewService creates a weather service backed by the given fetcher.
// recorder may be nil when the telemetry mirror is disabled.
func NewService(fetcher Fetcher, cfg config.WeatherConfig, recorder Recorder, log *logging.Logger) *Service {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		fetcher:  fetcher,
		cache:    newCache(ttl, cfg.CacheMaxEntries),
		recorder: recorder,
		log:      log,
	}
}

// Current returns conditions for the given location, serving from cache
// when a fresh entry exists.
func (s *Service) Current(ctx context.Context, query Query) (*Conditions, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	key := cacheKey(query)

	if cached := s.cache.get(key); cached != nil {
		return cached, nil
	}

	conditions, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	s.cache.put(key, conditions)

	if s.recorder != nil {
		s.recorder.WriteWeatherObservation(key, conditions.Condition, conditions.Temp, conditions.IsDay)
	}

	s.log.Debug("weather fetched",
		"location", key,
		"condition", conditions.Condition,
	)

	return conditions, nil
}

// validateQuery rejects queries with neither a postal code nor in-range
// coordinates.
func validateQuery(query Query) error {
	if query.Zip != "" {
		return nil
	}
	if query.Coords == nil {
		return ErrInvalidLocation
	}
	if query.Coords.Latitude < -90 || query.Coords.Latitude > 90 ||
		query.Coords.Longitude < -180 || query.Coords.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}
