// Package weather proxies the upstream OpenWeather API for the dashboard.
//
// Responses are normalised to a small stable shape so the frontend never
// sees upstream schema changes, and cached in memory with a short TTL to
// keep request volume well inside the free-tier quota. Upstream failures
// surface as ErrUpstream; the handler maps this to 502 without leaking
// provider details.
package weather
