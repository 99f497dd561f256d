// Package influxdb provides the best-effort telemetry mirror for
// ShadeSync Core.
//
// Command events and weather observations are written as time-series
// points with non-blocking, batched writes. The mirror is optional:
// when disabled or unreachable, callers proceed without it and no error
// reaches the request path.
package influxdb
