// Package logging provides structured logging for ShadeSync Core.
//
// It wraps the standard library's log/slog with service defaults: a
// configurable handler (JSON or text), level filtering, and default
// service/version attributes on every record.
package logging
