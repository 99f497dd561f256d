// Package settings stores per-user preferences as sectioned JSON
// documents.
//
// A user who has never saved anything reads back the built-in defaults.
// Saves are partial: each supplied section is merged key-by-key over the
// current values, untouched sections survive, and the profile section is
// only writable through its own endpoint.
package settings
