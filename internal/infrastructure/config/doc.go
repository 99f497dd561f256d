// Package config loads and validates ShadeSync Core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by SHADESYNC_* environment variables. Secrets
// (JWT signing key, weather API key, MQTT credentials) should always come
// from the environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, ...})
package config
