// Package database provides SQLite persistence for ShadeSync Core.
//
// It wraps database/sql with connection setup (WAL mode, busy timeout,
// foreign keys), health checks, and an embedded-migration runner. Each
// migration applies in its own transaction so a failed migration leaves
// earlier ones committed and can be retried after a fix.
//
// Usage:
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
