// ShadeSync Core - Motorised Shade Backend
//
// This is the main entry point for the ShadeSync Core service. It backs
// the ShadeSync web and mobile apps with:
//   - Account signup, login, and password reset
//   - Claim-once device onboarding by serial number
//   - Mode resolution (auto vs manual holds with expiry)
//   - Weekly schedules with skip/disable overrides
//   - An append-only shade command log with admission control
//   - A cached weather proxy for the dashboard
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/shadesync/shadesync-core/migrations"

	"github.com/shadesync/shadesync-core/internal/api"
	"github.com/shadesync/shadesync-core/internal/audit"
	"github.com/shadesync/shadesync-core/internal/auth"
	"github.com/shadesync/shadesync-core/internal/command"
	"github.com/shadesync/shadesync-core/internal/device"
	"github.com/shadesync/shadesync-core/internal/infrastructure/config"
	"github.com/shadesync/shadesync-core/internal/infrastructure/database"
	"github.com/shadesync/shadesync-core/internal/infrastructure/influxdb"
	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
	"github.com/shadesync/shadesync-core/internal/infrastructure/mqtt"
	"github.com/shadesync/shadesync-core/internal/schedule"
	"github.com/shadesync/shadesync-core/internal/settings"
	"github.com/shadesync/shadesync-core/internal/weather"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error { //nolint:gocognit // linear start-up sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting ShadeSync Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional command-dispatch placeholder)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, command dispatch is log-only")
	}

	// Connect to InfluxDB (optional telemetry mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			influxClient.Close()
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build repositories and domain services
	users := auth.NewUserRepository(db.DB)
	authSvc := auth.NewService(users, cfg.Security.JWT, log.With("component", "auth"))

	devices := device.NewRepository(db.DB)
	modes := device.NewModeRepository(db.DB)
	resolver := device.NewResolver(devices, modes, log.With("component", "device"))

	schedules := schedule.NewStore(db.DB, log.With("component", "schedule"))
	registry := device.NewRegistry(devices, schedules, log.With("component", "device"))

	auditRepo := audit.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)

	// Typed nils must not leak into the service's interface fields.
	var dispatcher command.Dispatcher
	if mqttClient != nil {
		dispatcher = mqttClient
	}
	var recorder command.Recorder
	if influxClient != nil {
		recorder = influxClient
	}
	commands := command.NewService(
		command.NewRepository(db.DB),
		resolver,
		schedules,
		auditRepo,
		dispatcher,
		recorder,
		log.With("component", "command"),
	)

	var weatherRecorder weather.Recorder
	if influxClient != nil {
		weatherRecorder = influxClient
	}
	weatherSvc := weather.NewService(
		weather.NewClient(cfg.Weather),
		cfg.Weather,
		weatherRecorder,
		log.With("component", "weather"),
	)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log.With("component", "api"),
		Registry:  registry,
		Resolver:  resolver,
		Commands:  commands,
		Schedules: schedules,
		Auth:      authSvc,
		Users:     users,
		Settings:  settingsRepo,
		Weather:   weatherSvc,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("ShadeSync Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SHADESYNC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SHADESYNC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
