// Configurizer Core - Machine Settings Service
//
// This is the main entry point for the Configurizer service. Configurizer
// validates and applies typed setting batches to configurable plant
// machines, exposing them over a REST API with an audit trail of every
// apply attempt.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/plantworks/configurizer-core/internal/api"
	"github.com/plantworks/configurizer-core/internal/audit"
	"github.com/plantworks/configurizer-core/internal/infrastructure/config"
	"github.com/plantworks/configurizer-core/internal/infrastructure/database"
	"github.com/plantworks/configurizer-core/internal/infrastructure/logging"
	"github.com/plantworks/configurizer-core/internal/infrastructure/metrics"
	"github.com/plantworks/configurizer-core/internal/infrastructure/mqtt"
	"github.com/plantworks/configurizer-core/internal/machine"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Configurizer Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

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

	// Open database for the apply audit trail
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

	if schemaErr := db.EnsureSchema(ctx); schemaErr != nil {
		return fmt.Errorf("ensuring database schema: %w", schemaErr)
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Build the machine registry from configuration
	specs := make([]machine.Spec, 0, len(cfg.Machines))
	for _, m := range cfg.Machines {
		specs = append(specs, machine.Spec{
			Name:   m.Name,
			Kind:   m.Kind,
			Params: m.Params,
		})
	}
	registry, err := machine.NewRegistry(specs, machine.Builders())
	if err != nil {
		return fmt.Errorf("building machine registry: %w", err)
	}
	registry.SetLogger(log)
	log.Info("machine registry initialised", "machines", registry.Count())

	// Connect to MQTT broker (optional)
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
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB for apply metrics (optional)
	var metricsClient *metrics.Client
	if cfg.Metrics.Enabled {
		metricsClient, err = metrics.Connect(cfg.Metrics)
		if err != nil {
			return fmt.Errorf("connecting to metrics backend: %w", err)
		}
		defer func() {
			log.Info("closing metrics connection")
			metricsClient.Close()
		}()
		log.Info("metrics connected", "url", cfg.Metrics.URL, "bucket", cfg.Metrics.Bucket)
	} else {
		log.Info("metrics disabled")
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log.With("component", "api"),
		Registry: registry,
		Audit:    auditRepo,
		MQTT:     mqttClient,
		Metrics:  metricsClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error shutting down API server", "error", closeErr)
		}
	}()

	log.Info("Configurizer Core started")

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path from the
// CONFIGURIZER_CONFIG environment variable, or the default.
func getConfigPath() string {
	if path := os.Getenv("CONFIGURIZER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
