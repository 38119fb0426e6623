package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/plantworks/configurizer-core/internal/audit"
	"github.com/plantworks/configurizer-core/internal/infrastructure/config"
	"github.com/plantworks/configurizer-core/internal/infrastructure/logging"
	"github.com/plantworks/configurizer-core/internal/infrastructure/metrics"
	"github.com/plantworks/configurizer-core/internal/infrastructure/mqtt"
	"github.com/plantworks/configurizer-core/internal/machine"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
//
// Audit, MQTT, and Metrics are optional: a nil value disables the
// corresponding side effect without affecting request handling.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Registry *machine.Registry
	Audit    audit.Repository
	MQTT     *mqtt.Client
	Metrics  *metrics.Client
	Version  string
}

// Server is the HTTP API server for Configurizer.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	registry *machine.Registry
	audit    audit.Repository
	mqtt     *mqtt.Client
	metrics  *metrics.Client
	topics   mqtt.Topics
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("machine registry is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		registry: deps.Registry,
		audit:    deps.Audit,
		mqtt:     deps.MQTT,
		metrics:  deps.Metrics,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
