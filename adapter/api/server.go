// Package api serves the miniapp HTTP API and its static pages.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cityreports/miniapp/internal/users/application"
	"github.com/cityreports/miniapp/pkg/observability"
)

// Server is the HTTP server for the miniapp.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	version string

	users   *application.Service
	user    *UserHandler
	weather *WeatherHandler
	health  *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	StaticDir          string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	Version            string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:               "127.0.0.1:5000",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		StaticDir:          "static",
		CORSAllowedOrigins: []string{"*"},
		RateLimitBurst:     20,
		Version:            "dev",
	}
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Users *application.Service
	// Weather may be nil, in which case /api/weather answers 503.
	Weather        WeatherService
	Health         *observability.HealthRegistry
	Metrics        observability.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	health := deps.Health
	if health == nil {
		health = observability.NewHealthRegistry(cfg.Version)
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		version: cfg.Version,
		users:   deps.Users,
		user:    NewUserHandler(UserHandlerConfig{Users: deps.Users, Logger: logger}),
		weather: NewWeatherHandler(deps.Weather),
		health:  health,
	}

	s.registerRoutes(cfg.StaticDir, deps.MetricsHandler)

	var handler http.Handler = s.mux
	handler = withRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, handler)
	handler = withCORS(cfg.CORSAllowedOrigins, handler)
	handler = withInstrumentation(logger, metrics, handler)
	handler = withRequestID(handler)
	handler = withRecovery(logger, handler)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the routes.
func (s *Server) registerRoutes(staticDir string, metricsHandler http.Handler) {
	// Health check
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}

	s.mux.HandleFunc("GET /api/user-profile", s.user.GetProfile)
	s.mux.HandleFunc("GET /api/user-settings", s.user.GetSettings)
	s.mux.HandleFunc("POST /api/user-settings", s.user.UpdateSetting)
	s.mux.HandleFunc("GET /api/weather", s.weather.GetWeather)
	s.mux.HandleFunc("GET /api/debug", s.handleDebug)

	for route, file := range StaticPages {
		s.mux.HandleFunc("GET "+route, staticFile(staticDir, file, s.logger))
	}

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, ErrNotFound)
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.Check(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the API server. It returns nil after Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting miniapp API server", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down miniapp API server")
	return s.server.Shutdown(ctx)
}
