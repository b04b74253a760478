// Package app wires the miniapp's components together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cityreports/miniapp/adapter/api"
	"github.com/cityreports/miniapp/internal/shared/infrastructure/security"
	userApp "github.com/cityreports/miniapp/internal/users/application"
	userDomain "github.com/cityreports/miniapp/internal/users/domain"
	userPersistence "github.com/cityreports/miniapp/internal/users/infrastructure/persistence"
	weatherApp "github.com/cityreports/miniapp/internal/weather/application"
	weatherDomain "github.com/cityreports/miniapp/internal/weather/domain"
	"github.com/cityreports/miniapp/internal/weather/infrastructure/breaker"
	"github.com/cityreports/miniapp/internal/weather/infrastructure/cache"
	"github.com/cityreports/miniapp/internal/weather/infrastructure/openmeteo"
	"github.com/cityreports/miniapp/pkg/config"
	"github.com/cityreports/miniapp/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Version string

	// Observability
	Metrics *observability.PrometheusMetrics
	Health  *observability.HealthRegistry

	// Users
	StoreLocation userPersistence.Location
	UserRepo      *userPersistence.JSONFileRepository
	UserService   *userApp.Service

	// Weather; WeatherService is nil when disabled.
	WeatherService *weatherApp.Service
	WeatherBreaker *breaker.Provider
	RedisClient    *redis.Client
}

// NewContainer creates a container. The store path is resolved once here and
// fixed for the container's lifetime.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Version: version,
		Metrics: observability.NewPrometheusMetrics(),
		Health:  observability.NewHealthRegistry(version),
	}

	candidates := make([]string, 0, len(cfg.StoreCandidates))
	for _, candidate := range cfg.StoreCandidates {
		if _, err := security.ValidatePath(candidate); err != nil {
			return nil, fmt.Errorf("invalid store path %q: %w", candidate, err)
		}
		candidates = append(candidates, candidate)
	}

	c.StoreLocation = userPersistence.Locate(candidates, logger)
	c.UserRepo = userPersistence.NewJSONFileRepository(c.StoreLocation.Path, logger)
	c.UserService = userApp.NewService(userApp.ServiceConfig{
		Repository: c.UserRepo,
		Projector:  userDomain.NewProjector(time.Local),
		Logger:     logger,
		Metrics:    c.Metrics,
	})
	c.Health.Register("store", observability.OptionalHealthChecker(func(ctx context.Context) error {
		_, err := c.UserRepo.Load(ctx)
		return err
	}))

	if cfg.WeatherEnabled {
		c.initWeather(ctx)
	} else {
		logger.Info("weather widget disabled")
	}

	return c, nil
}

// initWeather builds provider -> breaker -> cache -> service. Redis is
// optional: when unreachable the cache layer is skipped.
func (c *Container) initWeather(ctx context.Context) {
	cfg := c.Config

	var provider weatherDomain.Provider = openmeteo.NewClient(
		openmeteo.WithBaseURL(cfg.WeatherAPIURL),
		openmeteo.WithLogger(c.Logger),
	)

	c.WeatherBreaker = breaker.New(provider, breaker.DefaultConfig(), c.Logger, c.Metrics)
	provider = c.WeatherBreaker
	c.Health.Register("weather", c.WeatherBreaker.Check)

	if cfg.CacheEnabled() {
		client, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			c.Logger.Warn("invalid Redis URL, weather cache disabled", "error", err)
		} else if err := client.Ping(ctx).Err(); err != nil {
			c.Logger.Warn("Redis not available, weather cache disabled", "error", err)
			_ = client.Close()
		} else {
			c.RedisClient = client
			cached := cache.NewRedisProvider(provider, client, cfg.WeatherCacheTTL, c.Logger, c.Metrics)
			provider = cached
			c.Health.Register("redis", observability.OptionalHealthChecker(cached.Ping))
			c.Logger.Info("connected to Redis")
		}
	}

	c.WeatherService = weatherApp.NewService(weatherApp.ServiceConfig{
		Provider: provider,
		City:     cfg.WeatherCity,
		Location: weatherDomain.Location{Latitude: cfg.WeatherLatitude, Longitude: cfg.WeatherLongitude},
		Timeout:  cfg.WeatherTimeout,
		Logger:   c.Logger,
		Metrics:  c.Metrics,
	})
	c.Logger.Info("weather widget enabled",
		"city", c.WeatherService.City(),
		"cached", c.RedisClient != nil,
	)
}

// NewAPIServer builds the HTTP server on top of the container.
func (c *Container) NewAPIServer(serverCfg api.ServerConfig) *api.Server {
	serverCfg.Version = c.Version
	deps := api.Deps{
		Users:          c.UserService,
		Health:         c.Health,
		Metrics:        c.Metrics,
		MetricsHandler: c.Metrics.Handler(),
		Logger:         c.Logger,
	}
	// Leave the interface nil rather than holding a nil *Service.
	if c.WeatherService != nil {
		deps.Weather = c.WeatherService
	}
	return api.NewServer(serverCfg, deps)
}

// ServerConfig derives the HTTP server configuration from Config.
func (c *Container) ServerConfig() api.ServerConfig {
	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = c.Config.Addr()
	serverCfg.StaticDir = c.Config.StaticDir
	serverCfg.CORSAllowedOrigins = c.Config.CORSAllowedOrigins
	serverCfg.RateLimitRPS = c.Config.RateLimitRPS
	serverCfg.RateLimitBurst = c.Config.RateLimitBurst
	return serverCfg
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}
}
