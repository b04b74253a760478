// Package application serves the weather widget.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/cityreports/miniapp/internal/weather/domain"
	"github.com/cityreports/miniapp/pkg/observability"
)

// ServiceConfig configures the weather service.
type ServiceConfig struct {
	Provider domain.Provider
	City     string
	Location domain.Location
	// Timeout bounds a single Current call, retries included.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics observability.Metrics
}

// Service reports the weather for one configured city.
type Service struct {
	provider domain.Provider
	city     string
	location domain.Location
	timeout  time.Duration
	logger   *slog.Logger
	metrics  observability.Metrics
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	return &Service{
		provider: cfg.Provider,
		city:     cfg.City,
		location: cfg.Location,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// City returns the configured city name.
func (s *Service) City() string {
	return s.city
}

// Current returns the current weather. It never fails: provider errors are
// logged and replaced by a fixed fallback report.
func (s *Service) Current(ctx context.Context) domain.Report {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reading, err := s.provider.Fetch(ctx, s.location)
	if err != nil {
		s.logger.WarnContext(ctx, "weather unavailable, serving fallback", "city", s.city, "error", err)
		s.metrics.Counter(observability.MetricWeatherFallbacks, 1)
		return domain.FallbackReport(s.city)
	}
	return domain.NewReport(s.city, reading)
}
