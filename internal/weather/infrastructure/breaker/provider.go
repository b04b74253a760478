// Package breaker guards a weather provider with a circuit breaker.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/cityreports/miniapp/internal/weather/domain"
	"github.com/cityreports/miniapp/pkg/observability"
)

// Config configures the breaker.
type Config struct {
	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
}

// DefaultConfig returns the default breaker settings.
func DefaultConfig() Config {
	return Config{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// Provider fails fast while the upstream provider keeps failing.
type Provider struct {
	next    domain.Provider
	cb      *gobreaker.CircuitBreaker[domain.Reading]
	logger  *slog.Logger
	metrics observability.Metrics
}

// New wraps next with a circuit breaker.
func New(next domain.Provider, cfg Config, logger *slog.Logger, metrics observability.Metrics) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	p := &Provider{next: next, logger: logger, metrics: metrics}

	settings := gobreaker.Settings{
		Name:        "weather",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			p.metrics.Gauge(observability.MetricBreakerState, float64(to))
		},
	}
	p.cb = gobreaker.NewCircuitBreaker[domain.Reading](settings)
	return p
}

// Fetch calls the wrapped provider unless the breaker is open.
func (p *Provider) Fetch(ctx context.Context, loc domain.Location) (domain.Reading, error) {
	reading, err := p.cb.Execute(func() (domain.Reading, error) {
		return p.next.Fetch(ctx, loc)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Reading{}, errors.Join(domain.ErrProviderUnavailable, err)
	}
	return reading, err
}

// State returns the breaker state name: closed, half-open or open.
func (p *Provider) State() string {
	return p.cb.State().String()
}

// Check reports the breaker as a health component. An open breaker degrades
// the service without making it unhealthy.
func (p *Provider) Check(ctx context.Context) observability.HealthCheckResult {
	state := p.cb.State()
	result := observability.HealthCheckResult{
		Status:  observability.HealthStatusHealthy,
		Details: map[string]any{"state": state.String()},
	}
	if state != gobreaker.StateClosed {
		result.Status = observability.HealthStatusDegraded
		result.Message = "weather provider circuit is " + state.String()
	}
	return result
}
