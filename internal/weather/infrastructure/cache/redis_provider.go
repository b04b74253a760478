// Package cache caches weather readings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cityreports/miniapp/internal/weather/domain"
	"github.com/cityreports/miniapp/pkg/observability"
)

const keyPrefix = "miniapp:weather:"

// RedisProvider serves readings from Redis and refreshes them from the
// wrapped provider on a miss. Redis failures fall through to the provider.
type RedisProvider struct {
	next    domain.Provider
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewRedisProvider wraps next with a Redis cache.
func NewRedisProvider(next domain.Provider, client *redis.Client, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *RedisProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RedisProvider{
		next:    next,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch returns a cached reading or fetches and caches a fresh one.
func (p *RedisProvider) Fetch(ctx context.Context, loc domain.Location) (domain.Reading, error) {
	key := keyPrefix + loc.Key()

	data, err := p.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var reading domain.Reading
		if jsonErr := json.Unmarshal(data, &reading); jsonErr == nil {
			p.metrics.Counter(observability.MetricWeatherCacheHits, 1)
			return reading, nil
		}
		p.logger.WarnContext(ctx, "discarding unreadable cached weather", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		p.logger.WarnContext(ctx, "weather cache read failed", "error", err)
	}

	reading, err := p.next.Fetch(ctx, loc)
	if err != nil {
		return domain.Reading{}, err
	}

	if data, err := json.Marshal(reading); err == nil {
		if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
			p.logger.WarnContext(ctx, "weather cache write failed", "error", err)
		}
	}
	return reading, nil
}

// Ping checks the Redis connection.
func (p *RedisProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// NewClient parses a redis:// URL into a client.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
