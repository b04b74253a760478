// Package openmeteo fetches current weather from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cityreports/miniapp/internal/weather/domain"
)

// DefaultBaseURL is the public forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const currentFields = "temperature_2m,apparent_temperature,weather_code"

type forecastResponse struct {
	Current *struct {
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client implements domain.Provider against Open-Meteo.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the number of attempts and the first backoff delay.
// The delay doubles after each failed attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates an Open-Meteo client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		backoff:    500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the current reading at loc, retrying transient failures.
func (c *Client) Fetch(ctx context.Context, loc domain.Location) (domain.Reading, error) {
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			delay := c.backoff * time.Duration(1<<uint(i-1))
			c.logger.DebugContext(ctx, "retrying weather fetch", "attempt", i+1, "delay", delay)
			select {
			case <-ctx.Done():
				return domain.Reading{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		reading, err := c.fetchOnce(ctx, loc)
		if err == nil {
			return reading, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		c.logger.WarnContext(ctx, "weather fetch attempt failed", "attempt", i+1, "error", err)
	}
	return domain.Reading{}, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, loc domain.Location) (domain.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(loc), nil)
	if err != nil {
		return domain.Reading{}, permanent{err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("request forecast: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Reading{}, fmt.Errorf("read forecast: %w", err)
	}

	var payload forecastResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("forecast API returned status %d", resp.StatusCode)
		if decodeErr == nil && payload.Reason != "" {
			err = fmt.Errorf("forecast API returned status %d: %s", resp.StatusCode, payload.Reason)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return domain.Reading{}, permanent{err}
		}
		return domain.Reading{}, err
	}
	if decodeErr != nil {
		return domain.Reading{}, fmt.Errorf("decode forecast: %w", decodeErr)
	}
	if payload.Current == nil {
		return domain.Reading{}, permanent{fmt.Errorf("forecast has no current block")}
	}

	return domain.Reading{
		Temperature: payload.Current.Temperature,
		FeelsLike:   payload.Current.ApparentTemperature,
		Condition:   Condition(payload.Current.WeatherCode),
	}, nil
}

func (c *Client) requestURL(loc domain.Location) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("timezone", "auto")
	return c.baseURL + "?" + q.Encode()
}

// permanent marks errors a retry cannot fix.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

func retryable(err error) bool {
	_, ok := err.(permanent)
	return !ok
}
