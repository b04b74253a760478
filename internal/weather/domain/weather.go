// Package domain defines the weather widget's types and provider contract.
package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrProviderUnavailable is returned when a provider refuses to serve,
// for example while its circuit breaker is open.
var ErrProviderUnavailable = errors.New("weather provider unavailable")

// Location is a point on the map.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Key identifies the location in caches, rounded to about a kilometre.
func (l Location) Key() string {
	return fmt.Sprintf("%.2f,%.2f", l.Latitude, l.Longitude)
}

// Reading is the current weather at a location.
type Reading struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Condition   string  `json:"condition"`
}

// Provider fetches current weather.
type Provider interface {
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, loc Location) (Reading, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, loc Location) (Reading, error) {
	return f(ctx, loc)
}

// Report is the payload served to the widget.
type Report struct {
	City        string `json:"city"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
	FeelsLike   int    `json:"feels_like"`
}

// NewReport rounds a reading for display.
func NewReport(city string, r Reading) Report {
	return Report{
		City:        city,
		Temperature: int(math.Round(r.Temperature)),
		Condition:   r.Condition,
		FeelsLike:   int(math.Round(r.FeelsLike)),
	}
}

// FallbackReport is served whenever the provider fails.
func FallbackReport(city string) Report {
	return Report{
		City:        city,
		Temperature: 15,
		Condition:   "Облачно",
		FeelsLike:   13,
	}
}
