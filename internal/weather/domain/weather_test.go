package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReport_Rounds(t *testing.T) {
	r := NewReport("Москва", Reading{Temperature: -0.6, FeelsLike: 12.5, Condition: "Ясно"})

	assert.Equal(t, Report{City: "Москва", Temperature: -1, FeelsLike: 13, Condition: "Ясно"}, r)
}

func TestFallbackReport(t *testing.T) {
	r := FallbackReport("Казань")

	assert.Equal(t, "Казань", r.City)
	assert.Equal(t, 15, r.Temperature)
	assert.Equal(t, 13, r.FeelsLike)
	assert.Equal(t, "Облачно", r.Condition)
}

func TestLocation_Key(t *testing.T) {
	assert.Equal(t, "55.76,37.62", Location{Latitude: 55.7558, Longitude: 37.6173}.Key())
	assert.Equal(t, "-33.87,151.21", Location{Latitude: -33.8688, Longitude: 151.2093}.Key())
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(ctx context.Context, loc Location) (Reading, error) {
		return Reading{Temperature: loc.Latitude}, nil
	})

	r, err := p.Fetch(context.Background(), Location{Latitude: 3})
	assert.NoError(t, err)
	assert.Equal(t, 3.0, r.Temperature)
}
