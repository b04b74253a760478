package api

import (
	"context"
	"net/http"

	"github.com/cityreports/miniapp/internal/weather/domain"
)

// WeatherService reports current weather for the widget.
type WeatherService interface {
	Current(ctx context.Context) domain.Report
}

// WeatherHandler serves the weather widget.
type WeatherHandler struct {
	weather WeatherService
}

// NewWeatherHandler creates a weather handler. A nil service makes every
// request answer 503.
func NewWeatherHandler(weather WeatherService) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// GetWeather handles GET /api/weather
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	if h.weather == nil {
		writeError(w, ErrWeatherUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, h.weather.Current(r.Context()))
}
