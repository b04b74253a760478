// Package config loads miniapp configuration from the environment.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultStoreCandidates are probed in order when USERS_DATA_PATHS is unset.
var DefaultStoreCandidates = []string{
	"users_data.json",
	filepath.Join("..", "users_data.json"),
	filepath.Join("data", "users_data.json"),
}

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// HTTP
	Host               string
	Port               int
	StaticDir          string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ShutdownTimeout    time.Duration

	// Store
	StoreCandidates []string

	// Weather
	WeatherEnabled   bool
	WeatherAPIURL    string
	WeatherCity      string
	WeatherLatitude  float64
	WeatherLongitude float64
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration

	// Redis
	RedisURL string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		Host:               getEnv("HOST", ""),
		Port:               getIntEnv("PORT", 5000),
		StaticDir:          getEnv("STATIC_DIR", "static"),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getFloatEnv("API_RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getIntEnv("API_RATE_LIMIT_BURST", 20),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreCandidates: getPathListEnv("USERS_DATA_PATHS"),

		WeatherEnabled:   getBoolEnv("WEATHER_ENABLED", true),
		WeatherAPIURL:    getEnv("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherCity:      getEnv("WEATHER_CITY", "Москва"),
		WeatherLatitude:  getFloatEnv("WEATHER_LATITUDE", 55.7558),
		WeatherLongitude: getFloatEnv("WEATHER_LONGITUDE", 37.6173),
		WeatherTimeout:   getDurationEnv("WEATHER_TIMEOUT", 5*time.Second),
		WeatherCacheTTL:  getDurationEnv("WEATHER_CACHE_TTL", 10*time.Minute),

		RedisURL: getEnv("REDIS_URL", ""),
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
		if cfg.IsProduction() {
			cfg.Host = "0.0.0.0"
		}
	}
	if len(cfg.StoreCandidates) == 0 {
		cfg.StoreCandidates = append([]string(nil), DefaultStoreCandidates...)
	}

	return cfg, nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheEnabled reports whether weather readings are cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getPathListEnv splits an OS path list (colon on Unix, semicolon on Windows).
func getPathListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var paths []string
	for _, p := range filepath.SplitList(value) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
