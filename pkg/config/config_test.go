package config

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars blanks every variable Load reads for the duration of the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"HOST", "PORT", "STATIC_DIR", "CORS_ALLOWED_ORIGINS",
		"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST", "SHUTDOWN_TIMEOUT",
		"USERS_DATA_PATHS",
		"WEATHER_ENABLED", "WEATHER_API_URL", "WEATHER_CITY",
		"WEATHER_LATITUDE", "WEATHER_LONGITUDE", "WEATHER_TIMEOUT", "WEATHER_CACHE_TTL",
		"REDIS_URL",
	}
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFormat)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "127.0.0.1:5000", cfg.Addr())
	assert.Equal(t, "static", cfg.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, DefaultStoreCandidates, cfg.StoreCandidates)

	assert.True(t, cfg.WeatherEnabled)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherAPIURL)
	assert.Equal(t, "Москва", cfg.WeatherCity)
	assert.InDelta(t, 55.7558, cfg.WeatherLatitude, 1e-9)
	assert.InDelta(t, 37.6173, cfg.WeatherLongitude, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 10*time.Minute, cfg.WeatherCacheTTL)

	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("USERS_DATA_PATHS", "/srv/users.json:/tmp/users.json")
	t.Setenv("WEATHER_ENABLED", "false")
	t.Setenv("WEATHER_CITY", "Казань")
	t.Setenv("WEATHER_TIMEOUT", "2s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, []string{"/srv/users.json", "/tmp/users.json"}, cfg.StoreCandidates)
	assert.False(t, cfg.WeatherEnabled)
	assert.Equal(t, "Казань", cfg.WeatherCity)
	assert.Equal(t, 2*time.Second, cfg.WeatherTimeout)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoad_ExplicitHost(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("HOST", "10.0.0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Host)
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", false},
		{"production", true},
		{"staging", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.env}
			assert.Equal(t, tt.want, cfg.IsProduction())
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"127.0.0.1", 5000, "127.0.0.1:5000"},
		{"", 8080, ":8080"},
		{"::", 5000, "[::]:5000"},
		{"::1", 80, "[::1]:80"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := &Config{Host: tt.host, Port: tt.port}
			addr := cfg.Addr()
			assert.Equal(t, tt.want, addr)

			host, port, err := net.SplitHostPort(addr)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, strconv.Itoa(tt.port), port)
		})
	}
}

func TestGetEnv(t *testing.T) {
	assert.Equal(t, "default", getEnv("MINIAPP_NON_EXISTENT_VAR", "default"))

	t.Setenv("MINIAPP_TEST_VAR", "custom")
	assert.Equal(t, "custom", getEnv("MINIAPP_TEST_VAR", "default"))

	t.Setenv("MINIAPP_TEST_EMPTY", "")
	assert.Equal(t, "default", getEnv("MINIAPP_TEST_EMPTY", "default"))
}

func TestGetIntEnv(t *testing.T) {
	assert.Equal(t, 42, getIntEnv("MINIAPP_NON_EXISTENT_INT", 42))

	t.Setenv("MINIAPP_TEST_INT", "100")
	assert.Equal(t, 100, getIntEnv("MINIAPP_TEST_INT", 42))

	t.Setenv("MINIAPP_TEST_INVALID_INT", "not-a-number")
	assert.Equal(t, 42, getIntEnv("MINIAPP_TEST_INVALID_INT", 42))
}

func TestGetFloatEnv(t *testing.T) {
	assert.InDelta(t, 1.5, getFloatEnv("MINIAPP_NON_EXISTENT_FLOAT", 1.5), 1e-9)

	t.Setenv("MINIAPP_TEST_FLOAT", "-33.25")
	assert.InDelta(t, -33.25, getFloatEnv("MINIAPP_TEST_FLOAT", 1.5), 1e-9)

	t.Setenv("MINIAPP_TEST_INVALID_FLOAT", "north")
	assert.InDelta(t, 1.5, getFloatEnv("MINIAPP_TEST_INVALID_FLOAT", 1.5), 1e-9)
}

func TestGetDurationEnv(t *testing.T) {
	assert.Equal(t, 5*time.Second, getDurationEnv("MINIAPP_NON_EXISTENT_DUR", 5*time.Second))

	t.Setenv("MINIAPP_TEST_DUR", "10m")
	assert.Equal(t, 10*time.Minute, getDurationEnv("MINIAPP_TEST_DUR", 5*time.Second))

	t.Setenv("MINIAPP_TEST_INVALID_DUR", "not-a-duration")
	assert.Equal(t, 5*time.Second, getDurationEnv("MINIAPP_TEST_INVALID_DUR", 5*time.Second))
}

func TestGetBoolEnv(t *testing.T) {
	assert.True(t, getBoolEnv("MINIAPP_NON_EXISTENT_BOOL", true))

	for _, tv := range []string{"true", "1", "True", "TRUE"} {
		t.Setenv("MINIAPP_TEST_BOOL", tv)
		assert.True(t, getBoolEnv("MINIAPP_TEST_BOOL", false), "Expected true for value: %s", tv)
	}
	for _, fv := range []string{"false", "0", "False", "FALSE"} {
		t.Setenv("MINIAPP_TEST_BOOL", fv)
		assert.False(t, getBoolEnv("MINIAPP_TEST_BOOL", true), "Expected false for value: %s", fv)
	}

	t.Setenv("MINIAPP_TEST_INVALID_BOOL", "not-a-bool")
	assert.True(t, getBoolEnv("MINIAPP_TEST_INVALID_BOOL", true))
}

func TestGetPathListEnv(t *testing.T) {
	assert.Nil(t, getPathListEnv("MINIAPP_NON_EXISTENT_PATH"))

	t.Setenv("MINIAPP_TEST_PATH", "/path/to/users.json")
	assert.Equal(t, []string{"/path/to/users.json"}, getPathListEnv("MINIAPP_TEST_PATH"))

	t.Setenv("MINIAPP_TEST_PATHS", "/path1::/path2:/path3")
	assert.Equal(t, []string{"/path1", "/path2", "/path3"}, getPathListEnv("MINIAPP_TEST_PATHS"))
}

func TestGetListEnv(t *testing.T) {
	def := []string{"*"}
	assert.Equal(t, def, getListEnv("MINIAPP_NON_EXISTENT_LIST", def))

	t.Setenv("MINIAPP_TEST_LIST", " , ")
	assert.Equal(t, def, getListEnv("MINIAPP_TEST_LIST", def))
}
