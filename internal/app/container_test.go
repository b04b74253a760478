package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityreports/miniapp/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv:          "development",
		Host:            "127.0.0.1",
		Port:            5000,
		StaticDir:       filepath.Join(dir, "static"),
		StoreCandidates: []string{filepath.Join(dir, "missing.json"), filepath.Join(dir, "users_data.json")},
		WeatherCity:     "Москва",
	}
}

func TestNewContainer_LocatesStore(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.StoreCandidates[1], []byte(`{"42": {}}`), 0o644))

	c, err := NewContainer(context.Background(), cfg, nil, "test")
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.StoreLocation.Found)
	assert.Equal(t, cfg.StoreCandidates[1], c.UserRepo.Path())
	assert.Nil(t, c.WeatherService)
	assert.Equal(t, []string{"store"}, c.Health.Names())
}

func TestNewContainer_FallsBackToFirstCandidate(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(context.Background(), cfg, nil, "test")
	require.NoError(t, err)

	assert.False(t, c.StoreLocation.Found)
	assert.Equal(t, cfg.StoreCandidates[0], c.UserRepo.Path())
}

func TestNewContainer_RejectsSuspiciousStorePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreCandidates = []string{"users.json; rm -rf /"}

	_, err := NewContainer(context.Background(), cfg, nil, "test")
	assert.ErrorContains(t, err, "invalid store path")
}

func TestNewContainer_WeatherWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":10.4,"apparent_temperature":8.6,"weather_code":3}}`))
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.WeatherEnabled = true
	cfg.WeatherAPIURL = upstream.URL
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	c, err := NewContainer(context.Background(), cfg, nil, "test")
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.WeatherService)
	require.NotNil(t, c.RedisClient)
	assert.Equal(t, "Москва", c.WeatherService.City())
	assert.Equal(t, []string{"redis", "store", "weather"}, c.Health.Names())

	report := c.WeatherService.Current(context.Background())
	assert.Equal(t, 10, report.Temperature)
	assert.Equal(t, "Облачно", report.Condition)
	assert.Len(t, mr.Keys(), 1)
}

func TestNewContainer_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t)
	cfg.WeatherEnabled = true
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	c, err := NewContainer(context.Background(), cfg, nil, "test")
	require.NoError(t, err)

	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.WeatherService)
}

func TestContainer_APIServer(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.StoreCandidates[1], []byte(`{"42": {"setup_completed": true, "name": "Alice"}}`), 0o644))

	c, err := NewContainer(context.Background(), cfg, nil, "test")
	require.NoError(t, err)
	srv := c.NewAPIServer(c.ServerConfig())
	assert.Equal(t, "127.0.0.1:5000", srv.Addr())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user-profile?user_id=42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "miniapp_http_requests_total")
}
