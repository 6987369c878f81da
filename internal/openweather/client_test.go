package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unplugged/internal/models"
)

const wandiligongRain = `{
  "coord": {"lon": 146.98, "lat": -36.75},
  "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
  "main": {"temp": 11.4, "feels_like": 10.2, "pressure": 1012, "humidity": 88},
  "wind": {"speed": 4.1, "deg": 310},
  "clouds": {"all": 90},
  "rain": {"1h": 2.5},
  "dt": 1791000000,
  "name": "Wandiligong"
}`

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "-36.75", r.URL.Query().Get("lat"))
		assert.Equal(t, "146.98", r.URL.Query().Get("lon"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(wandiligongRain))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	obs, err := c.Current(context.Background(), -36.75, 146.98)
	require.NoError(t, err)

	assert.Equal(t, 11.4, obs.Temperature)
	assert.Equal(t, models.DescRain, obs.Description)
	assert.InDelta(t, 0.25, obs.PrecipitationProbability, 1e-9)
	assert.Equal(t, 2.5, obs.PrecipitationIntensity)
	assert.Equal(t, 4.1, obs.WindSpeed)
	assert.Equal(t, 310.0, obs.WindDirection)
	assert.Equal(t, 90.0, obs.CloudCover)
	assert.Equal(t, 88.0, obs.Humidity)
	assert.Equal(t, 5.0, obs.UVIndex)
	assert.Equal(t, time.Unix(1791000000, 0).UTC(), obs.ObservedAt)
	assert.JSONEq(t, wandiligongRain, obs.RawJSON)
}

func TestClient_NoAPIKey(t *testing.T) {
	_, err := NewClient("").Current(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(wandiligongRain))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithMaxElapsedTime(10*time.Second))
	_, err := c.Current(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryBadKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", WithBaseURL(srv.URL)).Current(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_EmptyWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weather": [], "main": {"temp": 3}}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Current(context.Background(), 1, 2)
	assert.Error(t, err)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("k", WithBaseURL(srv.URL)).Current(ctx, 1, 2)
	assert.Error(t, err)
}
