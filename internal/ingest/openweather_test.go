package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOneCall = `{
	"lat": 51.5, "lon": -0.12, "timezone": "Europe/London", "timezone_offset": 3600,
	"hourly": [
		{"dt": 1750003600, "temp": 14.2, "feels_like": 13.1, "wind_speed": 4.0, "wind_gust": 8.5, "wind_deg": 250, "pop": 0.4,
		 "rain": {"1h": 0.6}, "weather": [{"id": 500, "main": "Rain", "description": "light rain"}]},
		{"dt": 1750000000, "temp": 13.0, "wind_speed": 2.0, "weather": []},
		{"dt": 1750003600, "temp": 99.0, "wind_speed": 2.0},
		{"dt": 1750007200, "temp": 15.0, "wind_speed": 3.0, "pop": 1.4, "weather": [{"id": 801, "main": "Clouds", "description": "few clouds"}]}
	],
	"daily": [
		{"dt": 1750000000, "sunrise": 1749960000, "sunset": 1750020000},
		{"dt": 1750086400, "sunrise": 0, "sunset": 0}
	]
}`

func noRetry() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(0), 0)
}

func fastRetry(n uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), n)
	}
}

func TestOpenWeatherClient_Fetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"lat": q.Get("lat"), "lon": q.Get("lon"), "units": q.Get("units"), "appid": q.Get("appid"),
		}
		w.Write([]byte(sampleOneCall))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("secret", WithBaseURL(srv.URL), WithBackOff(noRetry))
	body, err := c.Fetch(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.JSONEq(t, sampleOneCall, string(body))
	assert.Equal(t, map[string]string{
		"lat": "51.5000", "lon": "-0.1200", "units": "metric", "appid": "secret",
	}, gotQuery)
}

func TestOpenWeatherClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleOneCall))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("k", WithBaseURL(srv.URL), WithBackOff(fastRetry(5)))
	_, err := c.Fetch(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenWeatherClient_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("bad", WithBaseURL(srv.URL), WithBackOff(fastRetry(5)))
	_, err := c.Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenWeatherClient_MissingKey(t *testing.T) {
	c := NewOpenWeatherClient("")
	_, err := c.Fetch(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestOpenWeatherClient_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenWeatherClient("k",
		WithBaseURL(srv.URL),
		WithBackOff(noRetry),
		WithBreakerSettings(gobreaker.Settings{
			Name:    "test",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		}),
	)

	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), 1, 2)
		require.ErrorIs(t, err, ErrUpstream)
	}
	assert.Equal(t, gobreaker.StateOpen, c.State())

	_, err := c.Fetch(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not call upstream")
}
