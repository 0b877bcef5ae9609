package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/lox/fairwayforecast/internal/httputil"
	"github.com/lox/fairwayforecast/internal/metrics"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

var (
	// ErrUpstream wraps any failure to obtain a forecast from OpenWeather.
	ErrUpstream = errors.New("upstream forecast unavailable")
	// ErrCircuitOpen is returned without a network call while the breaker is open.
	ErrCircuitOpen = errors.New("upstream circuit open")
)

// OpenWeatherClient fetches One Call 3.0 payloads. Calls are retried with
// exponential backoff on 429 and 5xx, and the whole retried call runs inside
// a circuit breaker.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	newBackOff func() backoff.BackOff
}

type ClientOption func(*OpenWeatherClient)

func WithBaseURL(u string) ClientOption {
	return func(c *OpenWeatherClient) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *OpenWeatherClient) { c.client = hc }
}

// WithBackOff replaces the retry schedule. Tests use it to avoid real delays.
func WithBackOff(fn func() backoff.BackOff) ClientOption {
	return func(c *OpenWeatherClient) { c.newBackOff = fn }
}

// WithBreakerSettings replaces the circuit breaker configuration.
func WithBreakerSettings(st gobreaker.Settings) ClientOption {
	return func(c *OpenWeatherClient) { c.breaker = newBreaker(st) }
}

func NewOpenWeatherClient(apiKey string, opts ...ClientOption) *OpenWeatherClient {
	c := &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  httputil.NewClient(0),
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxElapsedTime = 20 * time.Second
			return bo
		},
	}
	c.breaker = newBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker[[]byte] {
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Printf("openweather: breaker %s %s -> %s", name, from, to)
		metrics.CircuitState.WithLabelValues(name).Set(float64(to))
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// Fetch returns the raw One Call body for a location, always in metric units.
func (c *OpenWeatherClient) Fetch(ctx context.Context, lat, lon float64) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUpstream)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetchWithRetry(ctx, c.requestURL(lat, lon))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return body, nil
}

// State exposes the breaker state for health reporting.
func (c *OpenWeatherClient) State() gobreaker.State {
	return c.breaker.State()
}

func (c *OpenWeatherClient) requestURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("units", "metric")
	q.Set("exclude", "minutely,alerts")
	q.Set("appid", c.apiKey)
	return c.baseURL + "?" + q.Encode()
}

func (c *OpenWeatherClient) fetchWithRetry(ctx context.Context, u string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.UpstreamCallsTotal.WithLabelValues("error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch onecall: %w", err)
		}
		defer resp.Body.Close()
		metrics.UpstreamCallsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch onecall: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch onecall: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Printf("openweather: %v, retrying in %s", err, wait)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}
