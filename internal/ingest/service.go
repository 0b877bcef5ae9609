package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/lox/fairwayforecast/internal/metrics"
	"github.com/lox/fairwayforecast/internal/models"
	"github.com/lox/fairwayforecast/internal/playability"
)

const DefaultTTL = 10 * time.Minute

// Fetcher returns a raw metric One Call body for a location.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64) ([]byte, error)
}

// PayloadCache is the persistence the service needs; *store.Store satisfies it.
type PayloadCache interface {
	GetCachedPayload(key string, now time.Time) (*models.CacheEntry, error)
	PutCachedPayload(key string, body []byte, fetchedAt time.Time, ttl time.Duration) error
	DeleteCachedPayload(key string) error
}

// ForecastService serves normalized forecasts from the payload cache, fetching
// on a miss. Concurrent misses for the same location share one upstream call.
type ForecastService struct {
	fetcher Fetcher
	cache   PayloadCache
	ttl     time.Duration
	clock   clockwork.Clock
	group   singleflight.Group
}

func NewForecastService(fetcher Fetcher, cache PayloadCache, ttl time.Duration, clock clockwork.Clock) *ForecastService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ForecastService{fetcher: fetcher, cache: cache, ttl: ttl, clock: clock}
}

// CacheKey rounds to three decimals, roughly 100 m. Units are never part of
// the key since payloads are always fetched in metric.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("owm:%.3f,%.3f", lat, lon)
}

// Forecast returns the normalized forecast for a location.
func (s *ForecastService) Forecast(ctx context.Context, lat, lon float64) (playability.Forecast, error) {
	key := CacheKey(lat, lon)

	entry, err := s.cache.GetCachedPayload(key, s.clock.Now())
	if err != nil {
		log.Printf("forecast: cache read %s: %v", key, err)
	}
	if entry != nil {
		resp, err := Decode(entry.Body)
		if err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return Normalize(resp), nil
		}
		log.Printf("forecast: discarding unreadable cache entry %s: %v", key, err)
		metrics.CacheLookups.WithLabelValues("corrupt").Inc()
		if err := s.cache.DeleteCachedPayload(key); err != nil {
			log.Printf("forecast: delete cache entry %s: %v", key, err)
		}
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	resp, err := s.fetch(ctx, key, lat, lon)
	if err != nil {
		return playability.Forecast{}, err
	}
	return Normalize(resp), nil
}

// Refresh fetches a location upstream regardless of cache state and stores
// the result.
func (s *ForecastService) Refresh(ctx context.Context, lat, lon float64) error {
	_, err := s.fetch(ctx, CacheKey(lat, lon), lat, lon)
	return err
}

func (s *ForecastService) fetch(ctx context.Context, key string, lat, lon float64) (OneCallResponse, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so no single caller's cancellation applies.
		body, err := s.fetcher.Fetch(context.WithoutCancel(ctx), lat, lon)
		if err != nil {
			return nil, err
		}
		resp, err := Decode(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if err := s.cache.PutCachedPayload(key, body, s.clock.Now(), s.ttl); err != nil {
			log.Printf("forecast: cache write %s: %v", key, err)
		}
		return resp, nil
	})

	// The shared fetch keeps running for other waiters when this caller leaves.
	select {
	case <-ctx.Done():
		return OneCallResponse{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return OneCallResponse{}, r.Err
		}
		return r.Val.(OneCallResponse), nil
	}
}
