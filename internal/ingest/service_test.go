package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/fairwayforecast/internal/store"
)

type fakeFetcher struct {
	calls   atomic.Int32
	body    []byte
	err     error
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, lat, lon float64) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "owm:51.501,-0.124", CacheKey(51.50123, -0.12449))
	assert.Equal(t, CacheKey(51.5001, -0.1204), CacheKey(51.5004, -0.1196))
}

func TestForecastService_CachesWithinTTL(t *testing.T) {
	st := newTestStore(t)
	clock := testClock()
	fetcher := &fakeFetcher{body: []byte(sampleOneCall)}
	svc := NewForecastService(fetcher, st, 10*time.Minute, clock)

	f, err := svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Len(t, f.Hourly, 3)

	clock.Advance(9 * time.Minute)
	_, err = svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	clock.Advance(2 * time.Minute)
	_, err = svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestForecastService_CoalescesConcurrentMisses(t *testing.T) {
	st := newTestStore(t)
	fetcher := &fakeFetcher{body: []byte(sampleOneCall), release: make(chan struct{})}
	svc := NewForecastService(fetcher, st, time.Minute, testClock())

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Forecast(context.Background(), 51.5, -0.12)
			errs <- err
		}()
	}

	assert.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestForecastService_CorruptCacheIsMiss(t *testing.T) {
	st := newTestStore(t)
	clock := testClock()
	require.NoError(t, st.PutCachedPayload(CacheKey(51.5, -0.12), []byte("{truncated"), clock.Now(), time.Hour))

	fetcher := &fakeFetcher{body: []byte(sampleOneCall)}
	svc := NewForecastService(fetcher, st, time.Hour, clock)

	f, err := svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Hourly)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	entry, err := st.GetCachedPayload(CacheKey(51.5, -0.12), clock.Now())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.JSONEq(t, sampleOneCall, string(entry.Body))
}

func TestForecastService_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{"fetch failure", &fakeFetcher{err: fmt.Errorf("%w: status 503", ErrUpstream)}},
		{"unreadable body", &fakeFetcher{body: []byte("<html>gateway</html>")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			svc := NewForecastService(tt.fetcher, st, time.Hour, testClock())

			_, err := svc.Forecast(context.Background(), 1, 2)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUpstream))

			n, err := st.CacheSize()
			require.NoError(t, err)
			assert.Zero(t, n, "failures are never cached")
		})
	}
}

func TestForecastService_Refresh(t *testing.T) {
	st := newTestStore(t)
	clock := testClock()
	fetcher := &fakeFetcher{body: []byte(sampleOneCall)}
	svc := NewForecastService(fetcher, st, time.Hour, clock)

	require.NoError(t, svc.Refresh(context.Background(), 51.5, -0.12))
	require.NoError(t, svc.Refresh(context.Background(), 51.5, -0.12))
	assert.Equal(t, int32(2), fetcher.calls.Load(), "refresh bypasses the cache")

	_, err := svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestForecastService_CallerCancellationDoesNotWaitForFetch(t *testing.T) {
	st := newTestStore(t)
	fetcher := &fakeFetcher{body: []byte(sampleOneCall), release: make(chan struct{})}
	svc := NewForecastService(fetcher, st, time.Hour, testClock())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Forecast(ctx, 51.5, -0.12)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "caller must leave when its context ends")

	// The detached fetch still completes and fills the cache for later callers.
	close(fetcher.release)
	assert.Eventually(t, func() bool {
		n, err := st.CacheSize()
		return err == nil && n == 1
	}, time.Second, time.Millisecond)

	f, err := svc.Forecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Hourly)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}
