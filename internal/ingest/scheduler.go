package ingest

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lox/fairwayforecast/internal/metrics"
	"github.com/lox/fairwayforecast/internal/models"
)

const (
	DefaultWarmInterval = 15 * time.Minute
	maxWatches          = 256
)

// Location is a point whose forecast the scheduler keeps warm.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RunLog is the persistence the scheduler needs; *store.Store satisfies it.
type RunLog interface {
	PruneExpired(now time.Time) (int64, error)
	RecordIngestRun(run models.IngestRun) (int64, error)
}

// Refresher refreshes one location's cached forecast.
type Refresher interface {
	Refresh(ctx context.Context, lat, lon float64) error
}

// Scheduler periodically refreshes watched locations and prunes expired
// cache rows.
type Scheduler struct {
	refresher Refresher
	runs      RunLog
	clock     clockwork.Clock
	interval  time.Duration

	mu      sync.Mutex
	watches map[string]Location
}

// WarmResult summarises one warm cycle.
type WarmResult struct {
	Refreshed int
	Failed    int
	Pruned    int64
}

func NewScheduler(refresher Refresher, runs RunLog, interval time.Duration, clock clockwork.Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultWarmInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		refresher: refresher,
		runs:      runs,
		clock:     clock,
		interval:  interval,
		watches:   make(map[string]Location),
	}
}

// Watch registers a location for warming. Locations are keyed like the
// cache, so nearby points collapse into one entry. Returns false once the
// watch list is full.
func (s *Scheduler) Watch(lat, lon float64) bool {
	key := CacheKey(lat, lon)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watches[key]; ok {
		return true
	}
	if len(s.watches) >= maxWatches {
		return false
	}
	s.watches[key] = Location{Lat: lat, Lon: lon}
	return true
}

// Watches returns the watched locations ordered by cache key.
func (s *Scheduler) Watches() []Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.watches))
	for k := range s.watches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Location, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.watches[k])
	}
	return out
}

func (s *Scheduler) Run(ctx context.Context) {
	s.WarmOnce(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-ticker.Chan():
			s.WarmOnce(ctx)
		}
	}
}

// WarmOnce refreshes every watched location and prunes the cache.
func (s *Scheduler) WarmOnce(ctx context.Context) WarmResult {
	started := s.clock.Now()
	var result WarmResult
	var lastErr error

	for _, loc := range s.Watches() {
		if ctx.Err() != nil {
			break
		}
		if err := s.refresher.Refresh(ctx, loc.Lat, loc.Lon); err != nil {
			log.Printf("scheduler: refresh %s: %v", CacheKey(loc.Lat, loc.Lon), err)
			result.Failed++
			lastErr = err
			continue
		}
		result.Refreshed++
	}

	pruned, err := s.runs.PruneExpired(s.clock.Now())
	if err != nil {
		log.Printf("scheduler: prune cache: %v", err)
	}
	result.Pruned = pruned

	run := models.IngestRun{
		Source:     "warm",
		StartedAt:  started,
		FinishedAt: s.clock.Now(),
		Success:    result.Failed == 0,
		Records:    result.Refreshed,
	}
	if lastErr != nil {
		run.Error = lastErr.Error()
	}
	if _, err := s.runs.RecordIngestRun(run); err != nil {
		log.Printf("scheduler: record run: %v", err)
	}

	outcome := "ok"
	if result.Failed > 0 {
		outcome = "partial"
	}
	metrics.WarmCycles.WithLabelValues(outcome).Inc()
	log.Printf("scheduler: warmed %d locations (%d failed, %d expired pruned)", result.Refreshed, result.Failed, result.Pruned)
	return result
}
