package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairway_upstream_calls_total",
			Help: "Total OpenWeather One Call API calls",
		},
		[]string{"status"},
	)

	UpstreamLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fairway_upstream_latency_seconds",
			Help:    "OpenWeather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fairway_circuit_state",
			Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairway_forecast_cache_lookups_total",
			Help: "Forecast cache lookups by result",
		},
		[]string{"result"},
	)

	SlotsFlagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairway_forecast_slots_flagged_total",
			Help: "Forecast hours with out-of-range values, by flag",
		},
		[]string{"flag"},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairway_decisions_total",
			Help: "Tee-time decisions served, by status",
		},
		[]string{"status"},
	)

	WarmCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairway_warm_cycles_total",
			Help: "Cache warm cycles by outcome",
		},
		[]string{"outcome"},
	)

	CoursesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fairway_courses_imported_total",
			Help: "Courses written to the catalog",
		},
	)
)
