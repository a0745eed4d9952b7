package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ElementsParsed counts completed top-level elements by kind (bounds,
	// node, way, relation).
	ElementsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmrouter_elements_parsed_total",
			Help: "Total number of OSM elements parsed",
		},
		[]string{"kind"},
	)

	// ElementsSkipped counts dropped elements and tags by error kind.
	ElementsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmrouter_elements_skipped_total",
			Help: "Total number of malformed OSM elements and tags that were dropped",
		},
		[]string{"error"},
	)

	ParseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "osmrouter_parse_errors_total",
			Help: "Total number of documents that failed to parse",
		},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "osmrouter_parse_duration_seconds",
			Help:    "Duration of successful document parses in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0},
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmrouter_cache_hits_total",
			Help: "Total number of element cache lookups served from memory",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmrouter_cache_misses_total",
			Help: "Total number of element cache lookups read from disk",
		},
		[]string{"kind"},
	)

	// RouteSearches counts route searches by result (success, no_route,
	// error).
	RouteSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmrouter_route_searches_total",
			Help: "Total number of route searches",
		},
		[]string{"status"},
	)
)
