package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pylens_parsing_seconds",
		Help:    "Time spent parsing a source buffer.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pylens_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pylens_cache_hits_total",
		Help: "Total number of analysis cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pylens_cache_misses_total",
		Help: "Total number of analysis cache misses (including TTL evictions).",
	})

	FunctionsExtracted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pylens_functions_extracted",
		Help: "Function definitions found in the most recent analysis.",
	})

	CallsExtracted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pylens_calls_extracted",
		Help: "Call sites found in the most recent analysis.",
	})

	CrossFileReferences = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pylens_cross_file_references",
		Help: "Cross-file caller references discovered in the most recent project analysis.",
	})

	SiblingParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pylens_sibling_parse_failures_total",
		Help: "Sibling files skipped during cross-file resolution due to parse failures.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pylens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
