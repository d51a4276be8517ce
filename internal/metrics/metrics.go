package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Discovery metrics
var (
	DiscoveryFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_discovery_files_total",
			Help: "Total number of candidate files examined by discovery",
		},
	)

	DiscoveryUnrecognizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_discovery_unrecognized_total",
			Help: "Total number of files skipped as unrecognized formats",
		},
	)

	ProbeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_probe_errors_total",
			Help: "Total number of metadata probe failures",
		},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_viewer_probe_duration_seconds",
			Help:    "Metadata probe duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
)

// Loader metrics
var (
	LoaderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_loader_requests_total",
			Help: "Total number of load requests by lane",
		},
		[]string{"lane"},
	)

	LoaderQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_viewer_loader_queue_depth",
			Help: "Current number of queued requests by lane",
		},
		[]string{"lane"},
	)

	LoaderBackgroundDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_loader_background_dropped_total",
			Help: "Background requests dropped because the lane hit its cap",
		},
	)

	LoaderWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_loader_workers",
			Help: "Size of the loader worker pool",
		},
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_viewer_decode_duration_seconds",
			Help:    "Decode duration in seconds by kind (full, thumbnail)",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_decode_errors_total",
			Help: "Total number of decode failures by kind",
		},
		[]string{"kind"},
	)
)

// Cache metrics
var (
	CacheBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "image_viewer_cache_bytes",
			Help: "Bytes currently retained by store (full, thumbnail)",
		},
		[]string{"store"},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_hits_total",
			Help: "Cache lookup hits by store",
		},
		[]string{"store"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_misses_total",
			Help: "Cache lookup misses by store",
		},
		[]string{"store"},
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_cache_evictions_total",
			Help: "Cache evictions by store",
		},
		[]string{"store"},
	)

	CacheOversizedEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_viewer_cache_oversized_entries",
			Help: "Entries currently held in the oversized side list",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_viewer_watcher_events_total",
			Help: "Filesystem watcher events by type",
		},
		[]string{"type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_viewer_watcher_errors_total",
			Help: "Filesystem watcher errors",
		},
	)
)
