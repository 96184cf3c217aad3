package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_tags_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_tags_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_scan_runs_total",
			Help: "Total number of folder scans by kind (quick or full)",
		},
		[]string{"kind"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_tags_scan_duration_seconds",
			Help:    "Folder scan duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)

	ScanFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_scan_files_total",
			Help: "Files seen by scans by outcome (cache_hit, refreshed, failed)",
		},
		[]string{"outcome"},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_tags_scan_running",
			Help: "Whether a folder scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Metadata gateway metrics
var (
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_gateway_calls_total",
			Help: "Total number of external metadata tool invocations",
		},
		[]string{"operation", "status"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_tags_gateway_call_duration_seconds",
			Help:    "External metadata tool invocation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

// Cache store metrics
var (
	CacheEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_tags_cache_entries",
			Help: "Number of entries in the persisted tag cache",
		},
	)

	CacheSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_cache_saves_total",
			Help: "Total number of cache persistence attempts",
		},
		[]string{"status"},
	)

	CacheLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_tags_cache_load_errors_total",
			Help: "Total number of cache files that failed to parse and were reset",
		},
	)
)

// Tag write metrics
var (
	TagWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_tag_writes_total",
			Help: "Total number of per-file tag write attempts",
		},
		[]string{"status"},
	)
)

// Export metrics
var (
	ExportRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_tags_export_runs_total",
			Help: "Total number of export runs",
		},
	)

	ExportRulesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_export_rules_total",
			Help: "Total number of export rules evaluated by status",
		},
		[]string{"status"},
	)

	ExportMatchedRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_tags_export_matched_records",
			Help:    "Number of records matched per export rule",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_tags_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_tags_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_tags_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
