package metrics

// InitializeMetrics pre-populates expected label combinations so that every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"quick", "full"} {
		ScanRunsTotal.WithLabelValues(kind)
	}

	for _, outcome := range []string{"cache_hit", "refreshed", "failed"} {
		ScanFilesTotal.WithLabelValues(outcome)
	}

	for _, op := range []string{"read", "write"} {
		GatewayCallsTotal.WithLabelValues(op, "success")
		GatewayCallsTotal.WithLabelValues(op, "error")
		GatewayCallDuration.WithLabelValues(op)
	}

	for _, status := range []string{"success", "error"} {
		CacheSavesTotal.WithLabelValues(status)
		TagWritesTotal.WithLabelValues(status)
		ExportRulesTotal.WithLabelValues(status)
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}
}
