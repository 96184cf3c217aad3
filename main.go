package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gallery-tags/internal/cache"
	"gallery-tags/internal/handlers"
	"gallery-tags/internal/logging"
	"gallery-tags/internal/metadata"
	"gallery-tags/internal/metrics"
	"gallery-tags/internal/middleware"
	"gallery-tags/internal/scanner"
	"gallery-tags/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Tag cache store
	store := cache.NewStore(config.CachePath)
	startup.LogCacheInit(config.CachePath, len(store.Load()))

	// Metadata format table and exiftool gateway. A missing binary is a
	// warning: cached tags still serve, writes will fail per file.
	formats, err := metadata.LoadFormatConfig(config.FormatConfig)
	if err != nil {
		logging.Fatal("Format configuration error: %v", err)
	}
	gateway := metadata.NewExifTool(formats)
	startup.LogGatewayInit(gateway.Check())

	scan := scanner.New(store, gateway, formats.Extensions())
	h := handlers.New(scan, formats, config)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router)

	// Middleware chain: request ID first so the rest see it, then
	// access log, metrics, compression.
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogFileRequests = config.LogFileRequests
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.RequestID()(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Open the default folder before serving so the first request
	// already has records.
	if config.DefaultFolder != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if records, err := scan.LoadFolder(ctx, config.DefaultFolder, config.ScanRecursive, false); err != nil && records == nil {
			logging.Warn("Failed to open default folder %s: %v", config.DefaultFolder, err)
		} else {
			h.SetFolder(config.DefaultFolder, config.ScanRecursive, records)
			logging.Info("Opened default folder %s (%d images)", config.DefaultFolder, len(records))
		}
		cancel()
	}

	go handleShutdown(srv, metricsSrv)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.Version).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", h.GetConfig).Methods("GET")

	// Folder and records
	api.HandleFunc("/folder/open", h.OpenFolder).Methods("POST")
	api.HandleFunc("/folder/current", h.CurrentFolder).Methods("GET")
	api.HandleFunc("/images/list", h.ListImages).Methods("POST")
	api.HandleFunc("/search", h.Search).Methods("GET")

	// Tags
	api.HandleFunc("/image/tags", h.GetTags).Methods("GET")
	api.HandleFunc("/image/tags", h.WriteTags).Methods("POST")

	// Cache maintenance
	api.HandleFunc("/cache/refresh", h.RefreshCache).Methods("POST")
	api.HandleFunc("/cache/clear", h.ClearCache).Methods("POST")

	// Export
	api.HandleFunc("/export/config", h.GetExportConfig).Methods("GET")
	api.HandleFunc("/export/config", h.SaveExportConfig).Methods("POST")
	api.HandleFunc("/export/run", h.RunExport).Methods("POST")

	api.HandleFunc("/stats", h.Stats).Methods("GET")

	// File bytes
	api.HandleFunc("/thumbnail/{path:.*}", h.Thumbnail).Methods("GET")
	api.HandleFunc("/image/{path:.*}", h.Image).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
