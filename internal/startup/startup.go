package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"gallery-tags/internal/cache"
	"gallery-tags/internal/export"
	"gallery-tags/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	CachePath       string
	DefaultFolder   string
	ScanRecursive   bool
	FormatConfig    string
	LogFileRequests bool
	LogHealthChecks bool

	// Export rendering defaults, overridable per run
	ExportItemFormat     string
	ExportHeading        string
	ExportGroupBy        int
	ExportConfigFilename string
}

// LoadConfig loads and validates configuration from environment
// variables, with optional .env file support.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside development
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment from .env")
	}

	logging.InitOutput()
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	cacheDir := getEnv("CACHE_DIR", "")
	defaultFolder := getEnv("DEFAULT_FOLDER", "")
	scanRecursive := getEnvBool("SCAN_RECURSIVE", false)
	formatConfig := getEnv("FORMAT_CONFIG", "")
	logFileRequests := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	exportItemFormat := getEnv("EXPORT_ITEM_FORMAT", export.DefaultItemFormat)
	exportHeading := getEnv("EXPORT_HEADING", "")
	exportGroupBy := getEnvInt("EXPORT_GROUP_BY", 0)
	exportConfigFilename := getEnv("EXPORT_CONFIG_FILENAME", export.DefaultRuleFilename)

	var cachePath string
	var err error
	if cacheDir != "" {
		cacheDir, err = filepath.Abs(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
		}
		cachePath = filepath.Join(cacheDir, "cache.json")
	} else {
		cachePath, err = cache.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default cache location: %w", err)
		}
	}

	if defaultFolder != "" {
		defaultFolder, err = filepath.Abs(defaultFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default folder path: %w", err)
		}
	}

	logging.Info("  PORT:                    %s", port)
	logging.Info("  METRICS_PORT:            %s", metricsPort)
	logging.Info("  METRICS_ENABLED:         %v", metricsEnabled)
	logging.Info("  Cache file:              %s", cachePath)
	logging.Info("  DEFAULT_FOLDER:          %s", orUnset(defaultFolder))
	logging.Info("  SCAN_RECURSIVE:          %v", scanRecursive)
	logging.Info("  FORMAT_CONFIG:           %s", orUnset(formatConfig))
	logging.Info("  EXPORT_ITEM_FORMAT:      %q", exportItemFormat)
	logging.Info("  EXPORT_HEADING:          %s", orUnset(exportHeading))
	logging.Info("  EXPORT_GROUP_BY:         %d", exportGroupBy)
	logging.Info("  EXPORT_CONFIG_FILENAME:  %s", exportConfigFilename)
	logging.Info("  LOG_STATIC_FILES:        %v", logFileRequests)
	logging.Info("  LOG_HEALTH_CHECKS:       %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:               %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	// The cache directory must be writable or nothing persists
	if err := ensureDirectory(filepath.Dir(cachePath), "cache"); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}
	if err := testWriteAccess(filepath.Dir(cachePath)); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	if defaultFolder != "" {
		if info, err := os.Stat(defaultFolder); err != nil || !info.IsDir() {
			logging.Warn("  DEFAULT_FOLDER %s is not a readable directory; no folder opened at startup", defaultFolder)
			defaultFolder = ""
		} else {
			logging.Info("  [OK] Default folder: %s", defaultFolder)
		}
	}

	return &Config{
		Port:                 port,
		MetricsPort:          metricsPort,
		MetricsEnabled:       metricsEnabled,
		CachePath:            cachePath,
		DefaultFolder:        defaultFolder,
		ScanRecursive:        scanRecursive,
		FormatConfig:         formatConfig,
		LogFileRequests:      logFileRequests,
		LogHealthChecks:      logHealthChecks,
		ExportItemFormat:     exportItemFormat,
		ExportHeading:        exportHeading,
		ExportGroupBy:        exportGroupBy,
		ExportConfigFilename: exportConfigFilename,
	}, nil
}

// LogGatewayInit logs the metadata tool check. A missing binary is a
// warning: the server still runs, serving cached tags read-only.
func LogGatewayInit(err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("METADATA GATEWAY")
	logging.Info("------------------------------------------------------------")
	if err != nil {
		logging.Warn("  exiftool check failed: %v", err)
		logging.Warn("  Tag reads and writes will fail until exiftool is installed")
		return
	}
	logging.Info("  [OK] exiftool is available")
}

// LogCacheInit logs tag cache readiness.
func LogCacheInit(path string, entries int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("TAG CACHE")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Cache file: %s", path)
	logging.Info("  [OK] %d cached entries", entries)
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if !logging.IsDebugEnabled() {
		return
	}

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	logging.Debug("  Registered routes (%d total):", len(routes))
	for _, route := range routes {
		logging.Debug("    %-6s %s", route.Method, route.Path)
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:  %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application: http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:     http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:     DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   ______       ____                 ______
  / ____/___ _/ / /__  _______  __ /_  __/___ _____ ______
 / / __/ __ '/ / / _ \/ ___/ / / /  / / / __ '/ __ '/ ___/
/ /_/ / /_/ / / /  __/ /  / /_/ /  / / / /_/ / /_/ (__  )
\____/\__,_/_/_/\___/_/   \__, /  /_/  \__,_/\__, /____/
                         /____/             /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
