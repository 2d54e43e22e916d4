// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server, logging,
// storage, acquisition, provider and observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/tbourn/ai-tracker/internal/sysutil"
)

// Fallback modes used when no live or snapshot data is available.
const (
	FallbackEmpty       = "empty"
	FallbackPlaceholder = "placeholder"
)

// Store drivers for snapshot and archive documents.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "ai-tracker")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// StorageConfig selects where the snapshot and the archive live.
type StorageConfig struct {
	Driver       string // file|sqlite
	SnapshotPath string // file driver
	ArchivePath  string // file driver
	DBPath       string // sqlite driver
	CatalogPath  string // optional YAML override of the embedded catalog
}

// AcquireConfig tunes the acquisition pipeline.
type AcquireConfig struct {
	WindowHours       int
	MaxPostsPerTool   int
	ProviderTimeout   time.Duration // hard cap per provider call
	Timeout           time.Duration // whole acquisition run
	Concurrency       int           // handles fetched in parallel per batch
	BatchDelay        time.Duration // pause between batches
	RateLimitRetries  int           // attempts on 429 for the scrape adapter
	RateLimitMaxWait  time.Duration // longest single wait for a reset window
	CacheTTL          time.Duration
	RequestDeadline   time.Duration // serving deadline for feed endpoints
	SweepSchedule     string        // cron spec for cache invalidation
	FetchSchedule     string        // optional cron spec for in-process acquisition
	FallbackMode      string        // empty|placeholder
	Hosted            bool          // snapshot-only serving
	TranslateTarget   language.Tag
	TranslateTimeout  time.Duration
	TranslateParallel int
}

// ProviderConfig holds endpoints and credentials of upstream sources.
type ProviderConfig struct {
	SyndicationBaseURL   string
	SyndicationUserAgent string
	RapidAPIKey          string
	RapidAPIHost         string
	XBearerToken         string
	XAPIBaseURL          string
	DeepSeekAPIKey       string
	DeepSeekAPIURL       string
	DeepSeekModel        string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 30s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	Storage   StorageConfig
	Acquire   AcquireConfig
	Providers ProviderConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	hosted := getbool("HOSTED", false) || sysutil.IsTruthy(os.Getenv("VERCEL"))

	cfg := Config{
		// Server
		Port:              getenv("PORT", "3001"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		Storage: StorageConfig{
			Driver:       strings.ToLower(getenv("STORE_DRIVER", StoreFile)),
			SnapshotPath: getenv("SNAPSHOT_PATH", "data/cached-posts.json"),
			ArchivePath:  getenv("ARCHIVE_PATH", "data/archive.json"),
			DBPath:       getenv("DB_PATH", "data/tracker.db"),
			CatalogPath:  getenv("CATALOG_PATH", ""),
		},

		Acquire: AcquireConfig{
			WindowHours:       getint("WINDOW_HOURS", 24),
			MaxPostsPerTool:   getint("MAX_POSTS_PER_TOOL", 5),
			ProviderTimeout:   getdur("PROVIDER_TIMEOUT", 20*time.Second),
			Timeout:           getdur("ACQUIRE_TIMEOUT", 5*time.Minute),
			Concurrency:       getint("ACQUIRE_CONCURRENCY", 3),
			BatchDelay:        getdur("ACQUIRE_BATCH_DELAY", 500*time.Millisecond),
			RateLimitRetries:  getint("RATE_LIMIT_MAX_RETRIES", 3),
			RateLimitMaxWait:  getdur("RATE_LIMIT_MAX_WAIT", 2*time.Minute),
			CacheTTL:          getdur("CACHE_TTL", 15*time.Minute),
			RequestDeadline:   getdur("REQUEST_DEADLINE", 10*time.Second),
			SweepSchedule:     getenv("CACHE_SWEEP_SCHEDULE", "0 * * * *"),
			FetchSchedule:     getenv("FETCH_SCHEDULE", ""),
			FallbackMode:      strings.ToLower(getenv("FALLBACK_MODE", "")),
			Hosted:            hosted,
			TranslateTimeout:  getdur("TRANSLATE_TIMEOUT", 30*time.Second),
			TranslateParallel: getint("TRANSLATE_PARALLEL", 3),
		},

		Providers: ProviderConfig{
			SyndicationBaseURL:   getenv("SYNDICATION_BASE_URL", "https://syndication.twitter.com/srv/timeline-profile/screen-name"),
			SyndicationUserAgent: getenv("SYNDICATION_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			RapidAPIKey:          getenv("RAPIDAPI_KEY", ""),
			RapidAPIHost:         getenv("RAPIDAPI_HOST", "twitter-api45.p.rapidapi.com"),
			XBearerToken:         sysutil.FirstNonEmpty(os.Getenv("X_BEARER_TOKEN"), os.Getenv("TWITTER_BEARER_TOKEN")),
			XAPIBaseURL:          getenv("X_API_BASE_URL", "https://api.twitter.com/2"),
			DeepSeekAPIKey:       getenv("DEEPSEEK_API_KEY", ""),
			DeepSeekAPIURL:       getenv("DEEPSEEK_API_URL", "https://api.deepseek.com/chat/completions"),
			DeepSeekModel:        getenv("DEEPSEEK_MODEL", "deepseek-chat"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "ai-tracker"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Acquire.FallbackMode == "" {
		cfg.Acquire.FallbackMode = FallbackPlaceholder
		if hosted {
			cfg.Acquire.FallbackMode = FallbackEmpty
		}
	}
	tag, err := language.Parse(getenv("TRANSLATE_TARGET", "tr"))
	if err != nil {
		return cfg, errors.New("TRANSLATE_TARGET must be a BCP 47 language tag")
	}
	cfg.Acquire.TranslateTarget = tag

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.Storage.Driver {
	case StoreFile:
		if strings.TrimSpace(cfg.Storage.SnapshotPath) == "" || strings.TrimSpace(cfg.Storage.ArchivePath) == "" {
			return cfg, errors.New("SNAPSHOT_PATH and ARCHIVE_PATH must not be empty")
		}
	case StoreSQLite:
		if strings.TrimSpace(cfg.Storage.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	default:
		return cfg, errors.New("STORE_DRIVER must be one of: file, sqlite")
	}
	switch cfg.Acquire.FallbackMode {
	case FallbackEmpty, FallbackPlaceholder:
	default:
		return cfg, errors.New("FALLBACK_MODE must be one of: empty, placeholder")
	}
	if cfg.Acquire.WindowHours < 1 {
		return cfg, errors.New("WINDOW_HOURS must be >= 1")
	}
	if cfg.Acquire.MaxPostsPerTool < 1 {
		return cfg, errors.New("MAX_POSTS_PER_TOOL must be >= 1")
	}
	if cfg.Acquire.Concurrency < 1 || cfg.Acquire.TranslateParallel < 1 {
		return cfg, errors.New("ACQUIRE_CONCURRENCY and TRANSLATE_PARALLEL must be >= 1")
	}
	if cfg.Acquire.RateLimitRetries < 1 {
		return cfg, errors.New("RATE_LIMIT_MAX_RETRIES must be >= 1")
	}
	if cfg.Acquire.ProviderTimeout <= 0 || cfg.Acquire.Timeout <= 0 || cfg.Acquire.TranslateTimeout <= 0 {
		return cfg, errors.New("acquisition timeouts must be positive durations")
	}
	if cfg.Acquire.CacheTTL <= 0 || cfg.Acquire.RequestDeadline <= 0 {
		return cfg, errors.New("CACHE_TTL and REQUEST_DEADLINE must be > 0")
	}
	if cfg.Acquire.BatchDelay < 0 {
		return cfg, errors.New("ACQUIRE_BATCH_DELAY must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Window returns the recency window as a duration.
func (a AcquireConfig) Window() time.Duration {
	return time.Duration(a.WindowHours) * time.Hour
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
