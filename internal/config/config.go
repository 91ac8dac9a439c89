// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot settings, the
// relational store, attachment storage, logging, the optional admin HTTP API,
// and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxPrefixRunes mirrors the width of the community.command_prefix column.
const MaxPrefixRunes = 5

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// BotConfig holds Telegram and command-dispatch settings.
type BotConfig struct {
	Token         string        // BOT_TOKEN
	Debug         bool          // BOT_DEBUG
	DefaultPrefix string        // COMMAND_PREFIX
	Description   string        // DESCRIPTION
	OwnerID       int64         // OWNER_ID (0 disables owner reports)
	SendErrors    bool          // SEND_ERRORS
	PollTimeout   time.Duration // POLL_TIMEOUT
	BuildVersion  string        // BUILD_VERSION
	BuildDate     string        // BUILD_DATE (RFC 3339)
}

// DBConfig selects and configures the relational store.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite path
	DSN    string // Postgres DSN
}

// MediaConfig configures where custom command attachments are stored.
type MediaConfig struct {
	Root             string        // MEDIA_ROOT
	MaxDownloadBytes int64         // MAX_DOWNLOAD_BYTES
	DownloadTimeout  time.Duration // DOWNLOAD_TIMEOUT
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// AdminConfig configures the optional admin/debugging HTTP API.
type AdminConfig struct {
	Enabled           bool          // ADMIN_ENABLED
	Token             string        // ADMIN_TOKEN (bearer)
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	SwaggerEnabled    bool          // enable Swagger UI route
	APIBasePath       string        // base path for API routes

	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	CORS     CORSConfig
	Security SecurityConfig
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-community-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	Bot   BotConfig
	DB    DBConfig
	Media MediaConfig

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	Admin AdminConfig
	OTEL  OTELConfig
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
	cfg := Config{
		Bot: BotConfig{
			Token:         strings.TrimSpace(getenv("BOT_TOKEN", "")),
			Debug:         getbool("BOT_DEBUG", false),
			DefaultPrefix: getenv("COMMAND_PREFIX", "!"),
			Description:   getenv("DESCRIPTION", "witty tagline"),
			OwnerID:       getint64("OWNER_ID", 0),
			SendErrors:    getbool("SEND_ERRORS", true),
			PollTimeout:   getdur("POLL_TIMEOUT", 60*time.Second),
			BuildVersion:  getenv("BUILD_VERSION", ""),
			BuildDate:     getenv("BUILD_DATE", ""),
		},
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
			Path:   getenv("DB_PATH", "bot.db"),
			DSN:    getenv("DATABASE_URL", ""),
		},
		Media: MediaConfig{
			Root:             getenv("MEDIA_ROOT", "media"),
			MaxDownloadBytes: getint64("MAX_DOWNLOAD_BYTES", 25<<20),
			DownloadTimeout:  getdur("DOWNLOAD_TIMEOUT", 60*time.Second),
		},

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		Admin: AdminConfig{
			Enabled:           getbool("ADMIN_ENABLED", false),
			Token:             getenv("ADMIN_TOKEN", ""),
			Port:              getenv("PORT", "8080"),
			ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
			ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
			GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
			SwaggerEnabled:    getbool("SWAGGER_ENABLED", false),
			APIBasePath:       normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),
			RateRPS:           getfloat("RATE_RPS", 5.0),
			RateBurst:         getint("RATE_BURST", 10),
			CORS: CORSConfig{
				AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
			},
			Security: SecurityConfig{
				EnableHSTS: getbool("ENABLE_HSTS", false),
				HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
			},
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-community-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.Admin.GinMode {
	case "debug", "release", "test":
	default:
		cfg.Admin.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = DriverPostgres
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.Bot.Token == "" {
		return cfg, errors.New("BOT_TOKEN must not be empty")
	}
	if err := ValidatePrefix(cfg.Bot.DefaultPrefix); err != nil {
		return cfg, errors.New("COMMAND_PREFIX " + err.Error())
	}
	if cfg.Bot.PollTimeout <= 0 {
		return cfg, errors.New("POLL_TIMEOUT must be > 0")
	}
	switch cfg.DB.Driver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.Media.Root) == "" {
		return cfg, errors.New("MEDIA_ROOT must not be empty")
	}
	if cfg.Media.MaxDownloadBytes <= 0 {
		return cfg, errors.New("MAX_DOWNLOAD_BYTES must be > 0")
	}
	if cfg.Media.DownloadTimeout <= 0 {
		return cfg, errors.New("DOWNLOAD_TIMEOUT must be > 0")
	}

	a := cfg.Admin
	if a.Enabled && strings.TrimSpace(a.Token) == "" {
		return cfg, errors.New("ADMIN_TOKEN must be set when ADMIN_ENABLED=true")
	}
	if strings.TrimSpace(a.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if a.ReadTimeout <= 0 || a.ReadHeaderTimeout <= 0 || a.WriteTimeout <= 0 || a.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if a.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if a.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if a.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if a.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ValidatePrefix reports whether p can be stored as a command prefix:
// between 1 and MaxPrefixRunes runes, without whitespace.
func ValidatePrefix(p string) error {
	n := utf8.RuneCountInString(p)
	if n == 0 {
		return errors.New("must not be empty")
	}
	if n > MaxPrefixRunes {
		return errors.New("must be at most 5 characters")
	}
	if strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return errors.New("must not contain whitespace")
	}
	return nil
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

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
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
