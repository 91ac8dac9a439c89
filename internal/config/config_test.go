package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.Admin.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.Admin.APIBasePath)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "  token  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bot.Token != "token" {
		t.Fatalf("token should be trimmed, got %q", cfg.Bot.Token)
	}
	if cfg.Bot.DefaultPrefix != "!" || !cfg.Bot.SendErrors || cfg.Bot.OwnerID != 0 {
		t.Fatalf("bot defaults unexpected: %+v", cfg.Bot)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.Path != "bot.db" {
		t.Fatalf("db defaults unexpected: %+v", cfg.DB)
	}
	if cfg.Media.MaxDownloadBytes != 25<<20 || cfg.Media.Root != "media" {
		t.Fatalf("media defaults unexpected: %+v", cfg.Media)
	}
	if cfg.Admin.Enabled || cfg.Admin.Port != "8080" {
		t.Fatalf("admin defaults unexpected: %+v", cfg.Admin)
	}
}

func TestLoad_Success_Overrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_DEBUG", "yes")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("OWNER_ID", "987654321")
	t.Setenv("SEND_ERRORS", "off")
	t.Setenv("POLL_TIMEOUT", "30s")
	t.Setenv("BUILD_VERSION", "1.2.3")

	t.Setenv("DB_DRIVER", "PostgreSQL") // normalized
	t.Setenv("DATABASE_URL", "postgres://bot@localhost/bot")

	t.Setenv("MEDIA_ROOT", "/var/lib/bot")
	t.Setenv("MAX_DOWNLOAD_BYTES", "1024")
	t.Setenv("DOWNLOAD_TIMEOUT", "5s")

	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	t.Setenv("ADMIN_ENABLED", "1")
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("PORT", "8088")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"
	t.Setenv("API_BASE_PATH", "admin/v1/")
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	b := cfg.Bot
	if b.Token != "123:abc" || !b.Debug || b.DefaultPrefix != "?" || b.OwnerID != 987654321 ||
		b.SendErrors || b.PollTimeout != 30*time.Second || b.BuildVersion != "1.2.3" {
		t.Fatalf("bot fields unexpected: %+v", b)
	}
	if cfg.DB.Driver != DriverPostgres || cfg.DB.DSN != "postgres://bot@localhost/bot" {
		t.Fatalf("db fields unexpected: %+v", cfg.DB)
	}
	if cfg.Media.Root != "/var/lib/bot" || cfg.Media.MaxDownloadBytes != 1024 || cfg.Media.DownloadTimeout != 5*time.Second {
		t.Fatalf("media fields unexpected: %+v", cfg.Media)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("logging unexpected: %q %v", cfg.LogLevel, cfg.LogPretty)
	}

	a := cfg.Admin
	if !a.Enabled || a.Token != "s3cret" || a.Port != "8088" || a.GinMode != "release" || a.APIBasePath != "/admin/v1" {
		t.Fatalf("admin fields unexpected: %+v", a)
	}
	if a.RateRPS != 5.0 || a.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", a)
	}
	if !reflect.DeepEqual(a.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", a.CORS.AllowedOrigins)
	}
	if !a.Security.EnableHSTS || a.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", a.Security)
	}

	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"missing token", map[string]string{"BOT_TOKEN": "   "}, "BOT_TOKEN must not be empty"},
		{"prefix too long", map[string]string{"COMMAND_PREFIX": "!!!!!!"}, "COMMAND_PREFIX"},
		{"prefix with space", map[string]string{"COMMAND_PREFIX": "a b"}, "COMMAND_PREFIX"},
		{"poll timeout", map[string]string{"POLL_TIMEOUT": "0s"}, "POLL_TIMEOUT"},
		{"empty DB_PATH", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"empty MEDIA_ROOT", map[string]string{"MEDIA_ROOT": "  "}, "MEDIA_ROOT"},
		{"download cap", map[string]string{"MAX_DOWNLOAD_BYTES": "0"}, "MAX_DOWNLOAD_BYTES"},
		{"download timeout", map[string]string{"DOWNLOAD_TIMEOUT": "-1s"}, "DOWNLOAD_TIMEOUT"},
		{"admin without token", map[string]string{"ADMIN_ENABLED": "true"}, "ADMIN_TOKEN"},
		{"empty PORT via spaces", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"non-positive timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"max header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"rate rps negative", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst < 1", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts max age negative", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"otel sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "token")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	for _, ok := range []string{"!", "?", "$$", "bot!", "ñ!", "!!!!!"} {
		if err := ValidatePrefix(ok); err != nil {
			t.Errorf("ValidatePrefix(%q) = %v; want nil", ok, err)
		}
	}
	for _, bad := range []string{"", "toolong", "a b", "\t"} {
		if err := ValidatePrefix(bad); err == nil {
			t.Errorf("ValidatePrefix(%q) = nil; want error", bad)
		}
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("I64_VALID", " -1001234567890 ")
	if getint64("I64_VALID", 0) != -1001234567890 {
		t.Fatalf("getint64 parse failed")
	}
	t.Setenv("I64_BAD", "1e3")
	if getint64("I64_BAD", 9) != 9 {
		t.Fatalf("getint64 default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	trueVals := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	for i, v := range trueVals {
		k := "B_T_" + config_strconv(i)
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	falseVals := []string{"0", "false", "FALSE", " no ", "N", "off", "Off"}
	for i, v := range falseVals {
		k := "B_F_" + config_strconv(i)
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	in := " a, ,b ,  c  ,"
	want := []string{"a", "b", "c"}
	if got := splitCSV(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}

	if normalizeBasePath("") != "/" {
		t.Fatalf("normalizeBasePath empty -> '/' failed")
	}
	if normalizeBasePath("v1") != "/v1" {
		t.Fatalf("normalizeBasePath missing leading slash failed")
	}
	if normalizeBasePath("/v1/") != "/v1" {
		t.Fatalf("normalizeBasePath trailing slash trim failed")
	}
	if normalizeBasePath(" / ") != "/" {
		t.Fatalf("normalizeBasePath whitespace failed")
	}
}

// small helper (avoid fmt just for ints)
func config_strconv(i int) string { return string('a' + rune(i)) }

// Ensure tests don't inherit env from the host.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "BOT_TOKEN", "DB_DRIVER", "DATABASE_URL", "ADMIN_ENABLED", "COMMAND_PREFIX"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
