package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	LogLevel                   logging.Level
	DBURL                      string
	DBDisablePreparedBinary    bool
	DBBootstrapSeed            bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	CORSAllowedOrigins         []string
	InternalJobToken           string
	PprofEnabled               bool
	PprofAddr                  string
	AnubisBaseURL              string
	AnubisIntrospectURL        string
	AnubisAdminKey             string
	AnubisTimeout              time.Duration
	AnubisCacheTTL             time.Duration
	AnubisCircuit              resilience.CircuitBreakerConfig
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	Spond                      SpondConfig
}

// SpondConfig groups settings of the Spond integration.
type SpondConfig struct {
	BaseURL        string
	Timeout        time.Duration
	Circuit        resilience.CircuitBreakerConfig
	CredentialsKey string
	// Bootstrap credentials, used until an operator stores their own.
	Email           string
	Password        string
	DaysBehind      int
	DaysAhead       int
	MatchTimeWindow time.Duration
	GroupsCacheTTL  time.Duration
}

const devCredentialsKey = "clubsync-dev-credentials-key"

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "clubsync-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		AnubisBaseURL:              getEnv("ANUBIS_BASE_URL", "http://localhost:8081"),
		AnubisIntrospectURL:        getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AnubisAdminKey:             getEnv("ANUBIS_ADMIN_KEY", ""),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = parsePositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = parsePositiveDuration("APP_WRITE_TIMEOUT", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.DBDisablePreparedBinary, err = parseBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return Config{}, err
	}

	if cfg.DBBootstrapSeed, err = parseBool("DB_BOOTSTRAP_SEED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = parsePositiveDuration("CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = parseBool("PPROF_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.AnubisTimeout, err = parsePositiveDuration("ANUBIS_TIMEOUT", "3s"); err != nil {
		return Config{}, err
	}
	if cfg.AnubisCacheTTL, err = parsePositiveDuration("ANUBIS_CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.AnubisCircuit, err = loadCircuit("ANUBIS"); err != nil {
		return Config{}, err
	}

	if err := loadUptrace(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPyroscope(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Spond, err = loadSpond(appEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadUptrace(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = parseBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = parseBool("UPTRACE_LOGS_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.UptraceCaptureRequestBody, err = parseBool("UPTRACE_CAPTURE_REQUEST_BODY", "true"); err != nil {
		return err
	}
	if cfg.UptraceRequestBodyMaxBytes, err = getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192); err != nil {
		return fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if cfg.UptraceRequestBodyMaxBytes <= 0 {
		return fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}
	return nil
}

func loadPyroscope(cfg *Config) error {
	var err error
	if cfg.PyroscopeEnabled, err = parseBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	return nil
}

func loadSpond(appEnv string) (SpondConfig, error) {
	var (
		out SpondConfig
		err error
	)
	out.BaseURL = strings.TrimRight(strings.TrimSpace(getEnv("SPOND_BASE_URL", "https://api.spond.com/core/v1")), "/")
	out.Email = strings.TrimSpace(getEnv("SPOND_EMAIL", ""))
	out.Password = getEnv("SPOND_PASSWORD", "")
	if (out.Email == "") != (out.Password == "") {
		return SpondConfig{}, fmt.Errorf("SPOND_EMAIL and SPOND_PASSWORD must be set together")
	}

	if out.Timeout, err = parsePositiveDuration("SPOND_TIMEOUT", "20s"); err != nil {
		return SpondConfig{}, err
	}
	if out.Circuit, err = loadCircuit("SPOND"); err != nil {
		return SpondConfig{}, err
	}

	out.CredentialsKey = strings.TrimSpace(getEnv("SPOND_CREDENTIALS_KEY", ""))
	if out.CredentialsKey == "" {
		if appEnv != EnvDev {
			return SpondConfig{}, fmt.Errorf("SPOND_CREDENTIALS_KEY is required when APP_ENV=%s", appEnv)
		}
		out.CredentialsKey = devCredentialsKey
	}

	if out.DaysBehind, err = getEnvAsInt("SPOND_SYNC_DAYS_BEHIND", 7); err != nil {
		return SpondConfig{}, fmt.Errorf("parse SPOND_SYNC_DAYS_BEHIND: %w", err)
	}
	if out.DaysBehind < 0 {
		return SpondConfig{}, fmt.Errorf("SPOND_SYNC_DAYS_BEHIND must be >= 0")
	}
	if out.DaysAhead, err = getEnvAsInt("SPOND_SYNC_DAYS_AHEAD", 60); err != nil {
		return SpondConfig{}, fmt.Errorf("parse SPOND_SYNC_DAYS_AHEAD: %w", err)
	}
	if out.DaysAhead < 1 {
		return SpondConfig{}, fmt.Errorf("SPOND_SYNC_DAYS_AHEAD must be >= 1")
	}
	if out.MatchTimeWindow, err = parsePositiveDuration("SPOND_MATCH_TIME_WINDOW", "3h"); err != nil {
		return SpondConfig{}, err
	}
	if out.MatchTimeWindow <= 30*time.Minute {
		return SpondConfig{}, fmt.Errorf("SPOND_MATCH_TIME_WINDOW must be > 30m")
	}
	if out.GroupsCacheTTL, err = parsePositiveDuration("SPOND_GROUPS_CACHE_TTL", "5m"); err != nil {
		return SpondConfig{}, err
	}

	return out, nil
}

// loadCircuit reads <PREFIX>_CIRCUIT_* keys.
func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	var (
		out resilience.CircuitBreakerConfig
		err error
	)
	if out.Enabled, err = parseBool(prefix+"_CIRCUIT_ENABLED", "true"); err != nil {
		return out, err
	}

	key := prefix + "_CIRCUIT_FAILURE_COUNT"
	if out.FailureThreshold, err = getEnvAsInt(key, 5); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}

	if out.OpenTimeout, err = parsePositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return out, err
	}

	key = prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	if out.HalfOpenMaxReq, err = getEnvAsInt(key, 1); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
